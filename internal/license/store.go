package license

import "context"

// Store is the durable mapping from license key to record.
// Implementations must be safe for concurrent use: a Load observes either
// the pre-save or post-save snapshot in full, never an interleaving, and a
// failed Save leaves the previously persisted snapshot intact.
type Store interface {
	// Load returns the full current snapshot. A missing or malformed
	// backing store yields an empty snapshot, not an error.
	Load(ctx context.Context) (Snapshot, error)

	// Save durably persists the snapshot as the new authoritative state.
	Save(ctx context.Context, snapshot Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}
