package license

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	apierrors "licensed/internal/errors"
)

// Service owns the lifecycle operations against a Store. A single write
// lock serializes every load-mutate-save cycle so two concurrent mutations
// can never overwrite each other's changes (lost update). Read-only checks
// take a single consistent snapshot and do not participate in the lock.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	// writeMu is held for the duration of one load-mutate-save cycle,
	// never across anything slower than storage I/O.
	writeMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests to pin the current
// date for expiry evaluation and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a license service backed by the given store.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger.With(slog.String("component", "license_service")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckResult is the outcome of resolving and evaluating one request.
type CheckResult struct {
	// Found is false when the credentials resolved to no record.
	Found bool
	// Key is the license key of the resolved record, when found.
	Key string
	// Verdict is the validation outcome; VerdictNotFound when not found.
	Verdict Verdict
	// Record is the resolved record, when found.
	Record *Record
}

// Check resolves the credentials against a single consistent snapshot and
// evaluates the result. It is read-only and idempotent: repeated calls with
// identical inputs never change stored state and return the same verdict.
func (s *Service) Check(ctx context.Context, creds Credentials, machineID string) (*CheckResult, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	key, rec, err := creds.Resolve(snapshot)
	if err != nil {
		return nil, err
	}

	verdict := Evaluate(rec, machineID, s.now())

	s.logger.InfoContext(ctx, "license check evaluated",
		slog.String("lookup", creds.Variant()),
		slog.String("verdict", string(verdict)),
		slog.Bool("found", rec != nil),
	)

	if rec == nil {
		return &CheckResult{Found: false, Verdict: VerdictNotFound}, nil
	}
	return &CheckResult{Found: true, Key: key, Verdict: verdict, Record: rec}, nil
}

// CreateInput carries the creator-supplied fields for a new record.
type CreateInput struct {
	LicenseKey   string
	AgencyName   string
	ContactEmail string
	Password     string
	// Active defaults to true when nil.
	Active    *bool
	ExpiresAt string
	// Seats defaults to 1 when zero or negative.
	Seats int
	// MachineIDs pre-populates the bound machine list, comma-joined.
	MachineIDs string
}

// Create adds a new record under the write lock. The license key is chosen
// by the creator and immutable afterwards; creation fails when the key
// already exists.
func (s *Service) Create(ctx context.Context, in CreateInput) error {
	if in.LicenseKey == "" {
		return fmt.Errorf("%w: license_key is required", apierrors.ErrMissingCredentials)
	}
	if in.ExpiresAt != "" {
		if _, err := time.Parse(DateLayout, in.ExpiresAt); err != nil {
			return fmt.Errorf("invalid expires_at %q: expected %s", in.ExpiresAt, DateLayout)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	if _, exists := snapshot[in.LicenseKey]; exists {
		return fmt.Errorf("%w: %s", apierrors.ErrLicenseExists, in.LicenseKey)
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	seats := in.Seats
	if seats <= 0 {
		seats = 1
	}

	snapshot[in.LicenseKey] = Record{
		AgencyName:   in.AgencyName,
		ContactEmail: in.ContactEmail,
		Password:     in.Password,
		Active:       active,
		ExpiresAt:    in.ExpiresAt,
		Seats:        seats,
		MachineIDs:   in.MachineIDs,
		CreatedAt:    s.now(),
	}

	if err := s.store.Save(ctx, snapshot); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "license created",
		slog.String("license_key", in.LicenseKey),
		slog.Int("seats", seats),
		slog.Bool("active", active),
	)
	return nil
}

// UpdateInput carries the recognized mutable fields. A nil field leaves the
// stored value unchanged; machine list, contact email, password and agency
// name are immutable after creation.
type UpdateInput struct {
	Active    *bool
	ExpiresAt *string
	Seats     *int
}

// Update merges the given fields onto an existing record under the write
// lock. It fails when the key does not exist.
func (s *Service) Update(ctx context.Context, licenseKey string, in UpdateInput) error {
	if licenseKey == "" {
		return fmt.Errorf("%w: license_key is required", apierrors.ErrMissingCredentials)
	}
	if in.ExpiresAt != nil && *in.ExpiresAt != "" {
		if _, err := time.Parse(DateLayout, *in.ExpiresAt); err != nil {
			return fmt.Errorf("invalid expires_at %q: expected %s", *in.ExpiresAt, DateLayout)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	rec, exists := snapshot[licenseKey]
	if !exists {
		return fmt.Errorf("%w: %s", apierrors.ErrLicenseNotFound, licenseKey)
	}

	if in.Active != nil {
		rec.Active = *in.Active
	}
	if in.ExpiresAt != nil {
		rec.ExpiresAt = *in.ExpiresAt
	}
	if in.Seats != nil && *in.Seats > 0 {
		rec.Seats = *in.Seats
	}
	snapshot[licenseKey] = rec

	if err := s.store.Save(ctx, snapshot); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "license updated",
		slog.String("license_key", licenseKey),
	)
	return nil
}

// Get returns the record for a key, or ErrLicenseNotFound.
func (s *Service) Get(ctx context.Context, licenseKey string) (*Record, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, exists := snapshot[licenseKey]
	if !exists {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrLicenseNotFound, licenseKey)
	}
	return &rec, nil
}

// List returns all license keys in sorted order together with a snapshot
// of their records.
func (s *Service) List(ctx context.Context) ([]string, Snapshot, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, snapshot, nil
}
