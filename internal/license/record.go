package license

import (
	"strings"
	"time"
)

// DateLayout is the wire format for license expiry dates.
const DateLayout = "2006-01-02"

// Record is the persisted license entity. The license key is the snapshot
// map key and is not repeated inside the record.
//
// MachineIDs is persisted as an ordered comma-joined list. The order
// carries no meaning but is preserved across loads so diffs of the store
// file stay stable.
type Record struct {
	AgencyName   string    `json:"agency_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Password     string    `json:"password,omitempty"`
	Active       bool      `json:"active"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
	Seats        int       `json:"seats"`
	MachineIDs   string    `json:"machine_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is the full authoritative state of the store: license key to
// record.
type Snapshot map[string]Record

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Machines returns the machine identifiers currently bound to seats.
// An empty or whitespace-only list yields no machines, so a fresh record
// accepts its first requester up to the seat count.
func (r *Record) Machines() []string {
	if strings.TrimSpace(r.MachineIDs) == "" {
		return nil
	}
	parts := strings.Split(r.MachineIDs, ",")
	machines := make([]string, 0, len(parts))
	for _, p := range parts {
		if m := strings.TrimSpace(p); m != "" {
			machines = append(machines, m)
		}
	}
	return machines
}

// SetMachines replaces the bound machine list, preserving the given order.
func (r *Record) SetMachines(machines []string) {
	r.MachineIDs = strings.Join(machines, ",")
}

// HasMachine reports whether machineID already holds a seat.
func (r *Record) HasMachine(machineID string) bool {
	for _, m := range r.Machines() {
		if m == machineID {
			return true
		}
	}
	return false
}

// ExpiryDate parses the expiry date. ok is false when no expiry is set or
// the stored value does not parse; such records never expire.
func (r *Record) ExpiryDate() (time.Time, bool) {
	if r.ExpiresAt == "" {
		return time.Time{}, false
	}
	exp, err := time.Parse(DateLayout, r.ExpiresAt)
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}
