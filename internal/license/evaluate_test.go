package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	day, err := time.Parse(DateLayout, value)
	require.NoError(t, err)
	return day
}

func TestEvaluate(t *testing.T) {
	today := mustDate(t, "2025-06-15")

	tests := []struct {
		name      string
		record    *Record
		machineID string
		expected  Verdict
	}{
		{
			name:      "absent record",
			record:    nil,
			machineID: "M1",
			expected:  VerdictNotFound,
		},
		{
			name:      "inactive license",
			record:    &Record{Active: false, Seats: 5},
			machineID: "M1",
			expected:  VerdictInactive,
		},
		{
			name: "inactive wins over expired",
			record: &Record{
				Active:    false,
				ExpiresAt: "2020-01-01",
				Seats:     1,
			},
			machineID: "M1",
			expected:  VerdictInactive,
		},
		{
			name: "expired license",
			record: &Record{
				Active:    true,
				ExpiresAt: "2025-06-14",
				Seats:     1,
			},
			machineID: "M1",
			expected:  VerdictExpired,
		},
		{
			name: "expires today is still valid",
			record: &Record{
				Active:    true,
				ExpiresAt: "2025-06-15",
				Seats:     1,
			},
			machineID: "M1",
			expected:  VerdictValid,
		},
		{
			name: "expired wins over seat limit",
			record: &Record{
				Active:     true,
				ExpiresAt:  "2000-01-01",
				Seats:      1,
				MachineIDs: "M2",
			},
			machineID: "M1",
			expected:  VerdictExpired,
		},
		{
			name: "no expiry never expires",
			record: &Record{
				Active: true,
				Seats:  1,
			},
			machineID: "M1",
			expected:  VerdictValid,
		},
		{
			name: "unparseable expiry treated as no expiry",
			record: &Record{
				Active:    true,
				ExpiresAt: "not-a-date",
				Seats:     1,
			},
			machineID: "M1",
			expected:  VerdictValid,
		},
		{
			name: "seat limit reached rejects new machine",
			record: &Record{
				Active:     true,
				Seats:      2,
				MachineIDs: "M1,M2",
			},
			machineID: "M3",
			expected:  VerdictSeatLimit,
		},
		{
			name: "existing seat re-validates past the limit",
			record: &Record{
				Active:     true,
				Seats:      2,
				MachineIDs: "M1,M2",
			},
			machineID: "M2",
			expected:  VerdictValid,
		},
		{
			name: "empty machine list accepts first machine",
			record: &Record{
				Active: true,
				Seats:  1,
			},
			machineID: "M1",
			expected:  VerdictValid,
		},
		{
			name: "free seat accepts new machine",
			record: &Record{
				Active:     true,
				Seats:      3,
				MachineIDs: "M1",
			},
			machineID: "M2",
			expected:  VerdictValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.record, tt.machineID, today))
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	today := mustDate(t, "2025-06-15")
	rec := &Record{
		Active:     true,
		Seats:      1,
		MachineIDs: "M1",
	}

	for i := 0; i < 10; i++ {
		require.Equal(t, VerdictValid, Evaluate(rec, "M1", today))
		require.Equal(t, VerdictSeatLimit, Evaluate(rec, "M2", today))
	}

	// The record itself is never mutated
	assert.Equal(t, "M1", rec.MachineIDs)
}

func TestEvaluateNeverBindsMachines(t *testing.T) {
	today := mustDate(t, "2025-06-15")
	rec := &Record{Active: true, Seats: 2}

	// A first-time machine passing the check is not recorded as bound
	require.Equal(t, VerdictValid, Evaluate(rec, "M1", today))
	assert.Empty(t, rec.Machines())
}

func TestRecordMachines(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "empty list", raw: "", expected: nil},
		{name: "single machine", raw: "M1", expected: []string{"M1"}},
		{name: "ordered list", raw: "M1,M2,M3", expected: []string{"M1", "M2", "M3"}},
		{name: "whitespace tolerated", raw: " M1 , M2 ", expected: []string{"M1", "M2"}},
		{name: "empty segments dropped", raw: "M1,,M2,", expected: []string{"M1", "M2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{MachineIDs: tt.raw}
			assert.Equal(t, tt.expected, rec.Machines())
		})
	}
}

func TestRecordSetMachinesPreservesOrder(t *testing.T) {
	rec := &Record{}
	rec.SetMachines([]string{"Z", "A", "M"})
	assert.Equal(t, "Z,A,M", rec.MachineIDs)
	assert.Equal(t, []string{"Z", "A", "M"}, rec.Machines())
}
