package license

import (
	"time"
)

// Evaluate decides whether rec permits use by machineID on the given day.
//
// Checks run cheapest and most authoritative first, and the first match
// terminates: existence, then the activation kill-switch, then expiry, then
// seat capacity. An inactive or expired license therefore never leaks
// seat-limit details.
//
// Expiry comparison is date-granular: a license expiring today is still
// valid for the rest of the day. A machine that already holds a seat always
// passes the capacity check, so re-validation of an existing seat never
// fails on capacity. Evaluate is pure; it never mutates rec.
func Evaluate(rec *Record, machineID string, today time.Time) Verdict {
	if rec == nil {
		return VerdictNotFound
	}
	if !rec.Active {
		return VerdictInactive
	}
	if exp, ok := rec.ExpiryDate(); ok {
		y, m, d := today.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if day.After(exp) {
			return VerdictExpired
		}
	}
	if !rec.HasMachine(machineID) && len(rec.Machines()) >= rec.Seats {
		return VerdictSeatLimit
	}
	return VerdictValid
}
