package license

// Verdict is the outcome of validating a license against a requesting
// machine and the current date.
type Verdict string

const (
	VerdictNotFound  Verdict = "not_found"
	VerdictInactive  Verdict = "inactive"
	VerdictExpired   Verdict = "expired"
	VerdictSeatLimit Verdict = "seat_limit_exceeded"
	VerdictValid     Verdict = "valid"
)

// Valid reports whether the verdict permits use of the license.
func (v Verdict) Valid() bool {
	return v == VerdictValid
}

// Message returns the human-readable reason for the verdict.
func (v Verdict) Message() string {
	switch v {
	case VerdictNotFound:
		return "License not found"
	case VerdictInactive:
		return "License is inactive"
	case VerdictExpired:
		return "License expired"
	case VerdictSeatLimit:
		return "Seat limit exceeded"
	case VerdictValid:
		return "License valid"
	default:
		return string(v)
	}
}
