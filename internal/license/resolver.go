package license

import (
	"fmt"
	"sort"

	apierrors "licensed/internal/errors"
)

// Credentials resolves a lookup request to a candidate record within a
// snapshot. Both variants terminate in the same Evaluate call downstream.
type Credentials interface {
	// Resolve returns the matching record and its license key, or a nil
	// record when nothing matches. A missing-credentials failure is
	// returned as an error before any lookup happens.
	Resolve(snapshot Snapshot) (string, *Record, error)

	// Variant names the lookup strategy for logging and metrics.
	Variant() string
}

// KeyCredentials looks a license up by its key. O(1).
type KeyCredentials struct {
	LicenseKey string
}

// Variant implements Credentials.
func (c KeyCredentials) Variant() string { return "key" }

// Resolve implements Credentials.
func (c KeyCredentials) Resolve(snapshot Snapshot) (string, *Record, error) {
	if c.LicenseKey == "" {
		return "", nil, fmt.Errorf("%w: license_key is required", apierrors.ErrMissingCredentials)
	}
	rec, ok := snapshot[c.LicenseKey]
	if !ok {
		return "", nil, nil
	}
	return c.LicenseKey, &rec, nil
}

// EmailCredentials looks a license up by contact email and password,
// matched exactly and case-sensitively. O(n) in the number of records.
//
// Keys are scanned in sorted order so that duplicate contact emails always
// resolve to the same record instead of varying with map iteration order.
type EmailCredentials struct {
	Email    string
	Password string
}

// Variant implements Credentials.
func (c EmailCredentials) Variant() string { return "email" }

// Resolve implements Credentials.
func (c EmailCredentials) Resolve(snapshot Snapshot) (string, *Record, error) {
	if c.Email == "" || c.Password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", apierrors.ErrMissingCredentials)
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		rec := snapshot[k]
		if rec.ContactEmail == c.Email && rec.Password == c.Password {
			return k, &rec, nil
		}
	}
	return "", nil, nil
}
