package errors

import (
	"errors"
)

// License-specific errors (sentinel errors used across store, domain and
// service layers). Boundary handlers translate these into structured
// success/failure payloads rather than transport-level error codes.
var (
	// ErrMissingCredentials signals that a lookup request lacked the
	// fields needed to resolve a license (empty key, or email/password
	// with either field absent). Distinct from ErrLicenseNotFound.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrLicenseNotFound signals that no stored record matches the
	// presented credentials.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrLicenseExists signals a create against a key that is already
	// present in the store.
	ErrLicenseExists = errors.New("license already exists")

	// ErrStoreRead signals an unrecoverable read fault in a store
	// implementation. The file store never returns it (missing or corrupt
	// files load as empty); it is part of the store contract for backends
	// that cannot degrade that way.
	ErrStoreRead = errors.New("store read failure")

	// ErrStoreWrite signals a failed persist. Fatal to the triggering
	// operation only; the previously persisted snapshot is untouched.
	ErrStoreWrite = errors.New("store write failure")
)

// IsMissingCredentials reports whether err is a missing-credentials failure.
func IsMissingCredentials(err error) bool {
	return errors.Is(err, ErrMissingCredentials)
}

// IsNotFound reports whether err is a license-not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLicenseNotFound)
}

// IsConflict reports whether err is a duplicate-key create failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrLicenseExists)
}
