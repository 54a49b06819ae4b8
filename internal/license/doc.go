// Package license implements the license validation and seat-enforcement
// engine.
//
// The package is organized around four pieces:
//
//   - Record: the persisted license entity, keyed by an opaque license key.
//   - Evaluate: the pure decision function producing a Verdict for a record,
//     a requesting machine identifier and the current date.
//   - Credentials: the two lookup strategies (license key, email/password)
//     that resolve a request to a candidate record.
//   - Service: the lifecycle operations (check, create, update) that run
//     against a Store, serializing every load-mutate-save cycle behind a
//     single write lock.
//
// Evaluate never writes: a first-time machine that passes the seat check is
// not recorded as bound. Binding is an administrative action outside the
// validation path.
package license
