// Package services contains the service layer between the HTTP transport
// and the license domain.
//
// Every business outcome, including failures, is surfaced as a structured
// success/failure payload with a human-readable message; sentinel errors
// from the domain never escape to the transport as protocol errors.
package services
