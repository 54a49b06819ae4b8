// Package domain contains the request/response contract types for the
// license server HTTP API. These types serve as the Single Source of Truth
// (SSOT) shared by the transport and service layers.
package domain

import (
	"time"
)

// CheckLicenseRequest is the payload for POST /api/license/check.
// Callers supply either a license key or an email/password pair, always
// together with the requesting machine identifier.
type CheckLicenseRequest struct {
	LicenseKey string `json:"license_key,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Password   string `json:"password,omitempty"`
	MachineID  string `json:"machine_id,omitempty"`
}

// CheckLicenseResponse reports whether a license is currently usable.
// Success is false only when the request could not be resolved to a
// license (missing credentials, unknown key or bad email/password);
// once resolved, Active carries the actual validity outcome.
type CheckLicenseResponse struct {
	Success bool   `json:"success"`
	Active  *bool  `json:"active,omitempty"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// CreateLicenseRequest is the payload for POST /api/license/create.
type CreateLicenseRequest struct {
	LicenseKey   string `json:"license_key" validate:"required"`
	AgencyName   string `json:"agency_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Password     string `json:"password,omitempty"`
	Active       *bool  `json:"active,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
	Seats        *int   `json:"seats,omitempty" validate:"omitempty,min=1"`
	MachineIDs   string `json:"machine_ids,omitempty"`
}

// UpdateLicenseRequest is the payload for POST /api/license/update.
// Only the recognized mutable fields are accepted; a nil field leaves the
// stored value unchanged.
type UpdateLicenseRequest struct {
	LicenseKey string  `json:"license_key" validate:"required"`
	Active     *bool   `json:"active,omitempty"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
	Seats      *int    `json:"seats,omitempty" validate:"omitempty,min=1"`
}

// MutateLicenseResponse is the shared response shape for create and update.
type MutateLicenseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// LicenseView is the read-model of a stored license returned by the
// admin lookup endpoints. The password field is never exposed.
type LicenseView struct {
	LicenseKey   string    `json:"license_key"`
	AgencyName   string    `json:"agency_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Active       bool      `json:"active"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
	Seats        int       `json:"seats"`
	MachineIDs   []string  `json:"machine_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// HealthResponse mirrors the service banner returned from GET / and
// GET /api/health.
type HealthResponse struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
