package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensed/internal/license"
	"licensed/internal/services"
	"licensed/internal/store"
	"licensed/pkg/contracts/domain"
)

func newTestServer(t *testing.T, seed license.Snapshot) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := license.NewService(
		store.NewMemoryStoreWith(seed),
		logger,
		license.WithClock(func() time.Time {
			return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		}),
	)
	svc := services.NewLicenseService(engine, logger, nil)
	handler := NewLicenseHandler(svc, logger)

	r := chi.NewRouter()
	r.Mount("/api/license", handler.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeCheck(t *testing.T, resp *http.Response) domain.CheckLicenseResponse {
	t.Helper()
	defer resp.Body.Close()

	var out domain.CheckLicenseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeMutate(t *testing.T, resp *http.Response) domain.MutateLicenseResponse {
	t.Helper()
	defer resp.Body.Close()

	var out domain.MutateLicenseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedSnapshot() license.Snapshot {
	return license.Snapshot{
		"KEY-VALID": {
			ContactEmail: "valid@example.com",
			Password:     "secret",
			Active:       true,
			ExpiresAt:    "2030-01-01",
			Seats:        2,
			MachineIDs:   "M1",
		},
		"KEY-INACTIVE": {
			Active: false,
			Seats:  1,
		},
		"KEY-EXPIRED": {
			Active:    true,
			ExpiresAt: "2024-12-31",
			Seats:     1,
		},
		"KEY-FULL": {
			Active:     true,
			Seats:      1,
			MachineIDs: "M1",
		},
	}
}

func TestCheckByKey(t *testing.T) {
	srv := newTestServer(t, seedSnapshot())

	tests := []struct {
		name       string
		req        domain.CheckLicenseRequest
		wantOK     bool
		wantActive *bool
		wantMsg    string
	}{
		{
			name:       "valid license known machine",
			req:        domain.CheckLicenseRequest{LicenseKey: "KEY-VALID", MachineID: "M1"},
			wantOK:     true,
			wantActive: boolPtr(true),
			wantMsg:    "License valid",
		},
		{
			name:       "valid license free seat",
			req:        domain.CheckLicenseRequest{LicenseKey: "KEY-VALID", MachineID: "M2"},
			wantOK:     true,
			wantActive: boolPtr(true),
			wantMsg:    "License valid",
		},
		{
			name:       "inactive license",
			req:        domain.CheckLicenseRequest{LicenseKey: "KEY-INACTIVE", MachineID: "M1"},
			wantOK:     true,
			wantActive: boolPtr(false),
			wantMsg:    "License is inactive",
		},
		{
			name:       "expired license",
			req:        domain.CheckLicenseRequest{LicenseKey: "KEY-EXPIRED", MachineID: "M1"},
			wantOK:     true,
			wantActive: boolPtr(false),
			wantMsg:    "License expired",
		},
		{
			name:       "seat limit reached",
			req:        domain.CheckLicenseRequest{LicenseKey: "KEY-FULL", MachineID: "M2"},
			wantOK:     true,
			wantActive: boolPtr(false),
			wantMsg:    "Seat limit exceeded",
		},
		{
			name:    "unknown key",
			req:     domain.CheckLicenseRequest{LicenseKey: "KEY-NOPE", MachineID: "M1"},
			wantOK:  false,
			wantMsg: "License not found",
		},
		{
			name:    "no credentials at all",
			req:     domain.CheckLicenseRequest{MachineID: "M1"},
			wantOK:  false,
			wantMsg: "Email and password required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/api/license/check", tt.req)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			out := decodeCheck(t, resp)
			assert.Equal(t, tt.wantOK, out.Success)
			assert.Equal(t, tt.wantMsg, out.Message)
			if tt.wantActive == nil {
				assert.Nil(t, out.Active)
			} else {
				require.NotNil(t, out.Active)
				assert.Equal(t, *tt.wantActive, *out.Active)
			}
		})
	}
}

func TestCheckByEmail(t *testing.T) {
	srv := newTestServer(t, seedSnapshot())

	tests := []struct {
		name    string
		req     domain.CheckLicenseRequest
		wantOK  bool
		wantMsg string
	}{
		{
			name:    "matching email and password",
			req:     domain.CheckLicenseRequest{Email: "valid@example.com", Password: "secret", MachineID: "M1"},
			wantOK:  true,
			wantMsg: "License valid",
		},
		{
			name:    "wrong password",
			req:     domain.CheckLicenseRequest{Email: "valid@example.com", Password: "nope", MachineID: "M1"},
			wantOK:  false,
			wantMsg: "Invalid email or password",
		},
		{
			name:    "unknown email",
			req:     domain.CheckLicenseRequest{Email: "ghost@example.com", Password: "secret", MachineID: "M1"},
			wantOK:  false,
			wantMsg: "Invalid email or password",
		},
		{
			name:    "email without password",
			req:     domain.CheckLicenseRequest{Email: "valid@example.com", MachineID: "M1"},
			wantOK:  false,
			wantMsg: "Email and password required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/api/license/check", tt.req)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			out := decodeCheck(t, resp)
			assert.Equal(t, tt.wantOK, out.Success)
			assert.Equal(t, tt.wantMsg, out.Message)
		})
	}
}

func TestCheckRejectsMalformedJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		srv.URL+"/api/license/check", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateLicense(t *testing.T) {
	srv := newTestServer(t, nil)

	seats := 3
	resp := postJSON(t, srv, "/api/license/create", domain.CreateLicenseRequest{
		LicenseKey: "KEY-NEW",
		ExpiresAt:  "2031-12-31",
		Seats:      &seats,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeMutate(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, "License created", out.Message)

	// The new license is immediately checkable
	check := decodeCheck(t, postJSON(t, srv, "/api/license/check",
		domain.CheckLicenseRequest{LicenseKey: "KEY-NEW", MachineID: "M1"}))
	assert.True(t, check.Success)
	assert.Equal(t, "License valid", check.Message)
}

func TestCreateDuplicate(t *testing.T) {
	srv := newTestServer(t, seedSnapshot())

	resp := postJSON(t, srv, "/api/license/create", domain.CreateLicenseRequest{
		LicenseKey: "KEY-VALID",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeMutate(t, resp)
	assert.False(t, out.Success)
	assert.Equal(t, "License already exists", out.Message)
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name    string
		payload map[string]any
		wantMsg string
	}{
		{
			name:    "missing license key",
			payload: map[string]any{"seats": 1},
			wantMsg: "license_key is required",
		},
		{
			name:    "zero seats",
			payload: map[string]any{"license_key": "K1", "seats": 0},
			wantMsg: "seats must be at least 1",
		},
		{
			name:    "bad contact email",
			payload: map[string]any{"license_key": "K1", "contact_email": "not-an-email"},
			wantMsg: "contact_email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/api/license/create", tt.payload)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			out := decodeMutate(t, resp)
			assert.False(t, out.Success)
			assert.Equal(t, tt.wantMsg, out.Message)
		})
	}
}

func TestUpdateLicense(t *testing.T) {
	srv := newTestServer(t, seedSnapshot())

	active := false
	resp := postJSON(t, srv, "/api/license/update", domain.UpdateLicenseRequest{
		LicenseKey: "KEY-VALID",
		Active:     &active,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeMutate(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, "License updated", out.Message)

	check := decodeCheck(t, postJSON(t, srv, "/api/license/check",
		domain.CheckLicenseRequest{LicenseKey: "KEY-VALID", MachineID: "M1"}))
	assert.True(t, check.Success)
	assert.Equal(t, "License is inactive", check.Message)
}

func TestUpdateUnknownLicense(t *testing.T) {
	srv := newTestServer(t, nil)

	active := true
	resp := postJSON(t, srv, "/api/license/update", domain.UpdateLicenseRequest{
		LicenseKey: "KEY-NOPE",
		Active:     &active,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeMutate(t, resp)
	assert.False(t, out.Success)
	assert.Equal(t, "License not found", out.Message)
}

func TestGetLicense(t *testing.T) {
	srv := newTestServer(t, seedSnapshot())

	resp, err := srv.Client().Get(srv.URL + "/api/license/KEY-VALID")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view domain.LicenseView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "KEY-VALID", view.LicenseKey)
	assert.Equal(t, "valid@example.com", view.ContactEmail)
	assert.Equal(t, 2, view.Seats)
	assert.Equal(t, []string{"M1"}, view.MachineIDs)

	// Password never appears in the read model
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestGetUnknownLicense(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := srv.Client().Get(srv.URL + "/api/license/KEY-NOPE")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListLicenses(t *testing.T) {
	srv := newTestServer(t, seedSnapshot())

	resp, err := srv.Client().Get(srv.URL + "/api/license")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []domain.LicenseView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 4)

	// Keys come back sorted
	assert.Equal(t, "KEY-EXPIRED", views[0].LicenseKey)
	assert.Equal(t, "KEY-FULL", views[1].LicenseKey)
	assert.Equal(t, "KEY-INACTIVE", views[2].LicenseKey)
	assert.Equal(t, "KEY-VALID", views[3].LicenseKey)
}

func boolPtr(b bool) *bool { return &b }
