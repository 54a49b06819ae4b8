package services

import (
	"context"
	"log/slog"
	"time"

	apierrors "licensed/internal/errors"
	"licensed/internal/infrastructure"
	"licensed/internal/license"
	"licensed/pkg/contracts/domain"
)

// LicenseService provides the boundary-facing license operations. Business
// failures are reported inside the response payloads, never as errors; the
// error return is reserved for faults the transport should turn into a
// 5xx (none exist today, but the signature keeps handlers honest).
type LicenseService interface {
	Check(ctx context.Context, req domain.CheckLicenseRequest) *domain.CheckLicenseResponse
	Create(ctx context.Context, req domain.CreateLicenseRequest) *domain.MutateLicenseResponse
	Update(ctx context.Context, req domain.UpdateLicenseRequest) *domain.MutateLicenseResponse
	Get(ctx context.Context, licenseKey string) (*domain.LicenseView, error)
	List(ctx context.Context) ([]domain.LicenseView, error)
}

// licenseService implements LicenseService on top of the domain service.
type licenseService struct {
	engine  *license.Service
	logger  *slog.Logger
	metrics *infrastructure.LicenseMetrics
}

// NewLicenseService creates the boundary-facing license service. metrics
// may be nil when observability is disabled.
func NewLicenseService(engine *license.Service, logger *slog.Logger, metrics *infrastructure.LicenseMetrics) LicenseService {
	return &licenseService{
		engine:  engine,
		logger:  logger.With(slog.String("service", "license")),
		metrics: metrics,
	}
}

// credentialsFor selects the lookup variant: a present license key wins,
// otherwise the email/password pair is used.
func credentialsFor(req domain.CheckLicenseRequest) license.Credentials {
	if req.LicenseKey != "" {
		return license.KeyCredentials{LicenseKey: req.LicenseKey}
	}
	return license.EmailCredentials{Email: req.Email, Password: req.Password}
}

// notFoundMessage is the resolution-failure message for each lookup
// variant. The email variant deliberately does not reveal whether the
// email or the password was wrong.
func notFoundMessage(creds license.Credentials) string {
	if creds.Variant() == "email" {
		return "Invalid email or password"
	}
	return "License not found"
}

// missingCredentialsMessage names the fields the variant requires.
func missingCredentialsMessage(creds license.Credentials) string {
	if creds.Variant() == "email" {
		return "Email and password required"
	}
	return "License key required"
}

func (s *licenseService) Check(ctx context.Context, req domain.CheckLicenseRequest) *domain.CheckLicenseResponse {
	start := time.Now()
	creds := credentialsFor(req)
	traceID := infrastructure.TraceIDFromContext(ctx)

	result, err := s.engine.Check(ctx, creds, req.MachineID)
	if err != nil {
		if apierrors.IsMissingCredentials(err) {
			s.metrics.RecordCheck(ctx, creds.Variant(), "missing_credentials", time.Since(start))
			return &domain.CheckLicenseResponse{
				Success: false,
				Message: missingCredentialsMessage(creds),
				TraceID: traceID,
			}
		}
		s.logger.ErrorContext(ctx, "license check failed",
			slog.String("lookup", creds.Variant()),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordCheck(ctx, creds.Variant(), "error", time.Since(start))
		return &domain.CheckLicenseResponse{
			Success: false,
			Message: "License check failed",
			TraceID: traceID,
		}
	}

	s.metrics.RecordCheck(ctx, creds.Variant(), string(result.Verdict), time.Since(start))

	if !result.Found {
		return &domain.CheckLicenseResponse{
			Success: false,
			Message: notFoundMessage(creds),
			TraceID: traceID,
		}
	}

	active := result.Verdict.Valid()
	return &domain.CheckLicenseResponse{
		Success: true,
		Active:  &active,
		Message: result.Verdict.Message(),
		TraceID: traceID,
	}
}

func (s *licenseService) Create(ctx context.Context, req domain.CreateLicenseRequest) *domain.MutateLicenseResponse {
	traceID := infrastructure.TraceIDFromContext(ctx)

	seats := 0
	if req.Seats != nil {
		seats = *req.Seats
	}
	err := s.engine.Create(ctx, license.CreateInput{
		LicenseKey:   req.LicenseKey,
		AgencyName:   req.AgencyName,
		ContactEmail: req.ContactEmail,
		Password:     req.Password,
		Active:       req.Active,
		ExpiresAt:    req.ExpiresAt,
		Seats:        seats,
		MachineIDs:   req.MachineIDs,
	})
	s.metrics.RecordMutation(ctx, "create", err)

	switch {
	case err == nil:
		return &domain.MutateLicenseResponse{Success: true, Message: "License created", TraceID: traceID}
	case apierrors.IsConflict(err):
		return &domain.MutateLicenseResponse{Success: false, Message: "License already exists", TraceID: traceID}
	case apierrors.IsMissingCredentials(err):
		return &domain.MutateLicenseResponse{Success: false, Message: "License key required", TraceID: traceID}
	default:
		s.logger.ErrorContext(ctx, "license create failed",
			slog.String("license_key", req.LicenseKey),
			slog.String("error", err.Error()),
		)
		return &domain.MutateLicenseResponse{Success: false, Message: err.Error(), TraceID: traceID}
	}
}

func (s *licenseService) Update(ctx context.Context, req domain.UpdateLicenseRequest) *domain.MutateLicenseResponse {
	traceID := infrastructure.TraceIDFromContext(ctx)

	err := s.engine.Update(ctx, req.LicenseKey, license.UpdateInput{
		Active:    req.Active,
		ExpiresAt: req.ExpiresAt,
		Seats:     req.Seats,
	})
	s.metrics.RecordMutation(ctx, "update", err)

	switch {
	case err == nil:
		return &domain.MutateLicenseResponse{Success: true, Message: "License updated", TraceID: traceID}
	case apierrors.IsNotFound(err):
		return &domain.MutateLicenseResponse{Success: false, Message: "License not found", TraceID: traceID}
	case apierrors.IsMissingCredentials(err):
		return &domain.MutateLicenseResponse{Success: false, Message: "License key required", TraceID: traceID}
	default:
		s.logger.ErrorContext(ctx, "license update failed",
			slog.String("license_key", req.LicenseKey),
			slog.String("error", err.Error()),
		)
		return &domain.MutateLicenseResponse{Success: false, Message: err.Error(), TraceID: traceID}
	}
}

func (s *licenseService) Get(ctx context.Context, licenseKey string) (*domain.LicenseView, error) {
	rec, err := s.engine.Get(ctx, licenseKey)
	if err != nil {
		return nil, err
	}
	view := viewOf(licenseKey, rec)
	return &view, nil
}

func (s *licenseService) List(ctx context.Context) ([]domain.LicenseView, error) {
	keys, snapshot, err := s.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.LicenseView, 0, len(keys))
	for _, key := range keys {
		rec := snapshot[key]
		views = append(views, viewOf(key, &rec))
	}
	return views, nil
}

// viewOf converts a stored record to its read model. The password never
// leaves the service layer.
func viewOf(key string, rec *license.Record) domain.LicenseView {
	machines := rec.Machines()
	if machines == nil {
		machines = []string{}
	}
	return domain.LicenseView{
		LicenseKey:   key,
		AgencyName:   rec.AgencyName,
		ContactEmail: rec.ContactEmail,
		Active:       rec.Active,
		ExpiresAt:    rec.ExpiresAt,
		Seats:        rec.Seats,
		MachineIDs:   machines,
		CreatedAt:    rec.CreatedAt,
	}
}
