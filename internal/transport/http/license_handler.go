package http

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "licensed/internal/errors"
	"licensed/internal/infrastructure"
	"licensed/internal/services"
	"licensed/pkg/contracts/domain"
)

// validate checks request structs against their validation tags, reporting
// fields by their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage flattens a validator error into one human-readable line.
func validationMessage(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// LicenseHandler handles license-related HTTP requests.
type LicenseHandler struct {
	service services.LicenseService
	logger  *slog.Logger
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(service services.LicenseService, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "license")),
	}
}

// Routes returns a chi router for the license endpoints
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Post("/check", h.Check)
	r.Post("/create", h.Create)
	r.Post("/update", h.Update)

	// Read-only admin lookups
	r.Get("/", h.List)
	r.Get("/{licenseKey}", h.Get)

	return r
}

// Check handles POST /api/license/check.
//
// The lookup variant is selected by the payload: a license_key routes to
// the key lookup, otherwise the email/password pair is used. Missing
// credentials and unresolved lookups come back as success=false inside the
// payload; the check endpoint never turns business outcomes into HTTP
// errors. The payload is deliberately not validated beyond JSON shape so
// that a malformed email resolves to the same "Invalid email or password"
// outcome a wrong one does.
func (h *LicenseHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("license-handler")

	ctx, span := tracer.Start(ctx, "license_handler.check",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/license/check"),
		),
	)
	defer span.End()

	var req domain.CheckLicenseRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(ctx, "undecodable check request",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	resp := h.service.Check(ctx, req)

	span.SetAttributes(
		attribute.Bool("license.success", resp.Success),
		attribute.String("license.message", resp.Message),
	)

	render.JSON(w, r, resp)
}

// Create handles POST /api/license/create.
func (h *LicenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("license-handler")

	ctx, span := tracer.Start(ctx, "license_handler.create",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/license/create"),
		),
	)
	defer span.End()

	var req domain.CreateLicenseRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validate.Struct(&req); err != nil {
		render.JSON(w, r, &domain.MutateLicenseResponse{
			Success: false,
			Message: validationMessage(err),
			TraceID: infrastructure.TraceIDFromContext(ctx),
		})
		return
	}

	resp := h.service.Create(ctx, req)
	span.SetAttributes(attribute.Bool("license.success", resp.Success))
	render.JSON(w, r, resp)
}

// Update handles POST /api/license/update.
func (h *LicenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("license-handler")

	ctx, span := tracer.Start(ctx, "license_handler.update",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", "/api/license/update"),
		),
	)
	defer span.End()

	var req domain.UpdateLicenseRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validate.Struct(&req); err != nil {
		render.JSON(w, r, &domain.MutateLicenseResponse{
			Success: false,
			Message: validationMessage(err),
			TraceID: infrastructure.TraceIDFromContext(ctx),
		})
		return
	}

	resp := h.service.Update(ctx, req)
	span.SetAttributes(attribute.Bool("license.success", resp.Success))
	render.JSON(w, r, resp)
}

// Get handles GET /api/license/{licenseKey}.
func (h *LicenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	licenseKey := chi.URLParam(r, "licenseKey")

	view, err := h.service.Get(ctx, licenseKey)
	if err != nil {
		if apierrors.IsNotFound(err) {
			render.Render(w, r, apierrors.NotFoundError("license"))
			return
		}
		h.logger.ErrorContext(ctx, "license lookup failed",
			slog.String("license_key", licenseKey),
			slog.String("error", err.Error()),
		)
		render.Render(w, r, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, view)
}

// List handles GET /api/license.
func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "license list failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, views)
}
