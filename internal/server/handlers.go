package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wakili/backend/internal/i18n"
	"github.com/wakili/backend/internal/service"
	"github.com/wakili/backend/internal/validation"
)

const maxBodyBytes = 1 << 20

// Services groups the application services exposed over HTTP.
type Services struct {
	Auth       *service.AuthService
	Profile    *service.ProfileService
	Lawyers    *service.LawyerService
	Bookings   *service.BookingService
	Contracts  *service.ContractReviewService
	Onboarding *service.OnboardingService
	Admin      *service.AdminService
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	catalog  *i18n.Catalog
	services Services
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, catalog *i18n.Catalog, services Services) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		catalog:  catalog,
		services: services,
	}
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

var errEmptyBody = errors.New("request body is required")

// decodeBody decodes a JSON body and answers 400 itself when it cannot.
func (h *APIHandlers) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		h.logger.DebugContext(r.Context(), "rejecting request body", "error", err, "path", r.URL.Path)
		h.writeError(w, r, http.StatusBadRequest, "bad_request")
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func pathVar(r *http.Request, name string) string {
	return strings.TrimSpace(mux.Vars(r)[name])
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseFloatParam(value string) (*float64, bool) {
	if value == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func parseBool(value string) bool {
	v, err := strconv.ParseBool(value)
	return err == nil && v
}

// parseTimestamp accepts RFC 3339 timestamps and bare dates. An empty value
// yields the zero time so the service can report it as required.
func parseTimestamp(errs *validation.Errors, field, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.DateOnly, value); err == nil {
		return ts
	}
	errs.Add(field, "invalid_datetime", nil)
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}
