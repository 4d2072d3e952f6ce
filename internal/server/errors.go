package server

import (
	"errors"
	"net/http"

	"github.com/wakili/backend/internal/onboarding"
	"github.com/wakili/backend/internal/service"
	"github.com/wakili/backend/internal/validation"
)

type errorResponse struct {
	Error        string            `json:"error"`
	Fields       map[string]string `json:"fields,omitempty"`
	MissingSteps []string          `json:"missingSteps,omitempty"`
}

type statusMapping struct {
	target error
	status int
	key    string
}

// Order matters: specific errors precede the generic ones they may wrap.
var statusMappings = []statusMapping{
	{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrEmailNotVerified, http.StatusForbidden, "email_not_verified"},
	{service.ErrInvalidCode, http.StatusBadRequest, "invalid_code"},
	{service.ErrCodeExpired, http.StatusGone, "code_expired"},
	{service.ErrWrongPassword, http.StatusBadRequest, "wrong_password"},
	{service.ErrSessionExpired, http.StatusUnauthorized, "session_expired"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{service.ErrLawyerUnavailable, http.StatusConflict, "lawyer_unavailable"},
	{service.ErrBookingNotEditable, http.StatusConflict, "booking_not_cancellable"},
	{onboarding.ErrStepOutOfOrder, http.StatusConflict, "step_out_of_order"},
	{onboarding.ErrApplicationLocked, http.StatusConflict, "application_locked"},
	{onboarding.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, status int, key string) {
	respondJSON(w, status, errorResponse{
		Error: h.catalog.Message(languageOf(r), key, nil),
	})
}

func (h *APIHandlers) writeValidation(w http.ResponseWriter, r *http.Request, errs *validation.Errors) {
	lang := languageOf(r)
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:  h.catalog.Message(lang, "validation_failed", nil),
		Fields: errs.Localize(h.catalog, lang),
	})
}

// writeServiceError maps err to a status and a localised body. Unknown errors
// are logged with msg and reported as 500.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	lang := languageOf(r)

	var incomplete *onboarding.IncompleteError
	if errors.As(err, &incomplete) {
		resp := errorResponse{Error: h.catalog.Message(lang, "incomplete_application", nil)}
		for _, step := range incomplete.Missing {
			resp.MissingSteps = append(resp.MissingSteps, step.String())
		}
		if !incomplete.Invalid.Empty() {
			resp.Fields = incomplete.Invalid.Localize(h.catalog, lang)
		}
		respondJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		h.writeValidation(w, r, verrs)
		return
	}

	for _, m := range statusMappings {
		if errors.Is(err, m.target) {
			h.writeError(w, r, m.status, m.key)
			return
		}
	}

	h.logger.ErrorContext(r.Context(), msg, "error", err, "path", r.URL.Path)
	h.writeError(w, r, http.StatusInternalServerError, "internal")
}

func (h *APIHandlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, "not_found")
}

func (h *APIHandlers) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
}
