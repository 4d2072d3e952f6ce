package server

import (
	"net/http"

	"github.com/wakili/backend/internal/service"
	"github.com/wakili/backend/internal/validation"
)

type bookingRequest struct {
	LawyerID        string `json:"lawyerId"`
	Type            string `json:"type"`
	ScheduledAt     string `json:"scheduledAt"`
	DurationMinutes int    `json:"durationMinutes"`
	Notes           string `json:"notes"`
}

func (h *APIHandlers) createBooking(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var payload bookingRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	errs := validation.New()
	scheduledAt := parseTimestamp(errs, "scheduledAt", payload.ScheduledAt)
	if !errs.Empty() {
		h.writeValidation(w, r, errs)
		return
	}

	booking, err := h.services.Bookings.Create(r.Context(), p, service.BookingInput{
		LawyerID:        payload.LawyerID,
		Type:            payload.Type,
		ScheduledAt:     scheduledAt,
		DurationMinutes: payload.DurationMinutes,
		Notes:           payload.Notes,
		Lang:            languageOf(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create booking")
		return
	}
	respondJSON(w, http.StatusCreated, toBooking(booking))
}

func (h *APIHandlers) getBooking(w http.ResponseWriter, r *http.Request, p service.Principal) {
	booking, err := h.services.Bookings.Get(r.Context(), p, pathVar(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load booking")
		return
	}
	respondJSON(w, http.StatusOK, toBooking(booking))
}

func (h *APIHandlers) cancelBooking(w http.ResponseWriter, r *http.Request, p service.Principal) {
	booking, err := h.services.Bookings.Cancel(r.Context(), p, pathVar(r, "id"), languageOf(r))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to cancel booking")
		return
	}
	respondJSON(w, http.StatusOK, toBooking(booking))
}
