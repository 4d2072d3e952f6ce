package server

import (
	"net/http"

	"github.com/wakili/backend/internal/service"
)

type profileRequest struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	AvatarURL   string `json:"avatarUrl"`
	NotifyEmail bool   `json:"notifyEmail"`
	NotifySMS   bool   `json:"notifySms"`
}

func (h *APIHandlers) getProfile(w http.ResponseWriter, r *http.Request, p service.Principal) {
	profile, err := h.services.Profile.Profile(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, toProfile(profile))
}

func (h *APIHandlers) updateProfile(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var payload profileRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	profile, err := h.services.Profile.UpdateProfile(r.Context(), p, service.ProfileUpdateInput{
		FullName:    payload.FullName,
		Phone:       payload.Phone,
		City:        payload.City,
		AvatarURL:   payload.AvatarURL,
		NotifyEmail: payload.NotifyEmail,
		NotifySMS:   payload.NotifySMS,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, toProfile(profile))
}

func (h *APIHandlers) profileOverview(w http.ResponseWriter, r *http.Request, p service.Principal) {
	overview, err := h.services.Profile.Overview(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load profile overview")
		return
	}
	respondJSON(w, http.StatusOK, overviewResponse{
		Profile:          toProfile(overview.Profile),
		UpcomingBookings: toBookings(overview.Upcoming),
		Favorites:        toFavorites(overview.Favorites),
	})
}

func (h *APIHandlers) profileBookings(w http.ResponseWriter, r *http.Request, p service.Principal) {
	query := r.URL.Query()
	page, err := h.services.Profile.Bookings(r.Context(), p, service.BookingsParams{
		Status:   query.Get("status"),
		Page:     parseInt(query.Get("page"), 1),
		PageSize: parseInt(query.Get("pageSize"), 0),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list bookings")
		return
	}
	respondJSON(w, http.StatusOK, listBookingsResponse{
		Items:      toBookings(page.Items),
		Pagination: toPagination(page.Pagination),
	})
}

func (h *APIHandlers) listFavorites(w http.ResponseWriter, r *http.Request, p service.Principal) {
	favs, err := h.services.Profile.Favorites(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list favorites")
		return
	}
	respondJSON(w, http.StatusOK, toFavorites(favs))
}

func (h *APIHandlers) addFavorite(w http.ResponseWriter, r *http.Request, p service.Principal) {
	if err := h.services.Profile.AddFavorite(r.Context(), p, pathVar(r, "lawyerId")); err != nil {
		h.writeServiceError(w, r, err, "failed to add favorite")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *APIHandlers) removeFavorite(w http.ResponseWriter, r *http.Request, p service.Principal) {
	if err := h.services.Profile.RemoveFavorite(r.Context(), p, pathVar(r, "lawyerId")); err != nil {
		h.writeServiceError(w, r, err, "failed to remove favorite")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
