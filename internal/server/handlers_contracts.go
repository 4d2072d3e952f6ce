package server

import (
	"net/http"

	"github.com/wakili/backend/internal/service"
)

type contractReviewRequest struct {
	Title        string `json:"title"`
	ContractType string `json:"contractType"`
	Content      string `json:"content"`
	Notes        string `json:"notes"`
	LawyerID     string `json:"lawyerId"`
}

type completeReviewRequest struct {
	Findings []string `json:"findings"`
}

func (h *APIHandlers) createContractReview(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var payload contractReviewRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	review, err := h.services.Contracts.Create(r.Context(), p, service.ContractReviewInput{
		Title:        payload.Title,
		ContractType: payload.ContractType,
		Content:      payload.Content,
		Notes:        payload.Notes,
		LawyerID:     payload.LawyerID,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create contract review")
		return
	}
	respondJSON(w, http.StatusCreated, toContractReview(review))
}

func (h *APIHandlers) listContractReviews(w http.ResponseWriter, r *http.Request, p service.Principal) {
	reviews, err := h.services.Contracts.List(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list contract reviews")
		return
	}
	resp := make([]contractReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, toContractReview(review))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) getContractReview(w http.ResponseWriter, r *http.Request, p service.Principal) {
	review, err := h.services.Contracts.Get(r.Context(), p, pathVar(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load contract review")
		return
	}
	respondJSON(w, http.StatusOK, toContractReview(review))
}

func (h *APIHandlers) startContractReview(w http.ResponseWriter, r *http.Request, p service.Principal) {
	review, err := h.services.Contracts.Start(r.Context(), p, pathVar(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to start contract review")
		return
	}
	respondJSON(w, http.StatusOK, toContractReview(review))
}

func (h *APIHandlers) completeContractReview(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var payload completeReviewRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	review, err := h.services.Contracts.Complete(r.Context(), p, pathVar(r, "id"), payload.Findings)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to complete contract review")
		return
	}
	respondJSON(w, http.StatusOK, toContractReview(review))
}
