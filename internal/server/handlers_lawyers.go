package server

import (
	"net/http"

	"github.com/wakili/backend/internal/service"
	"github.com/wakili/backend/internal/validation"
)

func (h *APIHandlers) listLawyers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	errs := validation.New()
	minRating, ok := parseFloatParam(query.Get("minRating"))
	errs.Check(ok, "minRating", "invalid_choice", nil)
	maxFee, ok := parseFloatParam(query.Get("maxFee"))
	errs.Check(ok, "maxFee", "invalid_choice", nil)
	if !errs.Empty() {
		h.writeValidation(w, r, errs)
		return
	}

	result, err := h.services.Lawyers.Search(r.Context(), service.LawyerSearchParams{
		Page:           parseInt(query.Get("page"), 1),
		PageSize:       parseInt(query.Get("pageSize"), 0),
		Search:         query.Get("search"),
		Specialization: query.Get("specialization"),
		City:           query.Get("city"),
		Language:       query.Get("language"),
		MinRating:      minRating,
		MaxFee:         maxFee,
		AvailableOnly:  parseBool(query.Get("available")),
		SortField:      query.Get("sortField"),
		SortOrder:      query.Get("sortOrder"),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list lawyers")
		return
	}

	resp := listLawyersResponse{
		Items:      make([]lawyerResponse, 0, len(result.Items)),
		Pagination: toPagination(result.Pagination),
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, toLawyer(item))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) getLawyer(w http.ResponseWriter, r *http.Request) {
	lawyer, err := h.services.Lawyers.Get(r.Context(), pathVar(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load lawyer")
		return
	}
	respondJSON(w, http.StatusOK, toLawyer(lawyer))
}

func (h *APIHandlers) lawyerTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.services.Lawyers.Testimonials(r.Context(), pathVar(r, "id"), parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list testimonials")
		return
	}
	respondJSON(w, http.StatusOK, toTestimonials(items))
}

func (h *APIHandlers) latestTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.services.Lawyers.LatestTestimonials(r.Context(), parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list latest testimonials")
		return
	}
	respondJSON(w, http.StatusOK, toTestimonials(items))
}

func (h *APIHandlers) listSpecializations(w http.ResponseWriter, r *http.Request) {
	specs := h.services.Lawyers.Specializations()
	resp := make([]specializationResponse, 0, len(specs))
	for _, s := range specs {
		resp = append(resp, specializationResponse{Code: s.Code, LabelAR: s.LabelAR, LabelEN: s.LabelEN})
	}
	respondJSON(w, http.StatusOK, resp)
}
