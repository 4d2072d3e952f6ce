package server

import (
	"net/http"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/service"
	"github.com/wakili/backend/internal/validation"
)

type basicInfoRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	NationalID  string `json:"nationalId"`
	City        string `json:"city"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
}

type verificationRequest struct {
	LicenseNumber      string `json:"licenseNumber"`
	LicenseExpiry      string `json:"licenseExpiry"`
	BarAssociation     string `json:"barAssociation"`
	LicenseDocumentURL string `json:"licenseDocumentUrl"`
	IDDocumentURL      string `json:"idDocumentUrl"`
	AgreedToTerms      bool   `json:"agreedToTerms"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *APIHandlers) onboardingProgress(w http.ResponseWriter, r *http.Request, p service.Principal) {
	view, err := h.services.Onboarding.Progress(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load onboarding progress")
		return
	}
	respondJSON(w, http.StatusOK, toApplicationView(view))
}

func (h *APIHandlers) saveOnboardingStep(w http.ResponseWriter, r *http.Request, p service.Principal) {
	step, ok := domain.ParseStep(pathVar(r, "step"))
	if !ok || step == domain.StepReview {
		h.notFound(w, r)
		return
	}

	var (
		view service.ApplicationView
		err  error
	)
	ctx := r.Context()
	switch step {
	case domain.StepBasicInfo:
		var payload basicInfoRequest
		if !h.decodeBody(w, r, &payload) {
			return
		}
		errs := validation.New()
		dob := parseTimestamp(errs, "dateOfBirth", payload.DateOfBirth)
		if !errs.Empty() {
			h.writeValidation(w, r, errs)
			return
		}
		view, err = h.services.Onboarding.SaveBasicInfo(ctx, p, domain.BasicInfoData{
			FullName:    payload.FullName,
			Email:       payload.Email,
			Phone:       payload.Phone,
			NationalID:  payload.NationalID,
			City:        payload.City,
			Gender:      payload.Gender,
			DateOfBirth: dob,
		})
	case domain.StepEducation:
		var payload domain.EducationData
		if !h.decodeBody(w, r, &payload) {
			return
		}
		view, err = h.services.Onboarding.SaveEducation(ctx, p, payload)
	case domain.StepExperience:
		var payload domain.ExperienceData
		if !h.decodeBody(w, r, &payload) {
			return
		}
		view, err = h.services.Onboarding.SaveExperience(ctx, p, payload)
	case domain.StepVerification:
		var payload verificationRequest
		if !h.decodeBody(w, r, &payload) {
			return
		}
		errs := validation.New()
		expiry := parseTimestamp(errs, "licenseExpiry", payload.LicenseExpiry)
		if !errs.Empty() {
			h.writeValidation(w, r, errs)
			return
		}
		view, err = h.services.Onboarding.SaveVerification(ctx, p, domain.VerificationData{
			LicenseNumber:      payload.LicenseNumber,
			LicenseExpiry:      expiry,
			BarAssociation:     payload.BarAssociation,
			LicenseDocumentURL: payload.LicenseDocumentURL,
			IDDocumentURL:      payload.IDDocumentURL,
			AgreedToTerms:      payload.AgreedToTerms,
		})
	}
	if err != nil {
		h.writeServiceError(w, r, err, "failed to save onboarding step")
		return
	}
	respondJSON(w, http.StatusOK, toApplicationView(view))
}

func (h *APIHandlers) submitApplication(w http.ResponseWriter, r *http.Request, p service.Principal) {
	view, err := h.services.Onboarding.Submit(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to submit application")
		return
	}
	respondJSON(w, http.StatusOK, toApplicationView(view))
}

func (h *APIHandlers) listApplications(w http.ResponseWriter, r *http.Request, _ service.Principal) {
	views, err := h.services.Admin.ListApplications(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list applications")
		return
	}
	resp := make([]applicationViewResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, toApplicationView(view))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) approveApplication(w http.ResponseWriter, r *http.Request, admin service.Principal) {
	userID := pathVar(r, "userId")
	view, lawyer, err := h.services.Admin.Approve(r.Context(), userID, languageOf(r))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to approve application")
		return
	}
	h.logger.InfoContext(r.Context(), "application approved", "user_id", userID, "lawyer_id", lawyer.ID, "admin_id", admin.UserID)
	respondJSON(w, http.StatusOK, approvalResponse{
		applicationViewResponse: toApplicationView(view),
		Lawyer:                  toLawyer(lawyer),
	})
}

func (h *APIHandlers) rejectApplication(w http.ResponseWriter, r *http.Request, admin service.Principal) {
	var payload rejectRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	userID := pathVar(r, "userId")
	view, err := h.services.Admin.Reject(r.Context(), userID, payload.Reason, languageOf(r))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to reject application")
		return
	}
	h.logger.InfoContext(r.Context(), "application rejected", "user_id", userID, "admin_id", admin.UserID)
	respondJSON(w, http.StatusOK, toApplicationView(view))
}
