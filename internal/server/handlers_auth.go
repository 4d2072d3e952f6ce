package server

import (
	"net/http"

	"github.com/wakili/backend/internal/service"
)

type registerRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *APIHandlers) register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	user, err := h.services.Auth.Register(r.Context(), service.RegisterInput{
		FullName:        payload.FullName,
		Email:           payload.Email,
		Phone:           payload.Phone,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
		Role:            payload.Role,
		Lang:            languageOf(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to register user")
		return
	}
	respondJSON(w, http.StatusCreated, toAuthUser(user))
}

func (h *APIHandlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var payload verifyEmailRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	if err := h.services.Auth.VerifyEmail(r.Context(), payload.Email, payload.Code); err != nil {
		h.writeServiceError(w, r, err, "failed to verify email")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "verified"})
}

// resendVerification and forgetPassword answer 202 whatever the outcome so
// callers cannot discover which emails are registered.
func (h *APIHandlers) resendVerification(w http.ResponseWriter, r *http.Request) {
	var payload emailRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	if err := h.services.Auth.ResendVerification(r.Context(), payload.Email, languageOf(r)); err != nil {
		h.logger.WarnContext(r.Context(), "resend verification failed", "error", err)
	}
	respondJSON(w, http.StatusAccepted, statusResponse{Status: "accepted"})
}

func (h *APIHandlers) forgetPassword(w http.ResponseWriter, r *http.Request) {
	var payload emailRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	if err := h.services.Auth.ForgetPassword(r.Context(), payload.Email, languageOf(r)); err != nil {
		h.logger.WarnContext(r.Context(), "password reset request failed", "error", err)
	}
	respondJSON(w, http.StatusAccepted, statusResponse{Status: "accepted"})
}

func (h *APIHandlers) login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	result, err := h.services.Auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to sign in")
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: formatTime(result.ExpiresAt),
		User:      toAuthUser(result.User),
	})
}

func (h *APIHandlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	err := h.services.Auth.ResetPassword(r.Context(), service.ResetPasswordInput{
		Email:           payload.Email,
		Code:            payload.Code,
		NewPassword:     payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
		Lang:            languageOf(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to reset password")
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *APIHandlers) me(w http.ResponseWriter, r *http.Request, p service.Principal) {
	user, err := h.services.Auth.Me(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load account")
		return
	}
	respondJSON(w, http.StatusOK, toAuthUser(user))
}

func (h *APIHandlers) logout(w http.ResponseWriter, r *http.Request, _ service.Principal) {
	if err := h.services.Auth.Logout(r.Context(), tokenOf(r)); err != nil {
		h.writeServiceError(w, r, err, "failed to sign out")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *APIHandlers) changePassword(w http.ResponseWriter, r *http.Request, p service.Principal) {
	var payload changePasswordRequest
	if !h.decodeBody(w, r, &payload) {
		return
	}
	err := h.services.Auth.ChangePassword(r.Context(), p, tokenOf(r), service.ChangePasswordInput{
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
		Lang:            languageOf(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to change password")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
