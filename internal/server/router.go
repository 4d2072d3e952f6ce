package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wakili/backend/internal/domain"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	AllowedOrigins   []string
	AllowCredentials bool
	// DefaultLanguage answers requests without a usable Accept-Language.
	DefaultLanguage string
}

// NewRouter wires the HTTP routes exposed by the backend API.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{
			"status": "ok",
		}

		if deps.Health != nil {
			if err := deps.Health.Check(ctx); err != nil {
				logger.Error("health check failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}

		respondJSON(w, status, payload)
	}).Methods(http.MethodGet)

	if deps.API != nil {
		deps.API.routes(router)
		router.NotFoundHandler = http.HandlerFunc(deps.API.notFound)
		router.MethodNotAllowedHandler = http.HandlerFunc(deps.API.methodNotAllowed)
	}

	handler := languageMiddleware(deps.DefaultLanguage, router)
	handler = loggingMiddleware(logger, handler)
	if len(deps.AllowedOrigins) > 0 {
		handler = corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials)(handler)
	}
	return handler
}

func (h *APIHandlers) routes(r *mux.Router) {
	client := []domain.Role{domain.RoleClient}
	lawyer := []domain.Role{domain.RoleLawyer}
	admin := []domain.Role{domain.RoleAdmin}

	r.HandleFunc("/Auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/Auth/verify-email", h.verifyEmail).Methods(http.MethodPost)
	r.HandleFunc("/Auth/resend-verification", h.resendVerification).Methods(http.MethodPost)
	r.HandleFunc("/Auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/Auth/forget-password", h.forgetPassword).Methods(http.MethodPost)
	r.HandleFunc("/Auth/reset-password", h.resetPassword).Methods(http.MethodPost)
	r.Handle("/Auth/me", h.authenticated(h.me)).Methods(http.MethodGet)
	r.Handle("/Auth/logout", h.authenticated(h.logout)).Methods(http.MethodPost)
	r.Handle("/Auth/change-password", h.authenticated(h.changePassword)).Methods(http.MethodPost)

	r.Handle("/profile", h.authenticated(h.getProfile, client...)).Methods(http.MethodGet)
	r.Handle("/profile", h.authenticated(h.updateProfile, client...)).Methods(http.MethodPut)
	r.Handle("/profile/overview", h.authenticated(h.profileOverview, client...)).Methods(http.MethodGet)
	r.Handle("/profile/bookings", h.authenticated(h.profileBookings, client...)).Methods(http.MethodGet)
	r.Handle("/profile/favorites", h.authenticated(h.listFavorites, client...)).Methods(http.MethodGet)
	r.Handle("/profile/favorites/{lawyerId}", h.authenticated(h.addFavorite, client...)).Methods(http.MethodPost)
	r.Handle("/profile/favorites/{lawyerId}", h.authenticated(h.removeFavorite, client...)).Methods(http.MethodDelete)

	r.HandleFunc("/lawyers", h.listLawyers).Methods(http.MethodGet)
	r.HandleFunc("/lawyers/{id}", h.getLawyer).Methods(http.MethodGet)
	r.HandleFunc("/lawyers/{id}/testimonials", h.lawyerTestimonials).Methods(http.MethodGet)
	r.HandleFunc("/testimonials", h.latestTestimonials).Methods(http.MethodGet)
	r.HandleFunc("/specializations", h.listSpecializations).Methods(http.MethodGet)

	r.Handle("/bookings", h.authenticated(h.createBooking, client...)).Methods(http.MethodPost)
	r.Handle("/bookings/{id}", h.authenticated(h.getBooking, domain.RoleClient, domain.RoleAdmin)).Methods(http.MethodGet)
	r.Handle("/bookings/{id}/cancel", h.authenticated(h.cancelBooking, client...)).Methods(http.MethodPost)

	r.Handle("/contract-reviews", h.authenticated(h.createContractReview, client...)).Methods(http.MethodPost)
	r.Handle("/contract-reviews", h.authenticated(h.listContractReviews, domain.RoleClient, domain.RoleLawyer)).Methods(http.MethodGet)
	r.Handle("/contract-reviews/{id}", h.authenticated(h.getContractReview)).Methods(http.MethodGet)
	r.Handle("/contract-reviews/{id}/start", h.authenticated(h.startContractReview, lawyer...)).Methods(http.MethodPost)
	r.Handle("/contract-reviews/{id}/complete", h.authenticated(h.completeContractReview, lawyer...)).Methods(http.MethodPost)

	r.Handle("/onboarding/progress", h.authenticated(h.onboardingProgress, lawyer...)).Methods(http.MethodGet)
	r.Handle("/onboarding/steps/{step}", h.authenticated(h.saveOnboardingStep, lawyer...)).Methods(http.MethodPut)
	r.Handle("/onboarding/submit", h.authenticated(h.submitApplication, lawyer...)).Methods(http.MethodPost)

	r.Handle("/admin/applications", h.authenticated(h.listApplications, admin...)).Methods(http.MethodGet)
	r.Handle("/admin/applications/{userId}/approve", h.authenticated(h.approveApplication, admin...)).Methods(http.MethodPost)
	r.Handle("/admin/applications/{userId}/reject", h.authenticated(h.rejectApplication, admin...)).Methods(http.MethodPost)
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func corsMiddleware(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	normalized := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		normalized[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			listed := containsOrigin(normalized, origin)
			if origin == "" || (!listed && !containsOrigin(normalized, "*")) {
				if r.Method == http.MethodOptions {
					// Reject bare pre-flight if origin is not whitelisted.
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			// Credentials are only shared with explicitly listed origins.
			if allowCredentials && listed {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containsOrigin(set map[string]struct{}, origin string) bool {
	_, ok := set[origin]
	return ok
}
