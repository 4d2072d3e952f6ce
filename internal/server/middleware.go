package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/i18n"
	"github.com/wakili/backend/internal/service"
)

type contextKey int

const (
	languageKey contextKey = iota
	principalKey
	tokenKey
)

// languageMiddleware resolves the response language once per request. An
// explicit ?lang= wins over Accept-Language.
func languageMiddleware(fallback string, next http.Handler) http.Handler {
	if i18n.Normalize(fallback) == "" {
		fallback = i18n.Arabic
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Normalize(r.URL.Query().Get("lang"))
		if lang == "" {
			lang = i18n.Negotiate(r.Header.Get("Accept-Language"), fallback)
		}
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), languageKey, lang)))
	})
}

func languageOf(r *http.Request) string {
	if lang, ok := r.Context().Value(languageKey).(string); ok && lang != "" {
		return lang
	}
	return i18n.Arabic
}

type principalHandler func(w http.ResponseWriter, r *http.Request, p service.Principal)

// authenticated resolves the bearer token and, when roles are given, requires
// the caller to hold one of them.
func (h *APIHandlers) authenticated(next principalHandler, roles ...domain.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		p, err := h.services.Auth.Authenticate(r.Context(), token)
		if err != nil {
			h.writeServiceError(w, r, err, "failed to authenticate request")
			return
		}
		if len(roles) > 0 && !hasRole(p.Role, roles) {
			h.writeError(w, r, http.StatusForbidden, "forbidden")
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, p)
		ctx = context.WithValue(ctx, tokenKey, token)
		next(w, r.WithContext(ctx), p)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func tokenOf(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
