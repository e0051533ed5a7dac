package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pdenton/rosterd/internal/api/apierr"
	"github.com/pdenton/rosterd/internal/services/adminauth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth creates authentication middleware. When the auth service has
// no admin account configured, every request passes through.
func Auth(authService *adminauth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *adminauth.Session {
	session, _ := ctx.Value(sessionContextKey).(*adminauth.Session)
	return session
}

// AdminName returns the authenticated admin's username, or a fallback
// when authentication is disabled.
func AdminName(ctx context.Context) string {
	if session := GetSession(ctx); session != nil {
		return session.Username
	}
	return "admin"
}
