package middleware

import (
	"casepilot/internal/service"
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ConsultantIDKey contextKey = "consultantId"

// AuthMiddleware provides JWT authentication for the dashboard routes
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireConsultant validates the consultant JWT from the Authorization header
func (m *AuthMiddleware) RequireConsultant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ConsultantIDKey, claims.ConsultantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetConsultantID extracts the consultant id from context
func GetConsultantID(ctx context.Context) string {
	if v := ctx.Value(ConsultantIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
