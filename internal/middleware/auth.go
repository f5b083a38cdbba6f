package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/codequest/backend/internal/contextkeys"
	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/handler"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*domain.JWTClaims, error)
}

// Auth creates a JWT authentication middleware.
// Requests without a valid bearer token never reach next.
func Auth(tokens TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
				return
			}

			claims, err := tokens.VerifyToken(strings.TrimSpace(parts[1]))
			if err != nil || claims.Sub == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}

			// Store user info in context using typed keys
			ctx := context.WithValue(r.Context(), contextkeys.UserID, claims.Sub)
			ctx = context.WithValue(ctx, contextkeys.UserEmail, claims.Email)
			ctx = context.WithValue(ctx, contextkeys.UserPhone, claims.Phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
