package middleware

import (
	"context"
	"net/http"
	"strings"

	authsvc "github.com/jwtpizza/pizza-service/services/auth"
	"github.com/jwtpizza/pizza-service/utils"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to a caller
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authsvc.Identity, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(auth Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		logger: logger,
	}
}

// LoadIdentity attaches the caller when the request carries a valid token.
// Requests without one, or with a rejected one, continue anonymously.
func (m *AuthMiddleware) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.auth.Authenticate(ctx, token)
		if err != nil {
			m.logger.Debug("token rejected, continuing anonymously",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// RequireAuth is a middleware that requires a valid, unrevoked bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		if GetIdentityFromContext(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Debug("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "unauthorized")
			return
		}

		identity, err := m.auth.Authenticate(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "unauthorized")
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.Int64("user_id", identity.User.ID))

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// BearerToken returns the request's bearer token, or ""
func BearerToken(r *http.Request) string {
	return extractBearerToken(r)
}
