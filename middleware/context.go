package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jwtpizza/pizza-service/internal/policy"
	authsvc "github.com/jwtpizza/pizza-service/services/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// IdentityKey is the context key for the authenticated caller
	IdentityKey contextKey = "identity"
)

// GetRequestIDFromContext retrieves the request ID from context,
// falling back to the id assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetIdentityFromContext retrieves the authenticated caller, or nil
func GetIdentityFromContext(ctx context.Context) *authsvc.Identity {
	if val := ctx.Value(IdentityKey); val != nil {
		if identity, ok := val.(*authsvc.Identity); ok {
			return identity
		}
	}
	return nil
}

// WithIdentity adds the authenticated caller to the context
func WithIdentity(ctx context.Context, identity *authsvc.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetPrincipalFromContext returns the caller for policy evaluation; nil when anonymous
func GetPrincipalFromContext(ctx context.Context) *policy.Principal {
	return GetIdentityFromContext(ctx).Principal()
}
