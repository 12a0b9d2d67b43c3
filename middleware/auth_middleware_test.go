package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tokens "github.com/jwtpizza/pizza-service/internal/auth"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/services"
	authsvc "github.com/jwtpizza/pizza-service/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*authsvc.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authsvc.Identity), args.Error(1)
}

func testIdentity() *authsvc.Identity {
	roles := []models.RoleAssignment{models.Diner()}
	return &authsvc.Identity{
		User:   &models.User{ID: 7, Name: "pizza diner", Email: "d@jwt.com", Roles: roles},
		Claims: &tokens.Claims{Roles: roles},
		Token:  "valid-token",
	}
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	msg, _ := body["message"].(string)
	return msg
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid token allows request", func(t *testing.T) {
		auth := new(MockAuthenticator)
		mw := NewAuthMiddleware(auth, logger)
		identity := testIdentity()
		auth.On("Authenticate", mock.Anything, "valid-token").Return(identity, nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := GetIdentityFromContext(r.Context())
			require.NotNil(t, got)
			assert.Equal(t, int64(7), got.User.ID)

			principal := GetPrincipalFromContext(r.Context())
			require.NotNil(t, principal)
			assert.Equal(t, int64(7), principal.UserID)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		auth.AssertExpectations(t)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		auth := new(MockAuthenticator)
		mw := NewAuthMiddleware(auth, logger)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeMessage(t, w))
		auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("rejected token is unauthorized", func(t *testing.T) {
		auth := new(MockAuthenticator)
		mw := NewAuthMiddleware(auth, logger)
		auth.On("Authenticate", mock.Anything, "revoked-token").Return(nil, services.ErrUnauthorized)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodDelete, "/api/auth", nil)
		req.Header.Set("Authorization", "Bearer revoked-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeMessage(t, w))
	})

	t.Run("identity already loaded skips authentication", func(t *testing.T) {
		auth := new(MockAuthenticator)
		mw := NewAuthMiddleware(auth, logger)

		called := false
		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), testIdentity()))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, called)
		auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})
}

func TestLoadIdentity(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name         string
		header       string
		authErr      error
		wantIdentity bool
	}{
		{"no header", "", nil, false},
		{"valid token", "Bearer valid-token", nil, true},
		{"rejected token", "Bearer valid-token", services.ErrUnauthorized, false},
		{"non bearer scheme", "Basic dXNlcjpwdw==", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthenticator)
			if tt.authErr != nil {
				auth.On("Authenticate", mock.Anything, "valid-token").Return(nil, tt.authErr)
			} else {
				auth.On("Authenticate", mock.Anything, "valid-token").Return(testIdentity(), nil)
			}
			mw := NewAuthMiddleware(auth, logger)

			var got bool
			handler := mw.LoadIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetIdentityFromContext(r.Context()) != nil
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/franchise", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantIdentity, got)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"padded token", "Bearer   abc  ", "abc"},
		{"missing token", "Bearer", ""},
		{"other scheme", "Token abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(req))
		})
	}
}
