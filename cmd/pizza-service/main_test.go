package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jwtpizza/pizza-service/app"
	"github.com/jwtpizza/pizza-service/config"
	"github.com/jwtpizza/pizza-service/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	srv := newServer(cfg, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.Equal(t, 30*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.NotNil(t, srv.Handler)
}

func TestServe(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)

	deps, err := app.NewDependencies(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer deps.Close(context.Background())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, newServer(cfg, routes.SetupRoutes(deps)), ln, cfg, logger)
	}()

	base := "http://" + ln.Addr().String()

	t.Run("health check", func(t *testing.T) {
		resp, err := http.Get(base + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("protected endpoints reject anonymous callers", func(t *testing.T) {
		testCases := []struct {
			method string
			path   string
			status int
		}{
			{http.MethodGet, "/api/user/me", http.StatusUnauthorized},
			{http.MethodGet, "/api/order", http.StatusUnauthorized},
			{http.MethodPut, "/api/order/menu", http.StatusUnauthorized},
			{http.MethodPost, "/api/franchise", http.StatusUnauthorized},
			{http.MethodDelete, "/api/auth", http.StatusUnauthorized},
			{http.MethodGet, "/api/franchise", http.StatusOK},
			{http.MethodGet, "/api/order/menu", http.StatusOK},
			{http.MethodGet, "/api/nonexistent", http.StatusNotFound},
		}

		for _, tc := range testCases {
			req, err := http.NewRequest(tc.method, base+tc.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode, "endpoint: %s %s", tc.method, tc.path)
		}
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, base+"/api/auth", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("PORT", "0")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TRACING_ENABLED", "false")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, run(ctx))
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	err := run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Version:     "test",
		Server: config.ServerConfig{
			Host:               "127.0.0.1",
			Port:               0,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    5 * time.Second,
			CORSAllowedOrigins: []string{"*"},
		},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Auth: config.AuthConfig{
			JWTSecret:  "main-test-secret-main-test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		Admin: config.AdminConfig{Name: "pizza admin", Email: "a@jwt.com", Password: "admin"},
		Observability: config.ObservabilityConfig{
			LogLevel:  "error",
			LogFormat: "json",
		},
	}
}
