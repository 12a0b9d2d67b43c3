package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jwtpizza/pizza-service/app"
	"github.com/jwtpizza/pizza-service/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auth := deps.AuthMiddleware

	r.Get("/", deps.DocsHandler.HandleWelcome)
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/docs", deps.DocsHandler.HandleDocs)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/", deps.AuthHandler.HandleRegister)
			r.Put("/", deps.AuthHandler.HandleLogin)
			r.With(auth.RequireAuth).Delete("/", deps.AuthHandler.HandleLogout)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.UserHandler.HandleList)
			r.Get("/me", deps.UserHandler.HandleMe)
			r.Put("/{userId}", deps.UserHandler.HandleUpdate)
			r.Delete("/{userId}", deps.UserHandler.HandleDelete)
		})

		// {id} is the user for GET and the franchise everywhere else
		r.Route("/franchise", func(r chi.Router) {
			r.With(auth.LoadIdentity).Get("/", deps.FranchiseHandler.HandleList)
			r.With(auth.RequireAuth).Post("/", deps.FranchiseHandler.HandleCreate)
			r.With(auth.RequireAuth).Get("/{id}", deps.FranchiseHandler.HandleListForUser)
			r.With(auth.LoadIdentity).Delete("/{id}", deps.FranchiseHandler.HandleDelete)
			r.With(auth.RequireAuth).Post("/{id}/store", deps.FranchiseHandler.HandleCreateStore)
			r.With(auth.RequireAuth).Delete("/{id}/store/{storeId}", deps.FranchiseHandler.HandleDeleteStore)
		})

		r.Route("/order", func(r chi.Router) {
			r.Get("/menu", deps.OrderHandler.HandleMenu)
			r.With(auth.RequireAuth).Put("/menu", deps.OrderHandler.HandleAddMenuItem)
			r.With(auth.RequireAuth).Get("/", deps.OrderHandler.HandleList)
			r.With(auth.RequireAuth).Post("/", deps.OrderHandler.HandleCreate)
		})
	})

	r.NotFound(deps.DocsHandler.HandleNotFound)
	r.MethodNotAllowed(deps.DocsHandler.HandleNotFound)

	return otelhttp.NewHandler(r, "pizza-service",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
