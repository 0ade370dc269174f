package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/todo-app/app"
	"github.com/upb/todo-app/handlers"
	appmiddleware "github.com/upb/todo-app/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(appmiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware. Credentials are allowed so the session cookie travels.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appmiddleware.RequestIDHeader},
		ExposedHeaders:   []string{appmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(deps.DB, deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		// Sign-in flows
		r.Get("/oauth/login", handlers.AuthLoginHandler(deps))
		r.Get("/oauth/callback", handlers.AuthCallbackHandler(deps))
		r.Get("/dev/login", handlers.AuthDevLoginHandler(deps))

		r.Group(func(r chi.Router) {
			r.Use(deps.SessionResolver.Resolve)

			// Public routes
			r.Get("/auth/me", handlers.CurrentUserHandler())
			r.Post("/auth/logout", handlers.AuthLogoutHandler(deps))

			// Todos (require a signed-in user)
			todos := handlers.NewTodoHandler(deps.TodoService, deps.Logger)
			r.Route("/todos", func(r chi.Router) {
				r.Use(deps.Gate.Require(appmiddleware.AccessProtected))
				r.Get("/", todos.HandleList)
				r.Post("/", todos.HandleCreate)
				r.Patch("/{id}", todos.HandleUpdate)
				r.Post("/{id}/toggle", todos.HandleToggle)
				r.Delete("/{id}", todos.HandleDelete)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(deps.Gate.Require(appmiddleware.AccessAdmin))
				r.Get("/users", handlers.ListUsersHandler(deps.UserService, deps.Logger))
			})
		})
	})

	// 404 handler
	r.NotFound(handlers.NotFoundHandler())

	return r
}
