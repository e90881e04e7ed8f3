package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/FACorreiaa/habitnest-api/app/logger"
	_ "github.com/FACorreiaa/habitnest-api/docs"
	"github.com/FACorreiaa/habitnest-api/internal/api"
	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/api/goals"
	"github.com/FACorreiaa/habitnest-api/internal/api/schedule"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.HandlerImpl
	GoalsHandler           *goals.HandlerImpl
	ScheduleHandler        *schedule.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	Logger                 *slog.Logger
	AllowedOrigins         []string
	// RequestTimeout bounds each request; zero disables it.
	RequestTimeout time.Duration
}

// SetupRouter builds the full HTTP surface: server-wide middleware, the public
// auth routes and the gated goal and schedule resources.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				r.Get("/me", cfg.AuthHandler.Me)
				r.Get("/logout", cfg.AuthHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", cfg.GoalsHandler.ListGoals)
				r.Post("/", cfg.GoalsHandler.CreateGoal)
				r.Get("/{id}", cfg.GoalsHandler.GetGoal)
				r.Put("/{id}", cfg.GoalsHandler.UpdateGoal)
				r.Delete("/{id}", cfg.GoalsHandler.DeleteGoal)
			})

			r.Route("/schedule", func(r chi.Router) {
				r.Get("/", cfg.ScheduleHandler.ListEntries)
				r.Post("/", cfg.ScheduleHandler.CreateEntry)
				r.Get("/{id}", cfg.ScheduleHandler.GetEntry)
				r.Put("/{id}", cfg.ScheduleHandler.UpdateEntry)
				r.Delete("/{id}", cfg.ScheduleHandler.DeleteEntry)
			})
		})
	})

	return r
}
