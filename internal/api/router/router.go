package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/leadpilot/leadpilot/internal/http/middleware"
	"github.com/leadpilot/leadpilot/internal/http/respond"
	"github.com/leadpilot/leadpilot/internal/leads"
	"github.com/leadpilot/leadpilot/internal/users"
	"github.com/leadpilot/leadpilot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	UsersHandler       *users.Handler
	JWTSecret          string
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler
	MetricsMiddleware  func(http.Handler) http.Handler
	MaxBodyBytes       int64
	AuthRatePerSecond  float64
	AuthRateBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware)
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/api/v1/users", func(r chi.Router) {
			if cfg.AuthRatePerSecond > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.AuthRatePerSecond, cfg.AuthRateBurst))
			}
			r.Post("/register", cfg.UsersHandler.Register)
			r.Post("/login", cfg.UsersHandler.Login)
			r.Post("/refresh", cfg.UsersHandler.Refresh)
			r.Post("/logout", cfg.UsersHandler.Logout)
		})
	})

	// Authenticated lead endpoints
	r.Route("/api/v1/leads", func(r chi.Router) {
		r.Use(httpmiddleware.RequireAuth(cfg.JWTSecret))
		r.Post("/create", cfg.LeadsHandler.Create)
		r.Get("/", cfg.LeadsHandler.List)
		r.Get("/{id}", cfg.LeadsHandler.Get)
		r.Patch("/{id}", cfg.LeadsHandler.Update)
		r.Delete("/{id}", cfg.LeadsHandler.Delete)
	})

	return r
}
