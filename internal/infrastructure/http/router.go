package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/domain"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/handlers"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler   *handlers.AuthHandler
	UsersHandler  *handlers.UsersHandler
	AdminHandler  *handlers.AdminHandler
	ToolsHandler  *handlers.ToolsHandler
	HealthHandler *handlers.HealthHandler
	OAuthBegin    http.HandlerFunc // GET /auth/{provider}
	OAuthCallback http.HandlerFunc // GET /auth/{provider}/callback
	RequireJWT    func(http.Handler) http.Handler
	OptionalJWT   func(http.Handler) http.Handler
	Secure        func(http.Handler) http.Handler
	CORS          func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	Log           zerolog.Logger
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
		if cfg.OAuthBegin != nil {
			r.Get("/{provider}", cfg.OAuthBegin)
		}
		if cfg.OAuthCallback != nil {
			r.Get("/{provider}/callback", cfg.OAuthCallback)
		}
	})

	if cfg.UsersHandler != nil && cfg.RequireJWT != nil {
		r.Route("/users", func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Get("/me", cfg.UsersHandler.Me)
			r.Patch("/me", cfg.UsersHandler.UpdateMe)
		})
	}

	if cfg.ToolsHandler != nil {
		r.Route("/api/tools", func(r chi.Router) {
			if cfg.OptionalJWT != nil {
				r.Use(cfg.OptionalJWT)
			}
			r.Get("/", cfg.ToolsHandler.ListTools)
			r.Post("/{tool}", cfg.ToolsHandler.Run)
		})
	}

	if cfg.AdminHandler != nil && cfg.RequireJWT != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/users", cfg.AdminHandler.ListUsers)
			r.Get("/users/watch", cfg.AdminHandler.WatchUsers)
			r.Patch("/users/{id}/role", cfg.AdminHandler.ToggleRole)
			r.Delete("/users/{id}", cfg.AdminHandler.DeleteUser)
		})
	}

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
