package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/DELTAJoSch/Horus/internal/infrastructure/http/handlers"
	"github.com/DELTAJoSch/Horus/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	Users    *handlers.UsersHandler
	Health   *handlers.HealthHandler
	Sessions *middleware.SessionManager
	Log      zerolog.Logger
	Secure   func(http.Handler) http.Handler
	Metrics  bool // expose /metrics
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
	r.Use(chimid.AllowContentType("application/json"))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		// Session endpoints and the self lookup resolve the session
		// themselves: login/logout must work without one, and the self
		// lookup distinguishes 401 from a stale session's 404.
		r.Post("/session", cfg.Users.Login)
		r.Get("/session", cfg.Users.Logout)
		r.Get("/", cfg.Users.Me)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Sessions.Require)
			r.Get("/users", cfg.Users.List)
			r.Post("/users", cfg.Users.Create)
			r.Get("/users/{name}", cfg.Users.GetUser)
			r.Patch("/users/{name}", cfg.Users.Update)
			r.Delete("/users/{name}", cfg.Users.Delete)
		})
	})

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
