package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig agrupa lo necesario para armar el router completo.
type RouterConfig struct {
	Handler            *Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// NewRouter arma las rutas y la cadena de middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", cfg.Handler.Healthz)
	r.Get("/readyz", cfg.Handler.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/verification/send", cfg.Handler.SendCode)
	})

	// Orden: request-id primero para que todo lo demás loguee con él.
	var h http.Handler = r
	h = WithMetrics(h)
	h = WithLogging(h)
	h = WithRecover(h)
	h = WithSecurityHeaders(h)
	h = WithCORS(h, cfg.CORSAllowedOrigins)
	h = WithRequestID(h)
	return h
}
