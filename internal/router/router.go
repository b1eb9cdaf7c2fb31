package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medrecord/internal/config"
	"medrecord/internal/handler"
	"medrecord/internal/middleware"
)

// New assembles the HTTP surface: one health probe and the single action
// dispatch endpoint. GET is allowed on /api so read actions can ride query
// strings; the gateway itself rejects state changes that arrive as GET.
func New(cfg *config.Config, gateway *handler.Gateway) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Get("/", gateway.Dispatch)
		api.Post("/", gateway.Dispatch)
	})

	return r
}
