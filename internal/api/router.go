package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridianhealth/comorbid/internal/charlson"
	"github.com/meridianhealth/comorbid/internal/config"
	"github.com/meridianhealth/comorbid/internal/events"
	"github.com/meridianhealth/comorbid/internal/mapping"
	"github.com/meridianhealth/comorbid/internal/store"
)

// Reloader triggers a mapping registry reload. Implemented by mapping.Watcher;
// nil when watching is disabled.
type Reloader interface {
	Reload() error
}

func NewRouter(scorer *charlson.Scorer, source mapping.RegistrySource, s store.Store, ev events.Client, reloader Reloader, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Scoring.RateLimitPerMinute))

	score := NewScoreHandler(scorer, s, ev, cfg, logger)
	mappings := NewMappingsHandler(source)
	admin := NewAdminHandler(s, reloader, ev, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/score", score.Compute)
		r.Get("/scores/{id}", score.Get)

		r.Get("/mappings", mappings.List)
		r.Get("/mappings/{version}", mappings.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/scores", admin.ListScores)
			r.Get("/stats", admin.Stats)
			r.Post("/mappings/reload", admin.ReloadMappings)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
