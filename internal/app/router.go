package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gudangchat/gudangchat/internal/catalog"
	"github.com/gudangchat/gudangchat/internal/commit"
	"github.com/gudangchat/gudangchat/internal/contacts"
	"github.com/gudangchat/gudangchat/internal/draft"
	"github.com/gudangchat/gudangchat/internal/observability"
	"github.com/gudangchat/gudangchat/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Metrics         *observability.Metrics
	DraftHandler    *draft.Handler
	CommitHandler   *commit.Handler
	CatalogHandler  *catalog.Handler
	ContactsHandler *contacts.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		params.DraftHandler.MountRoutes(r)
		params.CommitHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.ContactsHandler.MountRoutes(r)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
