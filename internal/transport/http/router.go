// Package httptransport assembles the gateway's HTTP surface: shared
// middleware, public SSO endpoints and the bearer-gated resource endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aiproxy/internal/catalog"
	"aiproxy/internal/identity"
	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/metrics"
	platformmw "aiproxy/internal/platform/middleware"
	"aiproxy/internal/sso"
	"aiproxy/pkg/platform/httputil"
	authmw "aiproxy/pkg/platform/middleware/auth"
	"aiproxy/pkg/platform/middleware/metadata"
	"aiproxy/pkg/platform/middleware/requesttime"
)

// Dependencies are the collaborators the router hands to its handlers.
type Dependencies struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Exchanger identity.CodeExchanger
	Validator authmw.JWTValidator
}

// NewRouter wires all endpoints.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(platformmw.Logger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handleHealth)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	sso.New(deps.Exchanger, deps.Config.Identity, deps.Logger, deps.Metrics).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.Validator, deps.Metrics, deps.Logger))
		catalog.New(deps.Config.Catalog, deps.Logger, deps.Metrics).Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
