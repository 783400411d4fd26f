package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/metrics"
	"aiproxy/pkg/platform/httputil"
	"aiproxy/pkg/requestcontext"
)

// Handler serves the resources gated behind bearer authentication. It
// assumes the auth middleware already ran.
type Handler struct {
	binaries *BinaryStore
	settings ClaudeSettings
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs a catalog handler with its dependencies.
func New(cfg config.Catalog, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		binaries: NewBinaryStore(cfg.BinariesDir),
		settings: EnterpriseSettings(cfg.ProxyBaseURL, cfg.DefaultModel),
		logger:   logger,
		metrics:  m,
	}
}

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/models", h.HandleListModels)
	r.Get("/api/claude-settings", h.HandleSettings)
	r.Get("/cli/{platform}", h.HandleDownloadCLI)
}

// HandleListModels handles GET /v1/models.
func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ListModels())
}

// HandleSettings handles GET /api/claude-settings.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.settings)
}

// HandleDownloadCLI handles GET /cli/{platform}.
func (h *Handler) HandleDownloadCLI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	platform := chi.URLParam(r, "platform")

	bin, err := h.binaries.Open(platform)
	if err != nil {
		h.logger.WarnContext(ctx, "cli download refused",
			"request_id", requestcontext.RequestID(ctx),
			"platform", platform,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	defer bin.Close()

	h.metrics.IncrementCLIDownloads(platform)
	h.logger.InfoContext(ctx, "cli download",
		"request_id", requestcontext.RequestID(ctx),
		"subject", requestcontext.Subject(ctx),
		"platform", platform,
	)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+bin.Filename+`"`)
	http.ServeContent(w, r, bin.Filename, bin.ModTime, bin.Content)
}
