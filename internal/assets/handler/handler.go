package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contractguide/internal/assets"
	dErrors "contractguide/pkg/domain-errors"
	"contractguide/pkg/platform/httputil"
	"contractguide/pkg/requestcontext"
)

const (
	headerSource  = "X-Asset-Source"
	headerVersion = "X-Asset-Version"
)

// Cache defines the asset cache operations the handler needs.
type Cache interface {
	Serve(ctx context.Context, path string) (assets.Asset, assets.Source, error)
	Version() string
}

// Handler serves front-end assets through the versioned cache.
type Handler struct {
	cache  Cache
	logger *slog.Logger
}

// New constructs an asset handler.
func New(cache Cache, logger *slog.Logger) *Handler {
	return &Handler{
		cache:  cache,
		logger: logger,
	}
}

// Register mounts asset endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/assets", h.HandleAsset)
	r.Get("/assets/*", h.HandleAsset)
}

// HandleAsset handles GET /assets/* requests. Unavailable assets answer 503
// so the front-end can show its offline notice.
func (h *Handler) HandleAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := chi.URLParam(r, "*")

	asset, source, err := h.cache.Serve(ctx, p)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "asset request failed",
				"request_id", requestcontext.RequestID(ctx),
				"path", p,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Body)))
	w.Header().Set(headerSource, string(source))
	w.Header().Set(headerVersion, h.cache.Version())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Body)
}
