package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"contractguide/internal/determination"
	"contractguide/pkg/platform/httputil"
	"contractguide/pkg/requestcontext"
)

// Service defines the interface for determination operations.
type Service interface {
	Evaluate(ctx context.Context, in determination.Input) (*determination.Result, error)
	Reference() determination.Reference
}

// Handler wires determination endpoints to the determination service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a determination handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts determination endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/determinations", h.HandleEvaluate)
	r.Get("/reference", h.HandleReference)
}

// HandleEvaluate handles POST /determinations requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "determination failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "determination served",
		"request_id", requestID,
		"outcome", result.Article.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleReference handles GET /reference requests: the selectable contract
// types and special reasons for input forms.
func (h *Handler) HandleReference(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromReference(h.service.Reference()))
}
