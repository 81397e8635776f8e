package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/dota-coach/internal/usecase"
)

func (h *Handler) ImportMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID, err := pathMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	run, err := h.pipelineService.ImportMatch(ctx, principal, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "import match failed",
			"match_id", matchID,
			"user_id", principal.UserID,
			"stage", string(run.Stage),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pipelineRunToDTO(ctx, run))
}

type importMatchAsyncRequest struct {
	DelaySeconds int `json:"delay_seconds" validate:"omitempty,min=0,max=3600"`
}

func (h *Handler) ImportMatchAsync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportMatchAsync")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID, err := pathMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// The body is optional; an empty one means enqueue immediately.
	var req importMatchAsyncRequest
	if r.Body != nil && r.ContentLength != 0 {
		decoder := sonic.ConfigDefault.NewDecoder(r.Body)
		if err := decoder.Decode(&req); err != nil {
			writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
			return
		}
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	delay := time.Duration(req.DelaySeconds) * time.Second
	if err := h.jobDispatch.EnqueueImportMatch(ctx, principal, matchID, delay); err != nil {
		h.logger.WarnContext(ctx, "enqueue import match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
		"match_id": matchID,
		"queued":   true,
	})
}

func (h *Handler) RebuildDigest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RebuildDigest")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID, err := pathMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	run, err := h.pipelineService.RebuildDigest(ctx, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "rebuild digest failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pipelineRunToDTO(ctx, run))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := pathMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	details, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDetailsToDTO(ctx, details))
}

func (h *Handler) GetPlayerMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerMetrics")
	defer span.End()

	matchID, err := pathMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	slot, err := pathPlayerSlot(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	row, err := h.matchService.GetPlayerMetrics(ctx, matchID, slot)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchMetricsToDTO(ctx, row))
}
