package httpapi

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/dota-coach/internal/domain/user"
	"github.com/riskibarqy/dota-coach/internal/usecase"
)

type recomputeMatchesRequest struct {
	MatchIDs   []int64 `json:"match_ids" validate:"required,min=1,max=500,dive,gt=0"`
	MaxWorkers int     `json:"max_workers" validate:"omitempty,min=1,max=32"`
}

type recomputeUserItem struct {
	UserID    string `json:"user_id" validate:"required"`
	AccountID int64  `json:"account_id" validate:"required,gt=0"`
}

type recomputeUsersRequest struct {
	Users      []recomputeUserItem `json:"users" validate:"required,min=1,max=200,dive"`
	MaxWorkers int                 `json:"max_workers" validate:"omitempty,min=1,max=32"`
}

func (h *Handler) RecomputeMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeMatches")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req recomputeMatchesRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recomputeService.ImportMatches(ctx, usecase.BatchImportInput{
		Principal:  principal,
		MatchIDs:   req.MatchIDs,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recompute matches failed", "match_count", len(req.MatchIDs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RecomputeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeUsers")
	defer span.End()

	var req recomputeUsersRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	principals := make([]user.Principal, 0, len(req.Users))
	for _, item := range req.Users {
		principals = append(principals, user.Principal{UserID: item.UserID, AccountID: item.AccountID})
	}

	result, err := h.recomputeService.RecomputeUsers(ctx, principals, req.MaxWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute users failed", "user_count", len(principals), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetPipelineRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPipelineRun")
	defer span.End()

	matchID, err := pathMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	run, err := h.pipelineService.GetRun(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pipelineRunToDTO(ctx, run))
}
