package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/dota-coach/internal/platform/logging"
	"github.com/riskibarqy/dota-coach/internal/usecase"
)

type Handler struct {
	matchService      *usecase.MatchService
	pipelineService   *usecase.PipelineService
	statisticsService *usecase.StatisticsService
	taskService       *usecase.TaskService
	dashboardService  *usecase.DashboardService
	recomputeService  *usecase.RecomputeService
	jobDispatch       *usecase.JobDispatchService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	pipelineService *usecase.PipelineService,
	statisticsService *usecase.StatisticsService,
	taskService *usecase.TaskService,
	dashboardService *usecase.DashboardService,
	recomputeService *usecase.RecomputeService,
	jobDispatch *usecase.JobDispatchService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:      matchService,
		pipelineService:   pipelineService,
		statisticsService: statisticsService,
		taskService:       taskService,
		dashboardService:  dashboardService,
		recomputeService:  recomputeService,
		jobDispatch:       jobDispatch,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathMatchID(r *http.Request) (int64, error) {
	raw := r.PathValue("matchID")
	matchID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || matchID <= 0 {
		return 0, fmt.Errorf("%w: match id %q must be a positive integer", usecase.ErrInvalidInput, raw)
	}
	return matchID, nil
}

func pathPlayerSlot(r *http.Request) (int64, error) {
	raw := r.PathValue("playerSlot")
	slot, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || slot < 0 {
		return 0, fmt.Errorf("%w: player slot %q must be a non-negative integer", usecase.ErrInvalidInput, raw)
	}
	return slot, nil
}
