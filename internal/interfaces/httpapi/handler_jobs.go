package httpapi

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/dota-coach/internal/domain/user"
	"github.com/riskibarqy/dota-coach/internal/usecase"
)

type importMatchJobRequest struct {
	MatchID   int64  `json:"match_id" validate:"required,gt=0"`
	UserID    string `json:"user_id" validate:"required"`
	AccountID int64  `json:"account_id" validate:"omitempty,gte=0"`
}

// RunImportMatchJob is the queue-facing twin of ImportMatch: the job
// queue delivers the payload the dispatch service published, with the
// principal flattened into it.
func (h *Handler) RunImportMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunImportMatchJob")
	defer span.End()

	var req importMatchJobRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode job payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	principal := user.Principal{UserID: req.UserID, AccountID: req.AccountID}

	run, err := h.pipelineService.ImportMatch(ctx, principal, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "import match job failed",
			"match_id", req.MatchID,
			"user_id", req.UserID,
			"stage", string(run.Stage),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pipelineRunToDTO(ctx, run))
}
