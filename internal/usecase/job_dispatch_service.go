package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/user"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
)

// ImportMatchJobPath is the internal route the queue calls back to run
// a deferred match import.
const ImportMatchJobPath = "/v1/internal/jobs/import-match"

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type ImportMatchJobPayload struct {
	MatchID   int64  `json:"match_id"`
	UserID    string `json:"user_id"`
	AccountID int64  `json:"account_id"`
}

// JobDispatchService hands long match imports to the queue instead of
// running them on the request path.
type JobDispatchService struct {
	queue JobQueue
	log   *logging.Logger
}

func NewJobDispatchService(queue JobQueue, log *logging.Logger) *JobDispatchService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if log == nil {
		log = logging.Default()
	}
	return &JobDispatchService{queue: queue, log: log}
}

// EnqueueImportMatch schedules an import job. The deduplication key is
// the match id, so spamming the same match queues at most one job per
// queue dedup window.
func (s *JobDispatchService) EnqueueImportMatch(ctx context.Context, principal user.Principal, matchID int64, delay time.Duration) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobDispatchService.EnqueueImportMatch")
	defer span.End()

	if matchID <= 0 {
		return fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	payload := ImportMatchJobPayload{
		MatchID:   matchID,
		UserID:    principal.UserID,
		AccountID: principal.AccountID,
	}
	dedupID := "import-match-" + strconv.FormatInt(matchID, 10)
	if err := s.queue.Enqueue(ctx, ImportMatchJobPath, payload, delay, dedupID); err != nil {
		return fmt.Errorf("enqueue import match_id=%d: %w", matchID, err)
	}

	s.log.InfoContext(ctx, "import job enqueued", "match_id", matchID, "user_id", principal.UserID, "delay", delay.String())
	return nil
}
