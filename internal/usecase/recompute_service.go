package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
	"github.com/riskibarqy/dota-coach/internal/domain/user"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
)

const (
	recomputeStatusSuccess = "success"
	recomputeStatusFailed  = "failed"
	recomputeStatusSkipped = "skipped"
)

type BatchImportInput struct {
	Principal  user.Principal
	MatchIDs   []int64
	MaxWorkers int
}

type BatchImportResult struct {
	TaskCount    int                     `json:"task_count"`
	SuccessCount int                     `json:"success_count"`
	FailedCount  int                     `json:"failed_count"`
	SkippedCount int                     `json:"skipped_count"`
	WorkerCount  int                     `json:"worker_count"`
	Tasks        []BatchImportTaskResult `json:"tasks"`
}

type BatchImportTaskResult struct {
	MatchID    int64  `json:"match_id"`
	Status     string `json:"status"`
	Stage      string `json:"stage,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type RecomputeUsersResult struct {
	UserCount    int      `json:"user_count"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	FailedUsers  []string `json:"failed_users,omitempty"`
}

type batchImporter interface {
	ImportMatch(ctx context.Context, principal user.Principal, matchID int64) (pipeline.Run, error)
}

// RecomputeService fans match imports and per-user statistics rollups
// out over worker pools. Matches are independent of each other, so the
// only coordination needed is the result channel.
type RecomputeService struct {
	importer batchImporter
	statsSvc pipelineStatisticsRecalculator
	log      *logging.Logger
}

func NewRecomputeService(importer batchImporter, statsSvc pipelineStatisticsRecalculator, log *logging.Logger) *RecomputeService {
	if log == nil {
		log = logging.Default()
	}
	return &RecomputeService{
		importer: importer,
		statsSvc: statsSvc,
		log:      log,
	}
}

// ImportMatches runs the full pipeline for every listed match on an
// ants pool and reports a per-match outcome.
func (s *RecomputeService) ImportMatches(ctx context.Context, input BatchImportInput) (BatchImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.ImportMatches")
	defer span.End()

	if len(input.MatchIDs) == 0 {
		return BatchImportResult{}, fmt.Errorf("%w: match_ids is required", ErrInvalidInput)
	}

	matchIDs := dedupeMatchIDs(input.MatchIDs)
	workerCount := normalizeWorkerCount(input.MaxWorkers, len(matchIDs))
	result := BatchImportResult{
		TaskCount:   len(matchIDs),
		WorkerCount: workerCount,
		Tasks:       make([]BatchImportTaskResult, 0, len(matchIDs)),
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchImportResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	results := make(chan BatchImportTaskResult, len(matchIDs))
	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	var workers sync.WaitGroup
	for _, matchID := range matchIDs {
		matchID := matchID
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BatchImportTaskResult{MatchID: matchID}
			if matchID <= 0 {
				row.Status = recomputeStatusSkipped
				row.Message = "match id must be positive"
				skippedCount.Add(1)
				row.DurationMs = time.Since(start).Milliseconds()
				results <- row
				return
			}

			run, importErr := s.importer.ImportMatch(ctx, input.Principal, matchID)
			row.Stage = string(run.Stage)
			row.DurationMs = time.Since(start).Milliseconds()
			if importErr != nil {
				row.Status = recomputeStatusFailed
				row.Message = importErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = recomputeStatusSuccess
				successCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return BatchImportResult{}, fmt.Errorf("submit import to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].MatchID < result.Tasks[j].MatchID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

// RecomputeUsers refreshes the statistics rollup for a set of users
// concurrently. Individual failures do not stop the batch.
func (s *RecomputeService) RecomputeUsers(ctx context.Context, principals []user.Principal, maxWorkers int) (RecomputeUsersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RecomputeUsers")
	defer span.End()

	if len(principals) == 0 {
		return RecomputeUsersResult{}, fmt.Errorf("%w: at least one user is required", ErrInvalidInput)
	}

	var mu sync.Mutex
	result := RecomputeUsersResult{UserCount: len(principals)}

	workers := pool.New().WithMaxGoroutines(normalizeWorkerCount(maxWorkers, len(principals)))
	for _, principal := range principals {
		principal := principal
		workers.Go(func() {
			_, err := s.statsSvc.Recalculate(ctx, principal.UserID, principal.AccountID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailedCount++
				result.FailedUsers = append(result.FailedUsers, principal.UserID)
				s.log.WarnContext(ctx, "statistics recompute failed", "user_id", principal.UserID, "error", err)
				return
			}
			result.SuccessCount++
		})
	}
	workers.Wait()

	sort.Strings(result.FailedUsers)
	return result, nil
}

func dedupeMatchIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
