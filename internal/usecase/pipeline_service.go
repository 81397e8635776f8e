package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
	"github.com/riskibarqy/dota-coach/internal/domain/rawmatch"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/user"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
	"github.com/riskibarqy/dota-coach/internal/platform/resilience"
)

// Matches shorter than this stay out of the coaching rollup.
const coachingMinDurationSeconds = 600

type matchProvider interface {
	FetchMatch(ctx context.Context, matchID int64) (map[string]any, error)
}

type pipelineMetricsComputer interface {
	ComputeForMatch(ctx context.Context, matchID int64) ([]metrics.MatchMetrics, error)
}

type pipelineStatisticsRecalculator interface {
	Recalculate(ctx context.Context, userID string, accountID int64) (statistics.UserStatistics, error)
}

// PipelineService drives one match import through
// fetched -> digested -> persisted -> metrics_computed -> aggregated.
// Every stage is idempotent and earlier persisted effects survive a
// later failure, so a caller can always retry the whole import.
type PipelineService struct {
	provider   matchProvider
	rawRepo    rawmatch.Repository
	digestRepo digest.Repository
	runRepo    pipeline.Repository
	builder    *DigestBuilder
	metricsSvc pipelineMetricsComputer
	statsSvc   pipelineStatisticsRecalculator
	fetchGroup resilience.SingleFlight
	log        *logging.Logger
	now        func() time.Time
}

func NewPipelineService(
	provider matchProvider,
	rawRepo rawmatch.Repository,
	digestRepo digest.Repository,
	runRepo pipeline.Repository,
	builder *DigestBuilder,
	metricsSvc pipelineMetricsComputer,
	statsSvc pipelineStatisticsRecalculator,
	log *logging.Logger,
) *PipelineService {
	if builder == nil {
		builder = NewDigestBuilder(log)
	}
	if log == nil {
		log = logging.Default()
	}
	return &PipelineService{
		provider:   provider,
		rawRepo:    rawRepo,
		digestRepo: digestRepo,
		runRepo:    runRepo,
		builder:    builder,
		metricsSvc: metricsSvc,
		statsSvc:   statsSvc,
		log:        log,
		now:        time.Now,
	}
}

// ImportMatch runs the full pipeline for one match on behalf of the
// caller. The returned run reports the last stage reached even when an
// error is returned.
func (s *PipelineService) ImportMatch(ctx context.Context, principal user.Principal, matchID int64) (pipeline.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.ImportMatch")
	defer span.End()

	if matchID <= 0 {
		return pipeline.Run{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	raw, err := s.fetchStage(ctx, matchID)
	if err != nil {
		return s.failRun(ctx, matchID, principal.UserID, pipeline.StageFetched, err)
	}
	s.recordStage(ctx, matchID, principal.UserID, pipeline.StageFetched)

	match, players, err := s.builder.Build(raw.Payload)
	if err != nil {
		return s.failRun(ctx, matchID, principal.UserID, pipeline.StageDigested, err)
	}
	s.recordStage(ctx, matchID, principal.UserID, pipeline.StageDigested)

	if err := s.persistStage(ctx, match, players); err != nil {
		return s.failRun(ctx, matchID, principal.UserID, pipeline.StagePersisted, err)
	}
	s.recordStage(ctx, matchID, principal.UserID, pipeline.StagePersisted)

	if _, err := s.metricsSvc.ComputeForMatch(ctx, matchID); err != nil {
		return s.failRun(ctx, matchID, principal.UserID, pipeline.StageMetricsComputed, err)
	}
	s.recordStage(ctx, matchID, principal.UserID, pipeline.StageMetricsComputed)

	if principal.AccountID > 0 {
		if _, err := s.statsSvc.Recalculate(ctx, principal.UserID, principal.AccountID); err != nil {
			return s.failRun(ctx, matchID, principal.UserID, pipeline.StageAggregated, err)
		}
	} else {
		s.log.InfoContext(ctx, "skipping aggregation, no linked account", "user_id", principal.UserID, "match_id", matchID)
	}

	run := pipeline.Run{
		MatchID:   matchID,
		UserID:    principal.UserID,
		Stage:     pipeline.StageAggregated,
		Status:    pipeline.StatusSucceeded,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.runRepo.Record(ctx, run); err != nil {
		s.log.WarnContext(ctx, "record pipeline run failed", "match_id", matchID, "error", err)
	}
	return run, nil
}

// RebuildDigest re-runs digested -> persisted -> metrics_computed from
// the cached raw match, without touching the provider.
func (s *PipelineService) RebuildDigest(ctx context.Context, userID string, matchID int64) (pipeline.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RebuildDigest")
	defer span.End()

	if matchID <= 0 {
		return pipeline.Run{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	raw, found, err := s.rawRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return s.failRun(ctx, matchID, userID, pipeline.StageFetched, fmt.Errorf("get cached raw match: %w", err))
	}
	if !found {
		return pipeline.Run{}, fmt.Errorf("%w: no cached raw match for match_id=%d", ErrNotFound, matchID)
	}

	match, players, err := s.builder.Build(raw.Payload)
	if err != nil {
		return s.failRun(ctx, matchID, userID, pipeline.StageDigested, err)
	}
	s.recordStage(ctx, matchID, userID, pipeline.StageDigested)

	if err := s.persistStage(ctx, match, players); err != nil {
		return s.failRun(ctx, matchID, userID, pipeline.StagePersisted, err)
	}
	s.recordStage(ctx, matchID, userID, pipeline.StagePersisted)

	if _, err := s.metricsSvc.ComputeForMatch(ctx, matchID); err != nil {
		return s.failRun(ctx, matchID, userID, pipeline.StageMetricsComputed, err)
	}

	run := pipeline.Run{
		MatchID:   matchID,
		UserID:    userID,
		Stage:     pipeline.StageMetricsComputed,
		Status:    pipeline.StatusSucceeded,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.runRepo.Record(ctx, run); err != nil {
		s.log.WarnContext(ctx, "record pipeline run failed", "match_id", matchID, "error", err)
	}
	return run, nil
}

func (s *PipelineService) GetRun(ctx context.Context, matchID int64) (pipeline.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.GetRun")
	defer span.End()

	if matchID <= 0 {
		return pipeline.Run{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}
	run, found, err := s.runRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		return pipeline.Run{}, fmt.Errorf("get pipeline run match_id=%d: %w", matchID, err)
	}
	if !found {
		return pipeline.Run{}, fmt.Errorf("%w: no pipeline run for match_id=%d", ErrNotFound, matchID)
	}
	return run, nil
}

// fetchStage hits the provider behind a singleflight so concurrent
// imports of the same match share one upstream call, then caches the
// raw document.
func (s *PipelineService) fetchStage(ctx context.Context, matchID int64) (rawmatch.Match, error) {
	result, err, _ := s.fetchGroup.Do(strconv.FormatInt(matchID, 10), func() (any, error) {
		return s.provider.FetchMatch(ctx, matchID)
	})
	if err != nil {
		return rawmatch.Match{}, fmt.Errorf("fetch match from provider match_id=%d: %w", matchID, err)
	}
	payload, ok := result.(map[string]any)
	if !ok {
		return rawmatch.Match{}, fmt.Errorf("%w: provider returned unexpected payload for match_id=%d", ErrDependencyUnavailable, matchID)
	}

	raw := rawmatch.Match{
		MatchID:   matchID,
		Payload:   payload,
		FetchedAt: s.now().UTC(),
	}
	if err := s.rawRepo.Upsert(ctx, raw); err != nil {
		return rawmatch.Match{}, fmt.Errorf("cache raw match match_id=%d: %w", matchID, err)
	}
	return raw, nil
}

// persistStage upserts the match digest and fully replaces the player
// rows, so slots that vanished from the raw match leave no ghosts.
func (s *PipelineService) persistStage(ctx context.Context, match digest.MatchDigest, players []digest.PlayerDigest) error {
	match.IncludedInCoaching = match.Duration >= coachingMinDurationSeconds

	if err := s.digestRepo.UpsertMatch(ctx, match); err != nil {
		return fmt.Errorf("upsert match digest match_id=%d: %w", match.MatchID, err)
	}
	if err := s.digestRepo.ReplacePlayers(ctx, match.MatchID, players); err != nil {
		return fmt.Errorf("replace player digests match_id=%d: %w", match.MatchID, err)
	}
	return nil
}

func (s *PipelineService) recordStage(ctx context.Context, matchID int64, userID string, stage pipeline.Stage) {
	err := s.runRepo.Record(ctx, pipeline.Run{
		MatchID:   matchID,
		UserID:    userID,
		Stage:     stage,
		Status:    pipeline.StatusRunning,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		// Bookkeeping only; the import itself must not fail on it.
		s.log.WarnContext(ctx, "record pipeline stage failed", "match_id", matchID, "stage", stage, "error", err)
	}
}

func (s *PipelineService) failRun(ctx context.Context, matchID int64, userID string, stage pipeline.Stage, cause error) (pipeline.Run, error) {
	run := pipeline.Run{
		MatchID:   matchID,
		UserID:    userID,
		Stage:     stage,
		Status:    pipeline.StatusFailed,
		Reason:    cause.Error(),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.runRepo.Record(ctx, run); err != nil {
		s.log.WarnContext(ctx, "record failed pipeline run", "match_id", matchID, "stage", stage, "error", err)
	}
	s.log.ErrorContext(ctx, "match import pipeline failed", "match_id", matchID, "stage", stage, "error", cause)
	return run, fmt.Errorf("pipeline stage %s failed for match_id=%d: %w", stage, matchID, cause)
}
