package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
)

// MetricsService derives composite scores and phase KPIs from persisted
// digests. Metrics rows are a cache, never a source of truth: every
// call recomputes from the digests before writing.
type MetricsService struct {
	digestRepo  digest.Repository
	metricsRepo metrics.Repository
	now         func() time.Time
}

func NewMetricsService(digestRepo digest.Repository, metricsRepo metrics.Repository) *MetricsService {
	return &MetricsService{
		digestRepo:  digestRepo,
		metricsRepo: metricsRepo,
		now:         time.Now,
	}
}

// ComputeForMatch scores every player row of the match and upserts the
// results.
func (s *MetricsService) ComputeForMatch(ctx context.Context, matchID int64) ([]metrics.MatchMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetricsService.ComputeForMatch")
	defer span.End()

	if matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	match, found, err := s.digestRepo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match digest match_id=%d: %w", matchID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: match digest match_id=%d", ErrNotFound, matchID)
	}
	players, err := s.digestRepo.ListPlayersByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list player digests match_id=%d: %w", matchID, err)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no player digests for match_id=%d", ErrNotFound, matchID)
	}

	computedAt := s.now().UTC()
	out := make([]metrics.MatchMetrics, 0, len(players))
	for _, player := range players {
		row := metrics.Score(scoreInput(player, match))
		row.MatchID = matchID
		row.PlayerSlot = player.PlayerSlot
		row.ComputedAt = computedAt

		if err := s.metricsRepo.Upsert(ctx, row); err != nil {
			return nil, fmt.Errorf("upsert metrics match_id=%d slot=%d: %w", matchID, player.PlayerSlot, err)
		}
		out = append(out, row)
	}

	return out, nil
}

// ComputeForPlayer scores a single player row on demand.
func (s *MetricsService) ComputeForPlayer(ctx context.Context, matchID, playerSlot int64) (metrics.MatchMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetricsService.ComputeForPlayer")
	defer span.End()

	if matchID <= 0 || playerSlot < 0 {
		return metrics.MatchMetrics{}, fmt.Errorf("%w: match id and player slot are required", ErrInvalidInput)
	}

	match, found, err := s.digestRepo.GetMatch(ctx, matchID)
	if err != nil {
		return metrics.MatchMetrics{}, fmt.Errorf("get match digest match_id=%d: %w", matchID, err)
	}
	if !found {
		return metrics.MatchMetrics{}, fmt.Errorf("%w: match digest match_id=%d", ErrNotFound, matchID)
	}
	player, found, err := s.digestRepo.GetPlayer(ctx, matchID, playerSlot)
	if err != nil {
		return metrics.MatchMetrics{}, fmt.Errorf("get player digest match_id=%d slot=%d: %w", matchID, playerSlot, err)
	}
	if !found {
		return metrics.MatchMetrics{}, fmt.Errorf("%w: player digest match_id=%d slot=%d", ErrNotFound, matchID, playerSlot)
	}

	row := metrics.Score(scoreInput(player, match))
	row.MatchID = matchID
	row.PlayerSlot = playerSlot
	row.ComputedAt = s.now().UTC()

	if err := s.metricsRepo.Upsert(ctx, row); err != nil {
		return metrics.MatchMetrics{}, fmt.Errorf("upsert metrics match_id=%d slot=%d: %w", matchID, playerSlot, err)
	}
	return row, nil
}

// scoreInput flattens a digest pair into plain numbers, absent treated
// as 0 for this stage.
func scoreInput(player digest.PlayerDigest, match digest.MatchDigest) metrics.ScoreInput {
	return metrics.ScoreInput{
		DurationSeconds:   float64(match.Duration),
		Kills:             valueOrZero(player.Kills),
		Deaths:            valueOrZero(player.Deaths),
		Assists:           valueOrZero(player.Assists),
		KillParticipation: valueOrZero(player.KillParticipation),
		HeroDamage:        valueOrZero(player.HeroDamage),
		TowerDamage:       valueOrZero(player.TowerDamage),
		DamageTaken:       valueOrZero(player.DamageTaken),
		GoldPerMin:        valueOrZero(player.GoldPerMin),
		XPPerMin:          valueOrZero(player.XPPerMin),
		LastHits:          valueOrZero(player.LastHits),
		Denies:            valueOrZero(player.Denies),
		NetWorth:          valueOrZero(player.NetWorth),
	}
}
