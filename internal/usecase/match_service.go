package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
)

// MatchDetails is the read model for a single imported match.
type MatchDetails struct {
	Match   digest.MatchDigest
	Players []digest.PlayerDigest
}

// MatchService serves the read side of imported matches: digests and
// the metrics rows the pipeline computed for them.
type MatchService struct {
	digestRepo  digest.Repository
	metricsRepo metrics.Repository
}

func NewMatchService(digestRepo digest.Repository, metricsRepo metrics.Repository) *MatchService {
	return &MatchService{
		digestRepo:  digestRepo,
		metricsRepo: metricsRepo,
	}
}

func (s *MatchService) GetMatch(ctx context.Context, matchID int64) (MatchDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	if matchID <= 0 {
		return MatchDetails{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	match, found, err := s.digestRepo.GetMatch(ctx, matchID)
	if err != nil {
		return MatchDetails{}, fmt.Errorf("get match digest match_id=%d: %w", matchID, err)
	}
	if !found {
		return MatchDetails{}, fmt.Errorf("%w: match match_id=%d", ErrNotFound, matchID)
	}

	players, err := s.digestRepo.ListPlayersByMatch(ctx, matchID)
	if err != nil {
		return MatchDetails{}, fmt.Errorf("list player digests match_id=%d: %w", matchID, err)
	}

	return MatchDetails{Match: match, Players: players}, nil
}

// GetPlayerMetrics returns the stored metrics row for one player slot.
// Rows exist once the pipeline has reached metrics_computed for the
// match.
func (s *MatchService) GetPlayerMetrics(ctx context.Context, matchID, playerSlot int64) (metrics.MatchMetrics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetPlayerMetrics")
	defer span.End()

	if matchID <= 0 || playerSlot < 0 {
		return metrics.MatchMetrics{}, fmt.Errorf("%w: match id and player slot are required", ErrInvalidInput)
	}

	row, found, err := s.metricsRepo.GetByKey(ctx, metrics.Key{MatchID: matchID, PlayerSlot: playerSlot})
	if err != nil {
		return metrics.MatchMetrics{}, fmt.Errorf("get metrics match_id=%d slot=%d: %w", matchID, playerSlot, err)
	}
	if !found {
		return metrics.MatchMetrics{}, fmt.Errorf("%w: metrics match_id=%d slot=%d", ErrNotFound, matchID, playerSlot)
	}

	return row, nil
}
