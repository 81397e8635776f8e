package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/task"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
)

// rollupWindow caps how many recent eligible matches feed the rollup.
const rollupWindow = 20

// StatisticsService recomputes a user's rolling statistics from
// whatever is currently persisted. It never reads in-flight pipeline
// state, so racing an import only means the next recalculation picks
// the newer rows up.
type StatisticsService struct {
	digestRepo  digest.Repository
	metricsRepo metrics.Repository
	statsRepo   statistics.Repository
	taskRepo    task.Repository
	log         *logging.Logger
	now         func() time.Time
}

func NewStatisticsService(
	digestRepo digest.Repository,
	metricsRepo metrics.Repository,
	statsRepo statistics.Repository,
	taskRepo task.Repository,
	log *logging.Logger,
) *StatisticsService {
	if log == nil {
		log = logging.Default()
	}
	return &StatisticsService{
		digestRepo:  digestRepo,
		metricsRepo: metricsRepo,
		statsRepo:   statsRepo,
		taskRepo:    taskRepo,
		log:         log,
		now:         time.Now,
	}
}

func (s *StatisticsService) Get(ctx context.Context, userID string) (statistics.UserStatistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatisticsService.Get")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return statistics.UserStatistics{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	stats, found, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return statistics.UserStatistics{}, fmt.Errorf("get statistics user_id=%s: %w", userID, err)
	}
	if !found {
		return statistics.UserStatistics{}, fmt.Errorf("%w: no statistics for user_id=%s", ErrNotFound, userID)
	}
	return stats, nil
}

// Recalculate rebuilds the rollup over the user's most recent eligible
// matches and replaces the stored record in place. With no eligible
// matches it leaves the prior record untouched so an established user
// never sees a false zeroed dashboard mid-recompute.
func (s *StatisticsService) Recalculate(ctx context.Context, userID string, accountID int64) (statistics.UserStatistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatisticsService.Recalculate")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return statistics.UserStatistics{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if accountID <= 0 {
		return statistics.UserStatistics{}, fmt.Errorf("%w: no linked account for user_id=%s", ErrInvalidInput, userID)
	}

	recent, err := s.digestRepo.ListRecentByAccount(ctx, accountID, rollupWindow)
	if err != nil {
		return statistics.UserStatistics{}, fmt.Errorf("list recent matches account_id=%d: %w", accountID, err)
	}
	if len(recent) == 0 {
		s.log.InfoContext(ctx, "no eligible matches, keeping prior statistics", "user_id", userID, "account_id", accountID)
		prior, found, priorErr := s.statsRepo.GetByUserID(ctx, userID)
		if priorErr != nil || !found {
			return statistics.UserStatistics{UserID: userID}, nil
		}
		return prior, nil
	}

	wins := 0
	kdaSum := 0.0
	gpmSum := 0.0
	xpmSum := 0.0
	keys := make([]metrics.Key, 0, len(recent))
	for _, pm := range recent {
		if pm.Match.RadiantWin == pm.Player.IsRadiant() {
			wins++
		}
		kdaSum += valueOrZero(pm.Player.KDA)
		gpmSum += valueOrZero(pm.Player.GoldPerMin)
		xpmSum += valueOrZero(pm.Player.XPPerMin)
		keys = append(keys, metrics.Key{MatchID: pm.Match.MatchID, PlayerSlot: pm.Player.PlayerSlot})
	}

	count := float64(len(recent))
	stats := statistics.UserStatistics{
		UserID:          userID,
		MatchesAnalyzed: len(recent),
		WinRate:         float64(wins) / count * 100,
		AvgKDA:          kdaSum / count,
		AvgGoldPerMin:   gpmSum / count,
		AvgXPPerMin:     xpmSum / count,
	}

	metricRows, err := s.metricsRepo.ListByKeys(ctx, keys)
	if err != nil {
		return statistics.UserStatistics{}, fmt.Errorf("list metrics for rollup account_id=%d: %w", accountID, err)
	}
	if len(metricRows) > 0 {
		aggSum, farmSum, macroSum, survSum := 0.0, 0.0, 0.0, 0.0
		for _, row := range metricRows {
			aggSum += row.Aggressiveness
			farmSum += row.FarmEfficiency
			macroSum += row.Macro
			survSum += row.Survivability
		}
		metricCount := float64(len(metricRows))
		stats.AvgAggressiveness = aggSum / metricCount
		stats.AvgFarmEfficiency = farmSum / metricCount
		stats.AvgMacro = macroSum / metricCount
		stats.AvgSurvivability = survSum / metricCount
	}

	activeTasks, err := s.taskRepo.ListByUserAndStatus(ctx, userID, task.StatusActive)
	if err != nil {
		return statistics.UserStatistics{}, fmt.Errorf("list active tasks user_id=%s: %w", userID, err)
	}
	stats.ActiveTasks = len(activeTasks)
	if len(activeTasks) > 0 {
		progressSum := 0.0
		for _, item := range activeTasks {
			progressSum += item.ProgressPercentage
		}
		stats.WeeklyProgress = progressSum / float64(len(activeTasks))
	}

	completed, err := s.taskRepo.CountByUserAndStatus(ctx, userID, task.StatusCompleted)
	if err != nil {
		return statistics.UserStatistics{}, fmt.Errorf("count completed tasks user_id=%s: %w", userID, err)
	}
	stats.CompletedTasks = completed
	stats.LastCalculatedAt = s.now().UTC()

	if err := s.statsRepo.Upsert(ctx, stats); err != nil {
		return statistics.UserStatistics{}, fmt.Errorf("upsert statistics user_id=%s: %w", userID, err)
	}

	return stats, nil
}
