package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/task"
)

// Dashboard bundles everything the coaching home screen needs into one
// read: the rolling statistics plus the tasks the user is working on.
type Dashboard struct {
	Statistics  statistics.UserStatistics
	ActiveTasks []task.Task
	FocusArea   task.Category
}

type DashboardService struct {
	statsRepo statistics.Repository
	taskRepo  task.Repository
}

func NewDashboardService(statsRepo statistics.Repository, taskRepo task.Repository) *DashboardService {
	return &DashboardService{
		statsRepo: statsRepo,
		taskRepo:  taskRepo,
	}
}

func (s *DashboardService) Get(ctx context.Context, userID string) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	if userID == "" {
		return Dashboard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	stats, found, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get statistics for dashboard: %w", err)
	}
	if !found {
		return Dashboard{}, fmt.Errorf("%w: no statistics for user_id=%s", ErrNotFound, userID)
	}

	active, err := s.taskRepo.ListByUserAndStatus(ctx, userID, task.StatusActive)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list active tasks for dashboard: %w", err)
	}

	return Dashboard{
		Statistics:  stats,
		ActiveTasks: active,
		FocusArea:   resolveFocusArea(stats),
	}, nil
}

// resolveFocusArea picks the weakest composite average, the one a coach
// would point at first. Empty when every score is healthy.
func resolveFocusArea(stats statistics.UserStatistics) task.Category {
	const healthyScore = 50

	lowest := task.Category("")
	lowestValue := float64(healthyScore)

	candidates := []struct {
		category task.Category
		value    float64
	}{
		{task.CategoryAggressiveness, stats.AvgAggressiveness},
		{task.CategoryFarmEfficiency, stats.AvgFarmEfficiency},
		{task.CategoryMacro, stats.AvgMacro},
		{task.CategorySurvivability, stats.AvgSurvivability},
	}
	for _, candidate := range candidates {
		if candidate.value < lowestValue {
			lowest = candidate.category
			lowestValue = candidate.value
		}
	}
	if lowest != "" {
		return lowest
	}
	if stats.MatchesAnalyzed > 0 && stats.WinRate < healthyScore {
		return task.CategoryWinRate
	}
	return ""
}
