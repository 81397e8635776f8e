package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/task"
	"github.com/riskibarqy/dota-coach/internal/platform/id"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
)

const (
	taskScoreThreshold    = 50.0
	taskHighPriorityBelow = 30.0
	taskScoreTarget       = 60.0
	taskWinRateThreshold  = 50.0
	taskWinRateTarget     = 55.0
)

// TaskService turns a user's statistics into coaching tasks. One active
// task per category at a time; regenerating refreshes progress on the
// existing task instead of stacking duplicates.
type TaskService struct {
	taskRepo  task.Repository
	statsRepo statistics.Repository
	idGen     id.Generator
	log       *logging.Logger
	now       func() time.Time
}

func NewTaskService(taskRepo task.Repository, statsRepo statistics.Repository, idGen id.Generator, log *logging.Logger) *TaskService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if log == nil {
		log = logging.Default()
	}
	return &TaskService{
		taskRepo:  taskRepo,
		statsRepo: statsRepo,
		idGen:     idGen,
		log:       log,
		now:       time.Now,
	}
}

func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]task.Task, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TaskService.ListForUser")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	tasks, err := s.taskRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks user_id=%s: %w", userID, err)
	}
	return tasks, nil
}

// Generate derives tasks from the user's current statistics. Returns
// the tasks created or refreshed by this call.
func (s *TaskService) Generate(ctx context.Context, userID string) ([]task.Task, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TaskService.Generate")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	stats, found, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get statistics for task generation user_id=%s: %w", userID, err)
	}
	if !found || stats.MatchesAnalyzed == 0 {
		return nil, fmt.Errorf("%w: no analyzed matches for user_id=%s", ErrNotFound, userID)
	}

	active, err := s.taskRepo.ListByUserAndStatus(ctx, userID, task.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active tasks user_id=%s: %w", userID, err)
	}
	activeByCategory := make(map[task.Category]task.Task, len(active))
	for _, item := range active {
		activeByCategory[item.Category] = item
	}

	candidates := taskCandidates(stats)
	out := make([]task.Task, 0, len(candidates))
	for _, candidate := range candidates {
		existing, exists := activeByCategory[candidate.Category]
		if exists {
			existing.CurrentValue = candidate.CurrentValue
			existing.ProgressPercentage = progressPercentage(candidate.CurrentValue, existing.TargetValue)
			existing.UpdatedAt = s.now().UTC()
			if err := s.taskRepo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("update task user_id=%s category=%s: %w", userID, candidate.Category, err)
			}
			out = append(out, existing)
			continue
		}

		newID, err := s.idGen.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate task id: %w", err)
		}
		candidate.ID = newID
		candidate.UserID = userID
		candidate.Status = task.StatusActive
		candidate.ProgressPercentage = progressPercentage(candidate.CurrentValue, candidate.TargetValue)
		candidate.CreatedAt = s.now().UTC()
		candidate.UpdatedAt = candidate.CreatedAt
		if err := s.taskRepo.Insert(ctx, candidate); err != nil {
			return nil, fmt.Errorf("insert task user_id=%s category=%s: %w", userID, candidate.Category, err)
		}
		out = append(out, candidate)
	}

	s.log.InfoContext(ctx, "coaching tasks generated", "user_id", userID, "count", len(out))
	return out, nil
}

type scoreGoal struct {
	category    task.Category
	title       string
	description string
	value       float64
}

func taskCandidates(stats statistics.UserStatistics) []task.Task {
	goals := []scoreGoal{
		{
			category:    task.CategoryAggressiveness,
			title:       "Join more fights",
			description: "Your aggressiveness score is low. Look for rotations and take part in more team kills.",
			value:       stats.AvgAggressiveness,
		},
		{
			category:    task.CategoryFarmEfficiency,
			title:       "Improve your farm",
			description: "Your farm efficiency score is low. Focus on last hits, denies, and keeping lanes pushed.",
			value:       stats.AvgFarmEfficiency,
		},
		{
			category:    task.CategoryMacro,
			title:       "Push objectives",
			description: "Your macro score is low. Convert leads into towers and keep building net worth.",
			value:       stats.AvgMacro,
		},
		{
			category:    task.CategorySurvivability,
			title:       "Die less",
			description: "Your survivability score is low. Watch positioning and buy defensive items earlier.",
			value:       stats.AvgSurvivability,
		},
	}

	out := make([]task.Task, 0, len(goals)+1)
	for _, goal := range goals {
		if goal.value >= taskScoreThreshold {
			continue
		}
		priority := task.PriorityMedium
		if goal.value < taskHighPriorityBelow {
			priority = task.PriorityHigh
		}
		out = append(out, task.Task{
			Category:     goal.category,
			Title:        goal.title,
			Description:  goal.description,
			Priority:     priority,
			TargetValue:  taskScoreTarget,
			CurrentValue: goal.value,
		})
	}

	if stats.WinRate < taskWinRateThreshold {
		priority := task.PriorityMedium
		if stats.WinRate < taskHighPriorityBelow {
			priority = task.PriorityHigh
		}
		out = append(out, task.Task{
			Category:     task.CategoryWinRate,
			Title:        "Climb back over 50% winrate",
			Description:  "Your recent winrate dropped below 50%. Review losses and tighten your hero pool.",
			Priority:     priority,
			TargetValue:  taskWinRateTarget,
			CurrentValue: stats.WinRate,
		})
	}

	return out
}

func progressPercentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(current / target * 100)
}
