package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/task"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/repository/memory"
)

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("task-%03d", g.next), nil
}

func seedStatistics(t *testing.T, repo *memory.StatisticsRepository, stats statistics.UserStatistics) {
	t.Helper()
	if err := repo.Upsert(t.Context(), stats); err != nil {
		t.Fatalf("seed statistics: %v", err)
	}
}

func TestTaskService_Generate(t *testing.T) {
	taskRepo := memory.NewTaskRepository()
	statsRepo := memory.NewStatisticsRepository()
	seedStatistics(t, statsRepo, statistics.UserStatistics{
		UserID:            "user-1",
		MatchesAnalyzed:   10,
		WinRate:           44,
		AvgAggressiveness: 25,
		AvgFarmEfficiency: 42,
		AvgMacro:          65,
		AvgSurvivability:  70,
	})

	svc := NewTaskService(taskRepo, statsRepo, &sequenceIDGenerator{}, nil)

	tasks, err := svc.Generate(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	// Low aggressiveness, low farm, low win rate. Macro and
	// survivability are above threshold.
	if len(tasks) != 3 {
		t.Fatalf("unexpected task count: got=%d want=%d", len(tasks), 3)
	}

	byCategory := make(map[task.Category]task.Task, len(tasks))
	for _, item := range tasks {
		byCategory[item.Category] = item
	}

	agg, ok := byCategory[task.CategoryAggressiveness]
	if !ok {
		t.Fatal("missing aggressiveness task")
	}
	if agg.Priority != task.PriorityHigh {
		t.Fatalf("unexpected aggressiveness priority: %s", agg.Priority)
	}
	if agg.TargetValue != taskScoreTarget || agg.CurrentValue != 25 {
		t.Fatalf("unexpected aggressiveness goal: target=%f current=%f", agg.TargetValue, agg.CurrentValue)
	}
	if agg.ProgressPercentage != 42 {
		t.Fatalf("unexpected aggressiveness progress: got=%f want=%f", agg.ProgressPercentage, 42.0)
	}

	farm, ok := byCategory[task.CategoryFarmEfficiency]
	if !ok {
		t.Fatal("missing farm efficiency task")
	}
	if farm.Priority != task.PriorityMedium {
		t.Fatalf("unexpected farm priority: %s", farm.Priority)
	}

	winRate, ok := byCategory[task.CategoryWinRate]
	if !ok {
		t.Fatal("missing win rate task")
	}
	if winRate.TargetValue != taskWinRateTarget || winRate.CurrentValue != 44 {
		t.Fatalf("unexpected win rate goal: target=%f current=%f", winRate.TargetValue, winRate.CurrentValue)
	}

	for _, item := range tasks {
		if item.Status != task.StatusActive {
			t.Fatalf("unexpected status for %s: %s", item.Category, item.Status)
		}
		if item.ID == "" || item.UserID != "user-1" {
			t.Fatalf("unexpected identity: id=%q user=%q", item.ID, item.UserID)
		}
	}
}

func TestTaskService_Generate_RefreshesExistingTask(t *testing.T) {
	taskRepo := memory.NewTaskRepository()
	statsRepo := memory.NewStatisticsRepository()
	seedStatistics(t, statsRepo, statistics.UserStatistics{
		UserID:            "user-1",
		MatchesAnalyzed:   10,
		WinRate:           60,
		AvgAggressiveness: 20,
		AvgFarmEfficiency: 80,
		AvgMacro:          80,
		AvgSurvivability:  80,
	})

	svc := NewTaskService(taskRepo, statsRepo, &sequenceIDGenerator{}, nil)
	fixed := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	first, err := svc.Generate(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("unexpected first task count: got=%d want=%d", len(first), 1)
	}

	// The score improved, still below threshold. Regenerating must
	// refresh the same task, not stack a duplicate.
	seedStatistics(t, statsRepo, statistics.UserStatistics{
		UserID:            "user-1",
		MatchesAnalyzed:   11,
		WinRate:           60,
		AvgAggressiveness: 30,
		AvgFarmEfficiency: 80,
		AvgMacro:          80,
		AvgSurvivability:  80,
	})

	second, err := svc.Generate(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("unexpected second task count: got=%d want=%d", len(second), 1)
	}
	if second[0].ID != first[0].ID {
		t.Fatalf("expected refreshed task to keep id %s, got %s", first[0].ID, second[0].ID)
	}
	if second[0].CurrentValue != 30 {
		t.Fatalf("unexpected refreshed current value: got=%f want=%f", second[0].CurrentValue, 30.0)
	}
	if second[0].ProgressPercentage != 50 {
		t.Fatalf("unexpected refreshed progress: got=%f want=%f", second[0].ProgressPercentage, 50.0)
	}

	all, err := taskRepo.ListByUser(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("duplicate task was created: got=%d want=%d", len(all), 1)
	}
}

func TestTaskService_Generate_NoStatistics(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository(), memory.NewStatisticsRepository(), &sequenceIDGenerator{}, nil)

	_, err := svc.Generate(t.Context(), "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskService_Generate_NoAnalyzedMatches(t *testing.T) {
	statsRepo := memory.NewStatisticsRepository()
	seedStatistics(t, statsRepo, statistics.UserStatistics{UserID: "user-1", MatchesAnalyzed: 0})

	svc := NewTaskService(memory.NewTaskRepository(), statsRepo, &sequenceIDGenerator{}, nil)

	_, err := svc.Generate(t.Context(), "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskService_ListForUser(t *testing.T) {
	taskRepo := memory.NewTaskRepository()
	svc := NewTaskService(taskRepo, memory.NewStatisticsRepository(), &sequenceIDGenerator{}, nil)

	if _, err := svc.ListForUser(t.Context(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	err := taskRepo.Insert(t.Context(), task.Task{ID: "task-1", UserID: "user-1", Category: task.CategoryMacro, Status: task.StatusActive})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	tasks, err := svc.ListForUser(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "task-1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}
