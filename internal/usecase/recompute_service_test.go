package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/user"
)

type stubBatchImporter struct {
	mu      sync.Mutex
	calls   []int64
	failIDs map[int64]error
}

func (s *stubBatchImporter) ImportMatch(_ context.Context, _ user.Principal, matchID int64) (pipeline.Run, error) {
	s.mu.Lock()
	s.calls = append(s.calls, matchID)
	s.mu.Unlock()

	if err, ok := s.failIDs[matchID]; ok {
		return pipeline.Run{MatchID: matchID, Stage: pipeline.StageFetched, Status: pipeline.StatusFailed}, err
	}
	return pipeline.Run{MatchID: matchID, Stage: pipeline.StageAggregated, Status: pipeline.StatusSucceeded}, nil
}

type stubRecalculator struct {
	mu      sync.Mutex
	userIDs []string
	failFor map[string]error
}

func (s *stubRecalculator) Recalculate(_ context.Context, userID string, _ int64) (statistics.UserStatistics, error) {
	s.mu.Lock()
	s.userIDs = append(s.userIDs, userID)
	s.mu.Unlock()

	if err, ok := s.failFor[userID]; ok {
		return statistics.UserStatistics{}, err
	}
	return statistics.UserStatistics{UserID: userID}, nil
}

func TestRecomputeService_ImportMatches(t *testing.T) {
	importer := &stubBatchImporter{failIDs: map[int64]error{7002: errors.New("digest failed")}}
	svc := NewRecomputeService(importer, &stubRecalculator{}, nil)

	result, err := svc.ImportMatches(t.Context(), BatchImportInput{
		Principal:  user.Principal{UserID: "user-1"},
		MatchIDs:   []int64{7001, 7002, 7001, -5, 7003},
		MaxWorkers: 2,
	})
	if err != nil {
		t.Fatalf("import matches failed: %v", err)
	}

	// 7001 deduplicated, -5 skipped, 7002 fails.
	if result.TaskCount != 4 {
		t.Fatalf("unexpected task count: got=%d want=%d", result.TaskCount, 4)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 || result.SkippedCount != 1 {
		t.Fatalf("unexpected counters: success=%d failed=%d skipped=%d", result.SuccessCount, result.FailedCount, result.SkippedCount)
	}
	if result.WorkerCount != 2 {
		t.Fatalf("unexpected worker count: got=%d want=%d", result.WorkerCount, 2)
	}
	if len(result.Tasks) != 4 {
		t.Fatalf("unexpected task rows: got=%d want=%d", len(result.Tasks), 4)
	}
	for i := 1; i < len(result.Tasks); i++ {
		if result.Tasks[i-1].MatchID > result.Tasks[i].MatchID {
			t.Fatalf("task rows not sorted by match id: %+v", result.Tasks)
		}
	}

	byMatch := make(map[int64]BatchImportTaskResult, len(result.Tasks))
	for _, row := range result.Tasks {
		byMatch[row.MatchID] = row
	}
	if byMatch[7002].Status != recomputeStatusFailed || byMatch[7002].Message == "" {
		t.Fatalf("unexpected failed row: %+v", byMatch[7002])
	}
	if byMatch[-5].Status != recomputeStatusSkipped {
		t.Fatalf("unexpected skipped row: %+v", byMatch[-5])
	}
	if byMatch[7001].Status != recomputeStatusSuccess || byMatch[7001].Stage != string(pipeline.StageAggregated) {
		t.Fatalf("unexpected success row: %+v", byMatch[7001])
	}

	if len(importer.calls) != 3 {
		t.Fatalf("unexpected importer call count: got=%d want=%d", len(importer.calls), 3)
	}
}

func TestRecomputeService_ImportMatches_EmptyInput(t *testing.T) {
	svc := NewRecomputeService(&stubBatchImporter{}, &stubRecalculator{}, nil)

	_, err := svc.ImportMatches(t.Context(), BatchImportInput{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecomputeService_RecomputeUsers(t *testing.T) {
	recalc := &stubRecalculator{failFor: map[string]error{
		"user-2": errors.New("no linked account"),
		"user-4": errors.New("store unavailable"),
	}}
	svc := NewRecomputeService(&stubBatchImporter{}, recalc, nil)

	principals := []user.Principal{
		{UserID: "user-1", AccountID: 1},
		{UserID: "user-2"},
		{UserID: "user-3", AccountID: 3},
		{UserID: "user-4", AccountID: 4},
	}

	result, err := svc.RecomputeUsers(t.Context(), principals, 3)
	if err != nil {
		t.Fatalf("recompute users failed: %v", err)
	}
	if result.UserCount != 4 || result.SuccessCount != 2 || result.FailedCount != 2 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(result.FailedUsers) != 2 || result.FailedUsers[0] != "user-2" || result.FailedUsers[1] != "user-4" {
		t.Fatalf("unexpected failed users: %v", result.FailedUsers)
	}
	if len(recalc.userIDs) != 4 {
		t.Fatalf("unexpected recalculate call count: got=%d want=%d", len(recalc.userIDs), 4)
	}
}

func TestRecomputeService_RecomputeUsers_EmptyInput(t *testing.T) {
	svc := NewRecomputeService(&stubBatchImporter{}, &stubRecalculator{}, nil)

	_, err := svc.RecomputeUsers(t.Context(), nil, 4)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
