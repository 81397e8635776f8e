package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/repository/memory"
)

func floatPtr(v float64) *float64 { return &v }

func int64Ptr(v int64) *int64 { return &v }

func seedDigestMatch(t *testing.T, repo *memory.DigestRepository, matchID int64, slots ...int64) {
	t.Helper()

	err := repo.UpsertMatch(t.Context(), digest.MatchDigest{
		MatchID:            matchID,
		Duration:           2400,
		RadiantWin:         true,
		IncludedInCoaching: true,
	})
	if err != nil {
		t.Fatalf("seed match digest: %v", err)
	}

	players := make([]digest.PlayerDigest, 0, len(slots))
	for i, slot := range slots {
		players = append(players, digest.PlayerDigest{
			MatchID:           matchID,
			PlayerSlot:        slot,
			HeroID:            int64(i + 1),
			Kills:             floatPtr(8),
			Deaths:            floatPtr(4),
			Assists:           floatPtr(12),
			GoldPerMin:        floatPtr(480),
			XPPerMin:          floatPtr(560),
			LastHits:          floatPtr(180),
			Denies:            floatPtr(10),
			NetWorth:          floatPtr(18000),
			HeroDamage:        floatPtr(21000),
			TowerDamage:       floatPtr(3500),
			DamageTaken:       floatPtr(16000),
			KDA:               floatPtr(5),
			KillParticipation: floatPtr(0.6),
		})
	}
	if err := repo.ReplacePlayers(t.Context(), matchID, players); err != nil {
		t.Fatalf("seed player digests: %v", err)
	}
}

func TestMetricsService_ComputeForMatch(t *testing.T) {
	digestRepo := memory.NewDigestRepository()
	metricsRepo := memory.NewMetricsRepository()
	seedDigestMatch(t, digestRepo, 8001, 0, 1, 128)

	svc := NewMetricsService(digestRepo, metricsRepo)

	rows, err := svc.ComputeForMatch(t.Context(), 8001)
	if err != nil {
		t.Fatalf("compute for match failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("unexpected row count: got=%d want=%d", len(rows), 3)
	}

	for _, row := range rows {
		stored, found, err := metricsRepo.GetByKey(t.Context(), metrics.Key{MatchID: row.MatchID, PlayerSlot: row.PlayerSlot})
		if err != nil {
			t.Fatalf("get stored metrics: %v", err)
		}
		if !found {
			t.Fatalf("metrics not persisted for slot %d", row.PlayerSlot)
		}
		for name, score := range map[string]float64{
			"aggressiveness": stored.Aggressiveness,
			"farm":           stored.FarmEfficiency,
			"macro":          stored.Macro,
			"survivability":  stored.Survivability,
		} {
			if score < 0 || score > 100 {
				t.Fatalf("%s score out of bounds: %f", name, score)
			}
		}
	}
}

func TestMetricsService_ComputeForMatch_MissingDigest(t *testing.T) {
	svc := NewMetricsService(memory.NewDigestRepository(), memory.NewMetricsRepository())

	_, err := svc.ComputeForMatch(t.Context(), 8002)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMetricsService_ComputeForMatch_NoPlayers(t *testing.T) {
	digestRepo := memory.NewDigestRepository()
	err := digestRepo.UpsertMatch(t.Context(), digest.MatchDigest{MatchID: 8003, Duration: 2400})
	if err != nil {
		t.Fatalf("seed match digest: %v", err)
	}

	svc := NewMetricsService(digestRepo, memory.NewMetricsRepository())

	_, err = svc.ComputeForMatch(t.Context(), 8003)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMetricsService_ComputeForPlayer(t *testing.T) {
	digestRepo := memory.NewDigestRepository()
	metricsRepo := memory.NewMetricsRepository()
	seedDigestMatch(t, digestRepo, 8004, 0, 128)

	svc := NewMetricsService(digestRepo, metricsRepo)

	row, err := svc.ComputeForPlayer(t.Context(), 8004, 128)
	if err != nil {
		t.Fatalf("compute for player failed: %v", err)
	}
	if row.MatchID != 8004 || row.PlayerSlot != 128 {
		t.Fatalf("unexpected key: match=%d slot=%d", row.MatchID, row.PlayerSlot)
	}

	_, found, err := metricsRepo.GetByKey(t.Context(), metrics.Key{MatchID: 8004, PlayerSlot: 128})
	if err != nil {
		t.Fatalf("get stored metrics: %v", err)
	}
	if !found {
		t.Fatal("metrics row was not persisted")
	}

	_, err = svc.ComputeForPlayer(t.Context(), 8004, 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown slot, got %v", err)
	}
}

func TestMetricsService_InvalidInput(t *testing.T) {
	svc := NewMetricsService(memory.NewDigestRepository(), memory.NewMetricsRepository())

	if _, err := svc.ComputeForMatch(t.Context(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ComputeForPlayer(t.Context(), -1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
