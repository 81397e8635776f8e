package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
	"github.com/riskibarqy/dota-coach/internal/domain/user"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/repository/memory"
)

type stubMatchProvider struct {
	payload map[string]any
	err     error
	calls   int
}

func (p *stubMatchProvider) FetchMatch(_ context.Context, _ int64) (map[string]any, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.payload, nil
}

type pipelineFixture struct {
	svc         *PipelineService
	provider    *stubMatchProvider
	rawRepo     *memory.RawMatchRepository
	digestRepo  *memory.DigestRepository
	metricsRepo *memory.MetricsRepository
	statsRepo   *memory.StatisticsRepository
	runRepo     *memory.PipelineRepository
}

func newPipelineFixture(provider *stubMatchProvider) pipelineFixture {
	rawRepo := memory.NewRawMatchRepository()
	digestRepo := memory.NewDigestRepository()
	metricsRepo := memory.NewMetricsRepository()
	statsRepo := memory.NewStatisticsRepository()
	taskRepo := memory.NewTaskRepository()
	runRepo := memory.NewPipelineRepository()

	metricsSvc := NewMetricsService(digestRepo, metricsRepo)
	statsSvc := NewStatisticsService(digestRepo, metricsRepo, statsRepo, taskRepo, nil)
	svc := NewPipelineService(provider, rawRepo, digestRepo, runRepo, nil, metricsSvc, statsSvc, nil)

	return pipelineFixture{
		svc:         svc,
		provider:    provider,
		rawRepo:     rawRepo,
		digestRepo:  digestRepo,
		metricsRepo: metricsRepo,
		statsRepo:   statsRepo,
		runRepo:     runRepo,
	}
}

func linkedRawMatch(matchID float64) map[string]any {
	raw := validRawMatch()
	raw["match_id"] = matchID
	players := raw["players"].([]any)
	players[0].(map[string]any)["account_id"] = float64(testAccountID)
	return raw
}

func TestPipelineService_ImportMatch(t *testing.T) {
	fixture := newPipelineFixture(&stubMatchProvider{payload: linkedRawMatch(5001)})
	principal := user.Principal{UserID: "user-1", AccountID: testAccountID}

	run, err := fixture.svc.ImportMatch(t.Context(), principal, 5001)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if run.Stage != pipeline.StageAggregated || run.Status != pipeline.StatusSucceeded {
		t.Fatalf("unexpected run: stage=%s status=%s", run.Stage, run.Status)
	}

	if _, found, _ := fixture.rawRepo.GetByMatchID(t.Context(), 5001); !found {
		t.Fatal("raw match was not cached")
	}

	match, found, err := fixture.digestRepo.GetMatch(t.Context(), 5001)
	if err != nil || !found {
		t.Fatalf("match digest missing: found=%v err=%v", found, err)
	}
	if !match.IncludedInCoaching {
		t.Fatal("expected a 30 minute match to count toward coaching")
	}

	players, err := fixture.digestRepo.ListPlayersByMatch(t.Context(), 5001)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("unexpected player count: got=%d want=%d", len(players), 2)
	}

	for _, player := range players {
		_, found, err := fixture.metricsRepo.GetByKey(t.Context(), metrics.Key{MatchID: 5001, PlayerSlot: player.PlayerSlot})
		if err != nil {
			t.Fatalf("get metrics: %v", err)
		}
		if !found {
			t.Fatalf("metrics missing for slot %d", player.PlayerSlot)
		}
	}

	stats, found, err := fixture.statsRepo.GetByUserID(t.Context(), "user-1")
	if err != nil || !found {
		t.Fatalf("statistics missing: found=%v err=%v", found, err)
	}
	if stats.MatchesAnalyzed != 1 {
		t.Fatalf("unexpected matches analyzed: got=%d want=%d", stats.MatchesAnalyzed, 1)
	}

	stored, err := fixture.svc.GetRun(t.Context(), 5001)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if stored.Status != pipeline.StatusSucceeded {
		t.Fatalf("unexpected stored status: %s", stored.Status)
	}
}

func TestPipelineService_ImportMatch_ProviderFailure(t *testing.T) {
	providerErr := errors.New("upstream down")
	fixture := newPipelineFixture(&stubMatchProvider{err: providerErr})

	run, err := fixture.svc.ImportMatch(t.Context(), user.Principal{UserID: "user-1"}, 5002)
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if run.Stage != pipeline.StageFetched || run.Status != pipeline.StatusFailed {
		t.Fatalf("unexpected run: stage=%s status=%s", run.Stage, run.Status)
	}
	if run.Reason == "" {
		t.Fatal("failed run must carry a reason")
	}

	stored, found, err := fixture.runRepo.GetByMatchID(t.Context(), 5002)
	if err != nil || !found {
		t.Fatalf("failed run not recorded: found=%v err=%v", found, err)
	}
	if stored.Status != pipeline.StatusFailed {
		t.Fatalf("unexpected stored status: %s", stored.Status)
	}
}

func TestPipelineService_ImportMatch_InvalidPayloadLeavesNoDigest(t *testing.T) {
	raw := linkedRawMatch(5003)
	delete(raw, "radiant_win")
	fixture := newPipelineFixture(&stubMatchProvider{payload: raw})

	run, err := fixture.svc.ImportMatch(t.Context(), user.Principal{UserID: "user-1"}, 5003)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if run.Stage != pipeline.StageDigested || run.Status != pipeline.StatusFailed {
		t.Fatalf("unexpected run: stage=%s status=%s", run.Stage, run.Status)
	}

	// The raw payload stays cached for debugging, but nothing partial
	// reaches the digest store.
	if _, found, _ := fixture.rawRepo.GetByMatchID(t.Context(), 5003); !found {
		t.Fatal("raw match should stay cached")
	}
	if _, found, _ := fixture.digestRepo.GetMatch(t.Context(), 5003); found {
		t.Fatal("no match digest should be written for an invalid payload")
	}
}

func TestPipelineService_ImportMatch_UnlinkedAccountSkipsAggregation(t *testing.T) {
	fixture := newPipelineFixture(&stubMatchProvider{payload: linkedRawMatch(5004)})

	run, err := fixture.svc.ImportMatch(t.Context(), user.Principal{UserID: "user-2"}, 5004)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if run.Status != pipeline.StatusSucceeded {
		t.Fatalf("unexpected status: %s", run.Status)
	}
	if _, found, _ := fixture.statsRepo.GetByUserID(t.Context(), "user-2"); found {
		t.Fatal("aggregation should be skipped without a linked account")
	}
}

func TestPipelineService_ImportMatch_Rerun(t *testing.T) {
	fixture := newPipelineFixture(&stubMatchProvider{payload: linkedRawMatch(5005)})
	principal := user.Principal{UserID: "user-1", AccountID: testAccountID}

	if _, err := fixture.svc.ImportMatch(t.Context(), principal, 5005); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if _, err := fixture.svc.ImportMatch(t.Context(), principal, 5005); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	players, err := fixture.digestRepo.ListPlayersByMatch(t.Context(), 5005)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("re-import duplicated player rows: got=%d want=%d", len(players), 2)
	}

	stats, _, err := fixture.statsRepo.GetByUserID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	if stats.MatchesAnalyzed != 1 {
		t.Fatalf("re-import double counted the match: got=%d want=%d", stats.MatchesAnalyzed, 1)
	}
}

func TestPipelineService_RebuildDigest(t *testing.T) {
	provider := &stubMatchProvider{err: errors.New("provider must not be called")}
	fixture := newPipelineFixture(provider)

	// Seed the raw cache through a normal import first.
	seeded := newPipelineFixture(&stubMatchProvider{payload: linkedRawMatch(5006)})
	if _, err := seeded.svc.ImportMatch(t.Context(), user.Principal{UserID: "user-1", AccountID: testAccountID}, 5006); err != nil {
		t.Fatalf("seed import failed: %v", err)
	}
	raw, _, err := seeded.rawRepo.GetByMatchID(t.Context(), 5006)
	if err != nil {
		t.Fatalf("get seeded raw match: %v", err)
	}
	if err := fixture.rawRepo.Upsert(t.Context(), raw); err != nil {
		t.Fatalf("seed raw cache: %v", err)
	}

	run, err := fixture.svc.RebuildDigest(t.Context(), "user-1", 5006)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if run.Stage != pipeline.StageMetricsComputed || run.Status != pipeline.StatusSucceeded {
		t.Fatalf("unexpected run: stage=%s status=%s", run.Stage, run.Status)
	}
	if provider.calls != 0 {
		t.Fatalf("rebuild hit the provider %d times", provider.calls)
	}
	if _, found, _ := fixture.digestRepo.GetMatch(t.Context(), 5006); !found {
		t.Fatal("rebuild did not persist the digest")
	}
}

func TestPipelineService_RebuildDigest_NoCachedRaw(t *testing.T) {
	fixture := newPipelineFixture(&stubMatchProvider{err: errors.New("provider must not be called")})

	_, err := fixture.svc.RebuildDigest(t.Context(), "user-1", 5007)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPipelineService_GetRun_NotFound(t *testing.T) {
	fixture := newPipelineFixture(&stubMatchProvider{})

	_, err := fixture.svc.GetRun(t.Context(), 5008)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
