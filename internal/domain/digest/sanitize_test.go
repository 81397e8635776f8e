package digest

import (
	"math"
	"reflect"
	"testing"
)

func TestSanitizeIsIdempotent(t *testing.T) {
	t.Parallel()

	kills := 10.0
	deaths := math.NaN()
	kda := math.Inf(1)
	accountID := int64(84242608)

	input := PlayerDigest{
		MatchID:    100,
		PlayerSlot: 3,
		AccountID:  &accountID,
		HeroID:     14,
		Kills:      &kills,
		Deaths:     &deaths,
		KDA:        &kda,
		Items:      map[string]any{"item_0": 1.0, "item_neutral": 356.0},
	}

	once := Sanitize(input)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("sanitize is not idempotent: first=%+v second=%+v", once, twice)
	}
}

func TestSanitizeDropsNonFiniteNumbers(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	inf := math.Inf(-1)
	fine := 12.0

	out := Sanitize(PlayerDigest{
		MatchID:    1,
		PlayerSlot: 0,
		HeroID:     1,
		Kills:      &nan,
		Deaths:     &inf,
		Assists:    &fine,
	})

	if out.Kills != nil {
		t.Fatalf("expected NaN kills to be dropped, got=%v", *out.Kills)
	}
	if out.Deaths != nil {
		t.Fatalf("expected infinite deaths to be dropped, got=%v", *out.Deaths)
	}
	if out.Assists == nil || *out.Assists != 12 {
		t.Fatalf("expected finite assists to survive: got=%v", out.Assists)
	}
}

func TestSanitizeKeepsKeysAndCleansDocuments(t *testing.T) {
	t.Parallel()

	out := Sanitize(PlayerDigest{
		MatchID:         100,
		PlayerSlot:      128,
		HeroID:          2,
		Items:           map[string]any{"item_0": 29.0},
		PositionMetrics: nil,
		KillsByHero:     map[string]any{"bad": func() {}},
	})

	if out.MatchID != 100 || out.PlayerSlot != 128 || out.HeroID != 2 {
		t.Fatalf("key fields must pass through unchanged: got=%+v", out)
	}
	if out.Items == nil || out.Items["item_0"] != 29.0 {
		t.Fatalf("expected clean items document to survive: got=%v", out.Items)
	}
	if out.PositionMetrics != nil {
		t.Fatalf("expected absent document to stay absent")
	}
	if out.KillsByHero != nil {
		t.Fatalf("expected non-serializable document to be dropped")
	}
}

func TestSanitizeCopiesPointers(t *testing.T) {
	t.Parallel()

	kills := 5.0
	input := PlayerDigest{MatchID: 1, PlayerSlot: 0, HeroID: 1, Kills: &kills}
	out := Sanitize(input)

	kills = 99
	if out.Kills == nil || *out.Kills != 5 {
		t.Fatalf("sanitized record must not alias caller memory: got=%v", out.Kills)
	}
}
