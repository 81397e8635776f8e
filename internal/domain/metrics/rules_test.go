package metrics

import "testing"

func TestScoreBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input ScoreInput
	}{
		{name: "all zero", input: ScoreInput{}},
		{
			name: "typical carry game",
			input: ScoreInput{
				DurationSeconds:   2400,
				Kills:             12,
				Deaths:            3,
				Assists:           8,
				KillParticipation: 0.7,
				HeroDamage:        28000,
				TowerDamage:       5200,
				DamageTaken:       21000,
				GoldPerMin:        620,
				XPPerMin:          710,
				LastHits:          310,
				Denies:            14,
				NetWorth:          24000,
			},
		},
		{
			name: "extreme damage",
			input: ScoreInput{
				DurationSeconds:   1800,
				HeroDamage:        10000000,
				KillParticipation: 1,
				TowerDamage:       9999999,
				NetWorth:          99999999,
				GoldPerMin:        99999,
				LastHits:          99999,
				Denies:            99999,
			},
		},
		{
			name: "feeding game",
			input: ScoreInput{
				DurationSeconds: 600,
				Deaths:          25,
				DamageTaken:     900000,
			},
		},
		{name: "zero duration with damage", input: ScoreInput{HeroDamage: 50000, Deaths: 10}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Score(tc.input)
			for name, score := range map[string]float64{
				"aggressiveness":  got.Aggressiveness,
				"farm_efficiency": got.FarmEfficiency,
				"macro":           got.Macro,
				"survivability":   got.Survivability,
			} {
				if score < 0 || score > 100 {
					t.Fatalf("%s out of bounds: got=%v", name, score)
				}
			}
		})
	}
}

func TestScoreFormulas(t *testing.T) {
	t.Parallel()

	got := Score(ScoreInput{
		DurationSeconds:   1800,
		Kills:             10,
		Deaths:            2,
		Assists:           5,
		KillParticipation: 1,
		HeroDamage:        15000,
		TowerDamage:       2000,
		DamageTaken:       10000,
		GoldPerMin:        300,
		XPPerMin:          400,
		LastHits:          100,
		Denies:            5,
		NetWorth:          12000,
	})

	// killPart*50 + (15000/30)/10 = 50 + 50 = 100
	if got.Aggressiveness != 100 {
		t.Fatalf("unexpected aggressiveness: got=%v want=100", got.Aggressiveness)
	}
	// 300/6 + 100/2 + 5*2 = 110 -> clamped to 100
	if got.FarmEfficiency != 100 {
		t.Fatalf("unexpected farm efficiency: got=%v want=100", got.FarmEfficiency)
	}
	// 2000/1000 + 12000/10000 = 3.2
	if diff := got.Macro - 3.2; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected macro: got=%v want=3.2", got.Macro)
	}
	// 100 - (2/30)*20 - 10000/10000 = 97.666...
	want := 100 - (2.0/30)*20 - 1
	if diff := got.Survivability - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected survivability: got=%v want=%v", got.Survivability, want)
	}
}

func TestScorePhaseKPIs(t *testing.T) {
	t.Parallel()

	got := Score(ScoreInput{
		DurationSeconds: 1800,
		Kills:           6,
		Assists:         4,
		GoldPerMin:      500,
		XPPerMin:        600,
	})

	// Same KDA approximation for all phases.
	wantKDA := 6 + 4.0/2
	for _, phase := range []PhaseKPI{got.Early, got.Mid, got.Late} {
		if phase.KDA != wantKDA {
			t.Fatalf("unexpected phase kda: got=%v want=%v", phase.KDA, wantKDA)
		}
	}

	if got.Early.GoldPerMin != 400 || got.Mid.GoldPerMin != 500 || got.Late.GoldPerMin != 600 {
		t.Fatalf("unexpected phase gpm: early=%v mid=%v late=%v", got.Early.GoldPerMin, got.Mid.GoldPerMin, got.Late.GoldPerMin)
	}
	if got.Early.XPPerMin != 480 || got.Mid.XPPerMin != 600 || got.Late.XPPerMin != 720 {
		t.Fatalf("unexpected phase xpm: early=%v mid=%v late=%v", got.Early.XPPerMin, got.Mid.XPPerMin, got.Late.XPPerMin)
	}
}
