package metrics

// ScoreInput holds the numeric view of one player-match. Absent digest
// values are passed as 0; KillParticipation is a fraction in [0,1].
type ScoreInput struct {
	DurationSeconds   float64
	Kills             float64
	Deaths            float64
	Assists           float64
	KillParticipation float64
	HeroDamage        float64
	TowerDamage       float64
	DamageTaken       float64
	GoldPerMin        float64
	XPPerMin          float64
	LastHits          float64
	Denies            float64
	NetWorth          float64
}

// Phase multipliers are a placeholder heuristic scaled off the match
// average until the provider exposes true time-bucketed numbers.
const (
	earlyPhaseFactor = 0.8
	midPhaseFactor   = 1.0
	latePhaseFactor  = 1.2
)

// Score derives the composite scores and phase KPIs. Pure and total:
// any non-negative input yields scores inside [0,100].
func Score(in ScoreInput) MatchMetrics {
	minutes := in.DurationSeconds / 60

	damagePerMin := 0.0
	deathsPerMin := 0.0
	if minutes > 0 {
		damagePerMin = in.HeroDamage / minutes
		deathsPerMin = in.Deaths / minutes
	}

	aggressiveness := in.KillParticipation*50 + damagePerMin/10
	farmEfficiency := in.GoldPerMin/6 + in.LastHits/2 + in.Denies*2
	macro := in.TowerDamage/1000 + in.NetWorth/10000
	survivability := 100 - deathsPerMin*20 - in.DamageTaken/10000

	phaseKDA := in.Kills + in.Assists/2

	return MatchMetrics{
		Aggressiveness: clampScore(aggressiveness),
		FarmEfficiency: clampScore(farmEfficiency),
		Macro:          clampScore(macro),
		Survivability:  clampScore(survivability),
		Early:          phaseKPI(phaseKDA, in, earlyPhaseFactor),
		Mid:            phaseKPI(phaseKDA, in, midPhaseFactor),
		Late:           phaseKPI(phaseKDA, in, latePhaseFactor),
	}
}

func phaseKPI(kda float64, in ScoreInput, factor float64) PhaseKPI {
	return PhaseKPI{
		KDA:        kda,
		GoldPerMin: in.GoldPerMin * factor,
		XPPerMin:   in.XPPerMin * factor,
	}
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
