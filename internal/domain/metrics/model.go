package metrics

import "time"

type PhaseKPI struct {
	KDA        float64
	GoldPerMin float64
	XPPerMin   float64
}

// MatchMetrics carries the four composite scores and the phase KPIs for
// one player in one match. Always re-derivable from the digests, never
// a source of truth.
type MatchMetrics struct {
	MatchID        int64
	PlayerSlot     int64
	Aggressiveness float64
	FarmEfficiency float64
	Macro          float64
	Survivability  float64
	Early          PhaseKPI
	Mid            PhaseKPI
	Late           PhaseKPI
	ComputedAt     time.Time
}

// Key identifies a metrics row by its composite key.
type Key struct {
	MatchID    int64
	PlayerSlot int64
}
