package digest

import "time"

// RadiantSlotLimit splits player slots into teams: slots below it are
// radiant, slots at or above it are dire. The slot is the only team
// signal the provider gives us.
const RadiantSlotLimit = 128

type ObjectiveSummary struct {
	Count int
	Types map[string]int
}

type TeamfightSummary struct {
	Count         int
	TotalDuration float64
}

type EconomySummary struct {
	RadiantTotalNetWorth float64
	DireTotalNetWorth    float64
	TotalGoldSpent       float64
	AverageGoldPerMin    float64
}

// MatchDigest is the canonical per-match record. MatchID and Duration
// are always set; optional provider fields stay nil when absent.
type MatchDigest struct {
	MatchID            int64
	Duration           int64
	StartTime          *time.Time
	RadiantWin         bool
	RadiantScore       *float64
	DireScore          *float64
	GameMode           *float64
	LobbyType          *float64
	Objectives         ObjectiveSummary
	Teamfights         TeamfightSummary
	Economy            EconomySummary
	IncludedInCoaching bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PlayerDigest is the canonical per-player record, keyed by
// (MatchID, PlayerSlot). Every numeric field is either a finite value
// or nil; every document field is either a JSON-clean map or nil.
type PlayerDigest struct {
	MatchID                int64
	PlayerSlot             int64
	AccountID              *int64
	HeroID                 int64
	Kills                  *float64
	Deaths                 *float64
	Assists                *float64
	GoldPerMin             *float64
	XPPerMin               *float64
	GoldSpent              *float64
	LastHits               *float64
	Denies                 *float64
	NetWorth               *float64
	HeroDamage             *float64
	TowerDamage            *float64
	DamageTaken            *float64
	TeamfightParticipation *float64
	KDA                    *float64
	KillParticipation      *float64
	Lane                   *float64
	LaneRole               *float64
	VisionScore            *float64
	Items                  map[string]any
	PositionMetrics        map[string]any
	KillsByHero            map[string]any
	DamageByTarget         map[string]any
}

func (p PlayerDigest) IsRadiant() bool {
	return p.PlayerSlot < RadiantSlotLimit
}

// PlayerMatch pairs a player row with its match, the unit the
// statistics rollup reads.
type PlayerMatch struct {
	Match  MatchDigest
	Player PlayerDigest
}
