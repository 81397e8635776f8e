package statistics

import "time"

// UserStatistics is the rolling rollup over the user's most recent
// coaching-eligible matches. Replaced in place on every recalculation,
// never appended.
type UserStatistics struct {
	UserID             string
	MatchesAnalyzed    int
	WinRate            float64
	AvgKDA             float64
	AvgGoldPerMin      float64
	AvgXPPerMin        float64
	AvgAggressiveness  float64
	AvgFarmEfficiency  float64
	AvgMacro           float64
	AvgSurvivability   float64
	ActiveTasks        int
	CompletedTasks     int
	WeeklyProgress     float64
	LastCalculatedAt   time.Time
}
