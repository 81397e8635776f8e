package pipeline

import "time"

type Stage string

const (
	StageFetched         Stage = "fetched"
	StageDigested        Stage = "digested"
	StagePersisted       Stage = "persisted"
	StageMetricsComputed Stage = "metrics_computed"
	StageAggregated      Stage = "aggregated"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run records how far a match import got. One row per match id,
// replaced on every stage transition.
type Run struct {
	MatchID   int64
	UserID    string
	Stage     Stage
	Status    Status
	Reason    string
	UpdatedAt time.Time
}
