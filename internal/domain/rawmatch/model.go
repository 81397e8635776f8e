package rawmatch

import "time"

// Match is the provider payload exactly as fetched, decoded but not
// validated. Fields inside Payload may be missing or wrongly typed.
type Match struct {
	MatchID   int64
	Payload   map[string]any
	FetchedAt time.Time
}
