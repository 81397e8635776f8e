package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/dota-coach/internal/domain/rawmatch"
)

type RawMatchRepository struct {
	mu    sync.RWMutex
	items map[int64]rawmatch.Match
}

func NewRawMatchRepository() *RawMatchRepository {
	return &RawMatchRepository{items: make(map[int64]rawmatch.Match)}
}

func (r *RawMatchRepository) Upsert(_ context.Context, match rawmatch.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[match.MatchID] = match
	return nil
}

func (r *RawMatchRepository) GetByMatchID(_ context.Context, matchID int64) (rawmatch.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match, ok := r.items[matchID]
	if !ok {
		return rawmatch.Match{}, false, nil
	}
	return match, true, nil
}
