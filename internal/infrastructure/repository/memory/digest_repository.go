package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
)

type playerKey struct {
	matchID int64
	slot    int64
}

type DigestRepository struct {
	mu      sync.RWMutex
	matches map[int64]digest.MatchDigest
	players map[playerKey]digest.PlayerDigest
}

func NewDigestRepository() *DigestRepository {
	return &DigestRepository{
		matches: make(map[int64]digest.MatchDigest),
		players: make(map[playerKey]digest.PlayerDigest),
	}
}

func (r *DigestRepository) UpsertMatch(_ context.Context, match digest.MatchDigest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches[match.MatchID] = match
	return nil
}

func (r *DigestRepository) GetMatch(_ context.Context, matchID int64) (digest.MatchDigest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match, ok := r.matches[matchID]
	if !ok {
		return digest.MatchDigest{}, false, nil
	}
	return match, true, nil
}

func (r *DigestRepository) ReplacePlayers(_ context.Context, matchID int64, players []digest.PlayerDigest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.players {
		if key.matchID == matchID {
			delete(r.players, key)
		}
	}
	for _, player := range players {
		r.players[playerKey{matchID: player.MatchID, slot: player.PlayerSlot}] = player
	}
	return nil
}

func (r *DigestRepository) ListPlayersByMatch(_ context.Context, matchID int64) ([]digest.PlayerDigest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]digest.PlayerDigest, 0)
	for key, player := range r.players {
		if key.matchID == matchID {
			players = append(players, player)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].PlayerSlot < players[j].PlayerSlot
	})
	return players, nil
}

func (r *DigestRepository) GetPlayer(_ context.Context, matchID, playerSlot int64) (digest.PlayerDigest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.players[playerKey{matchID: matchID, slot: playerSlot}]
	if !ok {
		return digest.PlayerDigest{}, false, nil
	}
	return player, true, nil
}

func (r *DigestRepository) ListRecentByAccount(_ context.Context, accountID int64, limit int) ([]digest.PlayerMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]digest.PlayerMatch, 0)
	for key, player := range r.players {
		if player.AccountID == nil || *player.AccountID != accountID {
			continue
		}
		match, ok := r.matches[key.matchID]
		if !ok || !match.IncludedInCoaching {
			continue
		}
		rows = append(rows, digest.PlayerMatch{Match: match, Player: player})
	}
	sort.Slice(rows, func(i, j int) bool {
		left, right := rows[i].Match, rows[j].Match
		if left.StartTime != nil && right.StartTime != nil && !left.StartTime.Equal(*right.StartTime) {
			return left.StartTime.After(*right.StartTime)
		}
		return left.MatchID > right.MatchID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
