package digest

import "context"

type Repository interface {
	UpsertMatch(ctx context.Context, match MatchDigest) error
	GetMatch(ctx context.Context, matchID int64) (MatchDigest, bool, error)
	// ReplacePlayers deletes every player row for the match before
	// inserting the new set, so slots that disappeared from the raw
	// match never linger.
	ReplacePlayers(ctx context.Context, matchID int64, players []PlayerDigest) error
	ListPlayersByMatch(ctx context.Context, matchID int64) ([]PlayerDigest, error)
	GetPlayer(ctx context.Context, matchID, playerSlot int64) (PlayerDigest, bool, error)
	// ListRecentByAccount returns the newest coaching-eligible
	// player-match pairs for the account, newest first, at most limit.
	ListRecentByAccount(ctx context.Context, accountID int64, limit int) ([]PlayerMatch, error)
}
