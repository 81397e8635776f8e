package rawmatch

import "context"

type Repository interface {
	Upsert(ctx context.Context, match Match) error
	GetByMatchID(ctx context.Context, matchID int64) (Match, bool, error)
}
