package pipeline

import "context"

type Repository interface {
	Record(ctx context.Context, run Run) error
	GetByMatchID(ctx context.Context, matchID int64) (Run, bool, error)
}
