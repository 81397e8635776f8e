package statistics

import "context"

type Repository interface {
	Upsert(ctx context.Context, stats UserStatistics) error
	GetByUserID(ctx context.Context, userID string) (UserStatistics, bool, error)
}
