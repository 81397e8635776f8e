package metrics

import "context"

type Repository interface {
	Upsert(ctx context.Context, m MatchMetrics) error
	GetByKey(ctx context.Context, key Key) (MatchMetrics, bool, error)
	ListByKeys(ctx context.Context, keys []Key) ([]MatchMetrics, error)
}
