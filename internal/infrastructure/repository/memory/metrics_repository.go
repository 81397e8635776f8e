package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
)

type MetricsRepository struct {
	mu    sync.RWMutex
	items map[metrics.Key]metrics.MatchMetrics
}

func NewMetricsRepository() *MetricsRepository {
	return &MetricsRepository{items: make(map[metrics.Key]metrics.MatchMetrics)}
}

func (r *MetricsRepository) Upsert(_ context.Context, row metrics.MatchMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[metrics.Key{MatchID: row.MatchID, PlayerSlot: row.PlayerSlot}] = row
	return nil
}

func (r *MetricsRepository) GetByKey(_ context.Context, key metrics.Key) (metrics.MatchMetrics, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.items[key]
	if !ok {
		return metrics.MatchMetrics{}, false, nil
	}
	return row, true, nil
}

func (r *MetricsRepository) ListByKeys(_ context.Context, keys []metrics.Key) ([]metrics.MatchMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]metrics.MatchMetrics, 0, len(keys))
	for _, key := range keys {
		if row, ok := r.items[key]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
