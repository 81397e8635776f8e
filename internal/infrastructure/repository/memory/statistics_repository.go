package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
)

type StatisticsRepository struct {
	mu    sync.RWMutex
	items map[string]statistics.UserStatistics
}

func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{items: make(map[string]statistics.UserStatistics)}
}

func (r *StatisticsRepository) Upsert(_ context.Context, stats statistics.UserStatistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[stats.UserID] = stats
	return nil
}

func (r *StatisticsRepository) GetByUserID(_ context.Context, userID string) (statistics.UserStatistics, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.items[userID]
	if !ok {
		return statistics.UserStatistics{}, false, nil
	}
	return stats, true, nil
}
