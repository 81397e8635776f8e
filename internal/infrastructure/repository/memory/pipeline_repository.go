package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
)

type PipelineRepository struct {
	mu    sync.RWMutex
	items map[int64]pipeline.Run
}

func NewPipelineRepository() *PipelineRepository {
	return &PipelineRepository{items: make(map[int64]pipeline.Run)}
}

func (r *PipelineRepository) Record(_ context.Context, run pipeline.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[run.MatchID] = run
	return nil
}

func (r *PipelineRepository) GetByMatchID(_ context.Context, matchID int64) (pipeline.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.items[matchID]
	if !ok {
		return pipeline.Run{}, false, nil
	}
	return run, true, nil
}
