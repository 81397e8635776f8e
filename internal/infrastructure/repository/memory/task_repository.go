package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/dota-coach/internal/domain/task"
)

type TaskRepository struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{items: make(map[string]task.Task)}
}

func (r *TaskRepository) Insert(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[t.ID] = t
	return nil
}

func (r *TaskRepository) Update(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[t.ID] = t
	return nil
}

func (r *TaskRepository) ListByUser(_ context.Context, userID string) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(t task.Task) bool { return t.UserID == userID }), nil
}

func (r *TaskRepository) ListByUserAndStatus(_ context.Context, userID string, status task.Status) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(t task.Task) bool { return t.UserID == userID && t.Status == status }), nil
}

func (r *TaskRepository) CountByUserAndStatus(_ context.Context, userID string, status task.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, t := range r.items {
		if t.UserID == userID && t.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *TaskRepository) collect(keep func(task.Task) bool) []task.Task {
	tasks := make([]task.Task, 0)
	for _, t := range r.items {
		if keep(t) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}
