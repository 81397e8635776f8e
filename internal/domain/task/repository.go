package task

import "context"

type Repository interface {
	Insert(ctx context.Context, t Task) error
	Update(ctx context.Context, t Task) error
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	ListByUserAndStatus(ctx context.Context, userID string, status Status) ([]Task, error)
	CountByUserAndStatus(ctx context.Context, userID string, status Status) (int, error)
}
