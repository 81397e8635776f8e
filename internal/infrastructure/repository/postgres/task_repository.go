package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dota-coach/internal/domain/task"
	qb "github.com/riskibarqy/dota-coach/internal/platform/querybuilder"
)

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type taskTableModel struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	Category           string    `db:"category"`
	Title              string    `db:"title"`
	Description        string    `db:"description"`
	Status             string    `db:"status"`
	Priority           string    `db:"priority"`
	TargetValue        float64   `db:"target_value"`
	CurrentValue       float64   `db:"current_value"`
	ProgressPercentage float64   `db:"progress_percentage"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func taskToModel(t task.Task) taskTableModel {
	return taskTableModel{
		ID:                 t.ID,
		UserID:             t.UserID,
		Category:           string(t.Category),
		Title:              t.Title,
		Description:        t.Description,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		TargetValue:        t.TargetValue,
		CurrentValue:       t.CurrentValue,
		ProgressPercentage: t.ProgressPercentage,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func taskFromModel(row taskTableModel) task.Task {
	return task.Task{
		ID:                 row.ID,
		UserID:             row.UserID,
		Category:           task.Category(row.Category),
		Title:              row.Title,
		Description:        row.Description,
		Status:             task.Status(row.Status),
		Priority:           task.Priority(row.Priority),
		TargetValue:        row.TargetValue,
		CurrentValue:       row.CurrentValue,
		ProgressPercentage: row.ProgressPercentage,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func (r *TaskRepository) Insert(ctx context.Context, t task.Task) error {
	query, args, err := qb.InsertModel("coaching_tasks", taskToModel(t), "")
	if err != nil {
		return fmt.Errorf("build insert coaching task query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert coaching task id=%s: %w", t.ID, err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, t task.Task) error {
	query, args, err := qb.Update("coaching_tasks").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("status", string(t.Status)).
		Set("priority", string(t.Priority)).
		Set("target_value", t.TargetValue).
		Set("current_value", t.CurrentValue).
		Set("progress_percentage", t.ProgressPercentage).
		Set("updated_at", t.UpdatedAt).
		Where(qb.Eq("id", t.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update coaching task query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update coaching task id=%s: %w", t.ID, err)
	}
	return nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]task.Task, error) {
	query, args, err := qb.Select("*").From("coaching_tasks").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list coaching tasks query: %w", err)
	}
	return r.selectTasks(ctx, query, args, userID)
}

func (r *TaskRepository) ListByUserAndStatus(ctx context.Context, userID string, status task.Status) ([]task.Task, error) {
	query, args, err := qb.Select("*").From("coaching_tasks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("status", string(status)),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list coaching tasks by status query: %w", err)
	}
	return r.selectTasks(ctx, query, args, userID)
}

func (r *TaskRepository) CountByUserAndStatus(ctx context.Context, userID string, status task.Status) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("coaching_tasks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("status", string(status)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count coaching tasks query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count coaching tasks user_id=%s: %w", userID, err)
	}
	return count, nil
}

func (r *TaskRepository) selectTasks(ctx context.Context, query string, args []any, userID string) ([]task.Task, error) {
	var rows []taskTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list coaching tasks user_id=%s: %w", userID, err)
	}

	out := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, taskFromModel(row))
	}
	return out, nil
}
