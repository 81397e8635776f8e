package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
	qb "github.com/riskibarqy/dota-coach/internal/platform/querybuilder"
)

type PipelineRepository struct {
	db *sqlx.DB
}

func NewPipelineRepository(db *sqlx.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

type pipelineRunTableModel struct {
	MatchID   int64     `db:"match_id"`
	UserID    string    `db:"user_id"`
	Stage     string    `db:"stage"`
	Status    string    `db:"status"`
	Reason    string    `db:"reason"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *PipelineRepository) Record(ctx context.Context, run pipeline.Run) error {
	insertModel := pipelineRunTableModel{
		MatchID:   run.MatchID,
		UserID:    run.UserID,
		Stage:     string(run.Stage),
		Status:    string(run.Status),
		Reason:    run.Reason,
		UpdatedAt: run.UpdatedAt,
	}

	query, args, err := qb.InsertModel("pipeline_runs", insertModel, `ON CONFLICT (match_id)
DO UPDATE SET
    user_id = EXCLUDED.user_id,
    stage = EXCLUDED.stage,
    status = EXCLUDED.status,
    reason = EXCLUDED.reason,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build record pipeline run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record pipeline run match_id=%d: %w", run.MatchID, err)
	}
	return nil
}

func (r *PipelineRepository) GetByMatchID(ctx context.Context, matchID int64) (pipeline.Run, bool, error) {
	query, args, err := qb.Select("*").From("pipeline_runs").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return pipeline.Run{}, false, fmt.Errorf("build get pipeline run query: %w", err)
	}

	var row pipelineRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pipeline.Run{}, false, nil
		}
		return pipeline.Run{}, false, fmt.Errorf("get pipeline run match_id=%d: %w", matchID, err)
	}

	return pipeline.Run{
		MatchID:   row.MatchID,
		UserID:    row.UserID,
		Stage:     pipeline.Stage(row.Stage),
		Status:    pipeline.Status(row.Status),
		Reason:    row.Reason,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}
