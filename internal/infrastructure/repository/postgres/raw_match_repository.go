package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dota-coach/internal/domain/rawmatch"
	qb "github.com/riskibarqy/dota-coach/internal/platform/querybuilder"
)

type RawMatchRepository struct {
	db *sqlx.DB
}

func NewRawMatchRepository(db *sqlx.DB) *RawMatchRepository {
	return &RawMatchRepository{db: db}
}

type rawMatchInsertModel struct {
	MatchID   int64     `db:"match_id"`
	Payload   string    `db:"payload"`
	FetchedAt time.Time `db:"fetched_at"`
}

type rawMatchTableModel struct {
	MatchID   int64     `db:"match_id"`
	Payload   string    `db:"payload"`
	FetchedAt time.Time `db:"fetched_at"`
}

func (r *RawMatchRepository) Upsert(ctx context.Context, match rawmatch.Match) error {
	payload, err := sonic.Marshal(match.Payload)
	if err != nil {
		return fmt.Errorf("encode raw match payload match_id=%d: %w", match.MatchID, err)
	}

	insertModel := rawMatchInsertModel{
		MatchID:   match.MatchID,
		Payload:   string(payload),
		FetchedAt: match.FetchedAt,
	}
	query, args, err := qb.InsertModel("raw_matches", insertModel, `ON CONFLICT (match_id)
DO UPDATE SET
    payload = EXCLUDED.payload,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build upsert raw match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert raw match match_id=%d: %w", match.MatchID, err)
	}
	return nil
}

func (r *RawMatchRepository) GetByMatchID(ctx context.Context, matchID int64) (rawmatch.Match, bool, error) {
	query, args, err := qb.Select("*").From("raw_matches").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return rawmatch.Match{}, false, fmt.Errorf("build get raw match query: %w", err)
	}

	var row rawMatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rawmatch.Match{}, false, nil
		}
		return rawmatch.Match{}, false, fmt.Errorf("get raw match match_id=%d: %w", matchID, err)
	}

	payload := make(map[string]any)
	if err := sonic.Unmarshal([]byte(row.Payload), &payload); err != nil {
		return rawmatch.Match{}, false, fmt.Errorf("decode raw match payload match_id=%d: %w", matchID, err)
	}

	return rawmatch.Match{
		MatchID:   row.MatchID,
		Payload:   payload,
		FetchedAt: row.FetchedAt,
	}, true, nil
}
