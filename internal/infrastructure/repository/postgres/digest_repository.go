package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	qb "github.com/riskibarqy/dota-coach/internal/platform/querybuilder"
)

type DigestRepository struct {
	db *sqlx.DB
}

func NewDigestRepository(db *sqlx.DB) *DigestRepository {
	return &DigestRepository{db: db}
}

type matchDigestInsertModel struct {
	MatchID            int64           `db:"match_id"`
	Duration           int64           `db:"duration"`
	StartTime          *time.Time      `db:"start_time"`
	RadiantWin         bool            `db:"radiant_win"`
	RadiantScore       sql.NullFloat64 `db:"radiant_score"`
	DireScore          sql.NullFloat64 `db:"dire_score"`
	GameMode           sql.NullFloat64 `db:"game_mode"`
	LobbyType          sql.NullFloat64 `db:"lobby_type"`
	Objectives         string          `db:"objectives"`
	Teamfights         string          `db:"teamfights"`
	Economy            string          `db:"economy"`
	IncludedInCoaching bool            `db:"included_in_coaching"`
}

func (r *DigestRepository) UpsertMatch(ctx context.Context, match digest.MatchDigest) error {
	insertModel := matchDigestInsertModel{
		MatchID:      match.MatchID,
		Duration:     match.Duration,
		StartTime:    match.StartTime,
		RadiantWin:   match.RadiantWin,
		RadiantScore: nullableFloat(match.RadiantScore),
		DireScore:    nullableFloat(match.DireScore),
		GameMode:     nullableFloat(match.GameMode),
		LobbyType:    nullableFloat(match.LobbyType),
		Objectives: encodeJSONDoc(objectiveSummaryDoc{
			Count: match.Objectives.Count,
			Types: match.Objectives.Types,
		}),
		Teamfights: encodeJSONDoc(teamfightSummaryDoc{
			Count:         match.Teamfights.Count,
			TotalDuration: match.Teamfights.TotalDuration,
		}),
		Economy: encodeJSONDoc(economySummaryDoc{
			RadiantTotalNetWorth: match.Economy.RadiantTotalNetWorth,
			DireTotalNetWorth:    match.Economy.DireTotalNetWorth,
			TotalGoldSpent:       match.Economy.TotalGoldSpent,
			AverageGoldPerMin:    match.Economy.AverageGoldPerMin,
		}),
		IncludedInCoaching: match.IncludedInCoaching,
	}

	query, args, err := qb.InsertModel("match_digests", insertModel, `ON CONFLICT (match_id)
DO UPDATE SET
    duration = EXCLUDED.duration,
    start_time = EXCLUDED.start_time,
    radiant_win = EXCLUDED.radiant_win,
    radiant_score = EXCLUDED.radiant_score,
    dire_score = EXCLUDED.dire_score,
    game_mode = EXCLUDED.game_mode,
    lobby_type = EXCLUDED.lobby_type,
    objectives = EXCLUDED.objectives,
    teamfights = EXCLUDED.teamfights,
    economy = EXCLUDED.economy,
    included_in_coaching = EXCLUDED.included_in_coaching,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert match digest query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match digest match_id=%d: %w", match.MatchID, err)
	}
	return nil
}

func (r *DigestRepository) GetMatch(ctx context.Context, matchID int64) (digest.MatchDigest, bool, error) {
	query, args, err := qb.Select("*").From("match_digests").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return digest.MatchDigest{}, false, fmt.Errorf("build get match digest query: %w", err)
	}

	var row matchDigestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return digest.MatchDigest{}, false, nil
		}
		return digest.MatchDigest{}, false, fmt.Errorf("get match digest match_id=%d: %w", matchID, err)
	}
	return matchDigestFromRow(row), true, nil
}

// ReplacePlayers swaps the full player set of a match in one
// transaction, so re-imports never leave stale slots behind.
func (r *DigestRepository) ReplacePlayers(ctx context.Context, matchID int64, players []digest.PlayerDigest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace player digests: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM player_digests WHERE match_id = $1", matchID); err != nil {
		return fmt.Errorf("delete player digests match_id=%d: %w", matchID, err)
	}

	for _, player := range players {
		query, args, err := qb.InsertModel("player_digests", playerDigestToModel(player), "")
		if err != nil {
			return fmt.Errorf("build insert player digest query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player digest match_id=%d slot=%d: %w", matchID, player.PlayerSlot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace player digests tx: %w", err)
	}
	return nil
}

func (r *DigestRepository) ListPlayersByMatch(ctx context.Context, matchID int64) ([]digest.PlayerDigest, error) {
	query, args, err := qb.Select("*").From("player_digests").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("player_slot").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player digests query: %w", err)
	}

	var rows []playerDigestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player digests match_id=%d: %w", matchID, err)
	}

	out := make([]digest.PlayerDigest, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerDigestFromModel(row))
	}
	return out, nil
}

func (r *DigestRepository) GetPlayer(ctx context.Context, matchID, playerSlot int64) (digest.PlayerDigest, bool, error) {
	query, args, err := qb.Select("*").From("player_digests").
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("player_slot", playerSlot),
		).
		ToSQL()
	if err != nil {
		return digest.PlayerDigest{}, false, fmt.Errorf("build get player digest query: %w", err)
	}

	var row playerDigestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.getPlayerSingleParam(ctx, matchID, playerSlot)
		}
		if isNotFound(err) {
			return digest.PlayerDigest{}, false, nil
		}
		return digest.PlayerDigest{}, false, fmt.Errorf("get player digest match_id=%d slot=%d: %w", matchID, playerSlot, err)
	}
	return playerDigestFromModel(row), true, nil
}

func (r *DigestRepository) getPlayerSingleParam(ctx context.Context, matchID, playerSlot int64) (digest.PlayerDigest, bool, error) {
	query, _, err := qb.Select("*").From("player_digests").
		Where(
			qb.Expr("match_id = ($1::bigint[])[1]"),
			qb.Expr("player_slot = ($1::bigint[])[2]"),
		).
		ToSQL()
	if err != nil {
		return digest.PlayerDigest{}, false, fmt.Errorf("build get player digest single param fallback query: %w", err)
	}

	var row playerDigestTableModel
	if err := r.db.GetContext(ctx, &row, query, pq.Array([]int64{matchID, playerSlot})); err != nil {
		if isUnnamedPreparedStatementMissing(err) {
			return r.getPlayerLiteral(ctx, matchID, playerSlot)
		}
		if isNotFound(err) {
			return digest.PlayerDigest{}, false, nil
		}
		return digest.PlayerDigest{}, false, fmt.Errorf("get player digest fallback match_id=%d slot=%d: %w", matchID, playerSlot, err)
	}
	return playerDigestFromModel(row), true, nil
}

func (r *DigestRepository) getPlayerLiteral(ctx context.Context, matchID, playerSlot int64) (digest.PlayerDigest, bool, error) {
	query, args, err := qb.Select("*").From("player_digests").
		Where(
			qb.EqLiteral("match_id", strconv.FormatInt(matchID, 10)),
			qb.EqLiteral("player_slot", strconv.FormatInt(playerSlot, 10)),
		).
		ToSQL()
	if err != nil {
		return digest.PlayerDigest{}, false, fmt.Errorf("build get player digest literal fallback query: %w", err)
	}

	var row playerDigestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return digest.PlayerDigest{}, false, nil
		}
		return digest.PlayerDigest{}, false, fmt.Errorf("get player digest literal fallback match_id=%d slot=%d: %w", matchID, playerSlot, err)
	}
	return playerDigestFromModel(row), true, nil
}

func (r *DigestRepository) ListRecentByAccount(ctx context.Context, accountID int64, limit int) ([]digest.PlayerMatch, error) {
	query, args, err := qb.Select(
		"pd.*",
		"md.duration AS md_duration",
		"md.start_time AS md_start_time",
		"md.radiant_win AS md_radiant_win",
		"md.included_in_coaching AS md_included_in_coaching",
		"md.game_mode AS md_game_mode",
	).
		From("player_digests pd JOIN match_digests md ON md.match_id = pd.match_id").
		Where(
			qb.Eq("pd.account_id", accountID),
			qb.Expr("md.included_in_coaching"),
		).
		OrderBy("md.start_time DESC NULLS LAST", "md.match_id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent matches query: %w", err)
	}

	var rows []playerMatchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list recent matches account_id=%d: %w", accountID, err)
	}

	out := make([]digest.PlayerMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, digest.PlayerMatch{
			Match: digest.MatchDigest{
				MatchID:            row.MatchID,
				Duration:           row.MatchDuration,
				StartTime:          row.MatchStartTime,
				RadiantWin:         row.MatchRadiantWin,
				GameMode:           floatFromNull(row.MatchGameMode),
				IncludedInCoaching: row.MatchIncluded,
			},
			Player: playerDigestFromModel(row.playerDigestTableModel),
		})
	}
	return out, nil
}
