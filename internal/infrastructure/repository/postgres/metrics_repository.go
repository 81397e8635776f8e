package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
	qb "github.com/riskibarqy/dota-coach/internal/platform/querybuilder"
)

type MetricsRepository struct {
	db *sqlx.DB
}

func NewMetricsRepository(db *sqlx.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

type matchMetricsTableModel struct {
	MatchID        int64     `db:"match_id"`
	PlayerSlot     int64     `db:"player_slot"`
	Aggressiveness float64   `db:"aggressiveness"`
	FarmEfficiency float64   `db:"farm_efficiency"`
	Macro          float64   `db:"macro"`
	Survivability  float64   `db:"survivability"`
	EarlyKDA       float64   `db:"early_kda"`
	EarlyGPM       float64   `db:"early_gold_per_min"`
	EarlyXPM       float64   `db:"early_xp_per_min"`
	MidKDA         float64   `db:"mid_kda"`
	MidGPM         float64   `db:"mid_gold_per_min"`
	MidXPM         float64   `db:"mid_xp_per_min"`
	LateKDA        float64   `db:"late_kda"`
	LateGPM        float64   `db:"late_gold_per_min"`
	LateXPM        float64   `db:"late_xp_per_min"`
	ComputedAt     time.Time `db:"computed_at"`
}

func metricsToModel(row metrics.MatchMetrics) matchMetricsTableModel {
	return matchMetricsTableModel{
		MatchID:        row.MatchID,
		PlayerSlot:     row.PlayerSlot,
		Aggressiveness: row.Aggressiveness,
		FarmEfficiency: row.FarmEfficiency,
		Macro:          row.Macro,
		Survivability:  row.Survivability,
		EarlyKDA:       row.Early.KDA,
		EarlyGPM:       row.Early.GoldPerMin,
		EarlyXPM:       row.Early.XPPerMin,
		MidKDA:         row.Mid.KDA,
		MidGPM:         row.Mid.GoldPerMin,
		MidXPM:         row.Mid.XPPerMin,
		LateKDA:        row.Late.KDA,
		LateGPM:        row.Late.GoldPerMin,
		LateXPM:        row.Late.XPPerMin,
		ComputedAt:     row.ComputedAt,
	}
}

func metricsFromModel(row matchMetricsTableModel) metrics.MatchMetrics {
	return metrics.MatchMetrics{
		MatchID:        row.MatchID,
		PlayerSlot:     row.PlayerSlot,
		Aggressiveness: row.Aggressiveness,
		FarmEfficiency: row.FarmEfficiency,
		Macro:          row.Macro,
		Survivability:  row.Survivability,
		Early:          metrics.PhaseKPI{KDA: row.EarlyKDA, GoldPerMin: row.EarlyGPM, XPPerMin: row.EarlyXPM},
		Mid:            metrics.PhaseKPI{KDA: row.MidKDA, GoldPerMin: row.MidGPM, XPPerMin: row.MidXPM},
		Late:           metrics.PhaseKPI{KDA: row.LateKDA, GoldPerMin: row.LateGPM, XPPerMin: row.LateXPM},
		ComputedAt:     row.ComputedAt,
	}
}

func (r *MetricsRepository) Upsert(ctx context.Context, row metrics.MatchMetrics) error {
	query, args, err := qb.InsertModel("match_metrics", metricsToModel(row), `ON CONFLICT (match_id, player_slot)
DO UPDATE SET
    aggressiveness = EXCLUDED.aggressiveness,
    farm_efficiency = EXCLUDED.farm_efficiency,
    macro = EXCLUDED.macro,
    survivability = EXCLUDED.survivability,
    early_kda = EXCLUDED.early_kda,
    early_gold_per_min = EXCLUDED.early_gold_per_min,
    early_xp_per_min = EXCLUDED.early_xp_per_min,
    mid_kda = EXCLUDED.mid_kda,
    mid_gold_per_min = EXCLUDED.mid_gold_per_min,
    mid_xp_per_min = EXCLUDED.mid_xp_per_min,
    late_kda = EXCLUDED.late_kda,
    late_gold_per_min = EXCLUDED.late_gold_per_min,
    late_xp_per_min = EXCLUDED.late_xp_per_min,
    computed_at = EXCLUDED.computed_at`)
	if err != nil {
		return fmt.Errorf("build upsert match metrics query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match metrics match_id=%d slot=%d: %w", row.MatchID, row.PlayerSlot, err)
	}
	return nil
}

func (r *MetricsRepository) GetByKey(ctx context.Context, key metrics.Key) (metrics.MatchMetrics, bool, error) {
	query, args, err := qb.Select("*").From("match_metrics").
		Where(
			qb.Eq("match_id", key.MatchID),
			qb.Eq("player_slot", key.PlayerSlot),
		).
		ToSQL()
	if err != nil {
		return metrics.MatchMetrics{}, false, fmt.Errorf("build get match metrics query: %w", err)
	}

	var row matchMetricsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return metrics.MatchMetrics{}, false, nil
		}
		return metrics.MatchMetrics{}, false, fmt.Errorf("get match metrics match_id=%d slot=%d: %w", key.MatchID, key.PlayerSlot, err)
	}
	return metricsFromModel(row), true, nil
}

func (r *MetricsRepository) ListByKeys(ctx context.Context, keys []metrics.Key) ([]metrics.MatchMetrics, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	tuples := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		tuples = append(tuples, "(?, ?)")
		args = append(args, key.MatchID, key.PlayerSlot)
	}
	keyFilter := qb.Expr("(match_id, player_slot) IN ("+strings.Join(tuples, ", ")+")", args...)

	query, queryArgs, err := qb.Select("*").From("match_metrics").
		Where(keyFilter).
		OrderBy("match_id", "player_slot").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match metrics query: %w", err)
	}

	var rows []matchMetricsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, queryArgs...); err != nil {
		return nil, fmt.Errorf("list match metrics by keys: %w", err)
	}

	out := make([]metrics.MatchMetrics, 0, len(rows))
	for _, row := range rows {
		out = append(out, metricsFromModel(row))
	}
	return out, nil
}
