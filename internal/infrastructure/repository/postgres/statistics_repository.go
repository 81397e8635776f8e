package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	qb "github.com/riskibarqy/dota-coach/internal/platform/querybuilder"
)

type StatisticsRepository struct {
	db *sqlx.DB
}

func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

type userStatisticsTableModel struct {
	UserID            string    `db:"user_id"`
	MatchesAnalyzed   int       `db:"matches_analyzed"`
	WinRate           float64   `db:"win_rate"`
	AvgKDA            float64   `db:"avg_kda"`
	AvgGoldPerMin     float64   `db:"avg_gold_per_min"`
	AvgXPPerMin       float64   `db:"avg_xp_per_min"`
	AvgAggressiveness float64   `db:"avg_aggressiveness"`
	AvgFarmEfficiency float64   `db:"avg_farm_efficiency"`
	AvgMacro          float64   `db:"avg_macro"`
	AvgSurvivability  float64   `db:"avg_survivability"`
	ActiveTasks       int       `db:"active_tasks"`
	CompletedTasks    int       `db:"completed_tasks"`
	WeeklyProgress    float64   `db:"weekly_progress"`
	LastCalculatedAt  time.Time `db:"last_calculated_at"`
}

func (r *StatisticsRepository) Upsert(ctx context.Context, stats statistics.UserStatistics) error {
	insertModel := userStatisticsTableModel{
		UserID:            stats.UserID,
		MatchesAnalyzed:   stats.MatchesAnalyzed,
		WinRate:           stats.WinRate,
		AvgKDA:            stats.AvgKDA,
		AvgGoldPerMin:     stats.AvgGoldPerMin,
		AvgXPPerMin:       stats.AvgXPPerMin,
		AvgAggressiveness: stats.AvgAggressiveness,
		AvgFarmEfficiency: stats.AvgFarmEfficiency,
		AvgMacro:          stats.AvgMacro,
		AvgSurvivability:  stats.AvgSurvivability,
		ActiveTasks:       stats.ActiveTasks,
		CompletedTasks:    stats.CompletedTasks,
		WeeklyProgress:    stats.WeeklyProgress,
		LastCalculatedAt:  stats.LastCalculatedAt,
	}

	query, args, err := qb.InsertModel("user_statistics", insertModel, `ON CONFLICT (user_id)
DO UPDATE SET
    matches_analyzed = EXCLUDED.matches_analyzed,
    win_rate = EXCLUDED.win_rate,
    avg_kda = EXCLUDED.avg_kda,
    avg_gold_per_min = EXCLUDED.avg_gold_per_min,
    avg_xp_per_min = EXCLUDED.avg_xp_per_min,
    avg_aggressiveness = EXCLUDED.avg_aggressiveness,
    avg_farm_efficiency = EXCLUDED.avg_farm_efficiency,
    avg_macro = EXCLUDED.avg_macro,
    avg_survivability = EXCLUDED.avg_survivability,
    active_tasks = EXCLUDED.active_tasks,
    completed_tasks = EXCLUDED.completed_tasks,
    weekly_progress = EXCLUDED.weekly_progress,
    last_calculated_at = EXCLUDED.last_calculated_at`)
	if err != nil {
		return fmt.Errorf("build upsert user statistics query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user statistics user_id=%s: %w", stats.UserID, err)
	}
	return nil
}

func (r *StatisticsRepository) GetByUserID(ctx context.Context, userID string) (statistics.UserStatistics, bool, error) {
	query, args, err := qb.Select("*").From("user_statistics").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return statistics.UserStatistics{}, false, fmt.Errorf("build get user statistics query: %w", err)
	}

	var row userStatisticsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return statistics.UserStatistics{}, false, nil
		}
		return statistics.UserStatistics{}, false, fmt.Errorf("get user statistics user_id=%s: %w", userID, err)
	}

	return statistics.UserStatistics{
		UserID:            row.UserID,
		MatchesAnalyzed:   row.MatchesAnalyzed,
		WinRate:           row.WinRate,
		AvgKDA:            row.AvgKDA,
		AvgGoldPerMin:     row.AvgGoldPerMin,
		AvgXPPerMin:       row.AvgXPPerMin,
		AvgAggressiveness: row.AvgAggressiveness,
		AvgFarmEfficiency: row.AvgFarmEfficiency,
		AvgMacro:          row.AvgMacro,
		AvgSurvivability:  row.AvgSurvivability,
		ActiveTasks:       row.ActiveTasks,
		CompletedTasks:    row.CompletedTasks,
		WeeklyProgress:    row.WeeklyProgress,
		LastCalculatedAt:  row.LastCalculatedAt,
	}, true, nil
}
