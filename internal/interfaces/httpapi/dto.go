package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/metrics"
	"github.com/riskibarqy/dota-coach/internal/domain/pipeline"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/domain/task"
	"github.com/riskibarqy/dota-coach/internal/usecase"
)

type objectiveSummaryDTO struct {
	Count int            `json:"count"`
	Types map[string]int `json:"types,omitempty"`
}

type teamfightSummaryDTO struct {
	Count         int     `json:"count"`
	TotalDuration float64 `json:"total_duration"`
}

type economySummaryDTO struct {
	RadiantTotalNetWorth float64 `json:"radiant_total_net_worth"`
	DireTotalNetWorth    float64 `json:"dire_total_net_worth"`
	TotalGoldSpent       float64 `json:"total_gold_spent"`
	AverageGoldPerMin    float64 `json:"average_gold_per_min"`
}

type matchDigestDTO struct {
	MatchID            int64               `json:"match_id"`
	Duration           int64               `json:"duration"`
	StartTime          string              `json:"start_time,omitempty"`
	RadiantWin         bool                `json:"radiant_win"`
	RadiantScore       *float64            `json:"radiant_score,omitempty"`
	DireScore          *float64            `json:"dire_score,omitempty"`
	GameMode           *float64            `json:"game_mode,omitempty"`
	LobbyType          *float64            `json:"lobby_type,omitempty"`
	Objectives         objectiveSummaryDTO `json:"objectives"`
	Teamfights         teamfightSummaryDTO `json:"teamfights"`
	Economy            economySummaryDTO   `json:"economy"`
	IncludedInCoaching bool                `json:"included_in_coaching"`
	UpdatedAt          string              `json:"updated_at,omitempty"`
}

type playerDigestDTO struct {
	MatchID                int64          `json:"match_id"`
	PlayerSlot             int64          `json:"player_slot"`
	IsRadiant              bool           `json:"is_radiant"`
	AccountID              *int64         `json:"account_id,omitempty"`
	HeroID                 int64          `json:"hero_id"`
	Kills                  *float64       `json:"kills,omitempty"`
	Deaths                 *float64       `json:"deaths,omitempty"`
	Assists                *float64       `json:"assists,omitempty"`
	GoldPerMin             *float64       `json:"gold_per_min,omitempty"`
	XPPerMin               *float64       `json:"xp_per_min,omitempty"`
	GoldSpent              *float64       `json:"gold_spent,omitempty"`
	LastHits               *float64       `json:"last_hits,omitempty"`
	Denies                 *float64       `json:"denies,omitempty"`
	NetWorth               *float64       `json:"net_worth,omitempty"`
	HeroDamage             *float64       `json:"hero_damage,omitempty"`
	TowerDamage            *float64       `json:"tower_damage,omitempty"`
	DamageTaken            *float64       `json:"damage_taken,omitempty"`
	TeamfightParticipation *float64       `json:"teamfight_participation,omitempty"`
	KDA                    *float64       `json:"kda,omitempty"`
	KillParticipation      *float64       `json:"kill_participation,omitempty"`
	Lane                   *float64       `json:"lane,omitempty"`
	LaneRole               *float64       `json:"lane_role,omitempty"`
	VisionScore            *float64       `json:"vision_score,omitempty"`
	Items                  map[string]any `json:"items,omitempty"`
	PositionMetrics        map[string]any `json:"position_metrics,omitempty"`
	KillsByHero            map[string]any `json:"kills_by_hero,omitempty"`
	DamageByTarget         map[string]any `json:"damage_by_target,omitempty"`
}

type matchDetailsDTO struct {
	Match   matchDigestDTO    `json:"match"`
	Players []playerDigestDTO `json:"players"`
}

type phaseKPIDTO struct {
	KDA        float64 `json:"kda"`
	GoldPerMin float64 `json:"gold_per_min"`
	XPPerMin   float64 `json:"xp_per_min"`
}

type matchMetricsDTO struct {
	MatchID        int64       `json:"match_id"`
	PlayerSlot     int64       `json:"player_slot"`
	Aggressiveness float64     `json:"aggressiveness"`
	FarmEfficiency float64     `json:"farm_efficiency"`
	Macro          float64     `json:"macro"`
	Survivability  float64     `json:"survivability"`
	Early          phaseKPIDTO `json:"early"`
	Mid            phaseKPIDTO `json:"mid"`
	Late           phaseKPIDTO `json:"late"`
	ComputedAt     string      `json:"computed_at"`
}

type userStatisticsDTO struct {
	UserID            string  `json:"user_id"`
	MatchesAnalyzed   int     `json:"matches_analyzed"`
	WinRate           float64 `json:"win_rate"`
	AvgKDA            float64 `json:"avg_kda"`
	AvgGoldPerMin     float64 `json:"avg_gold_per_min"`
	AvgXPPerMin       float64 `json:"avg_xp_per_min"`
	AvgAggressiveness float64 `json:"avg_aggressiveness"`
	AvgFarmEfficiency float64 `json:"avg_farm_efficiency"`
	AvgMacro          float64 `json:"avg_macro"`
	AvgSurvivability  float64 `json:"avg_survivability"`
	ActiveTasks       int     `json:"active_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	WeeklyProgress    float64 `json:"weekly_progress"`
	LastCalculatedAt  string  `json:"last_calculated_at"`
}

type taskDTO struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"user_id"`
	Category           string  `json:"category"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Status             string  `json:"status"`
	Priority           string  `json:"priority"`
	TargetValue        float64 `json:"target_value"`
	CurrentValue       float64 `json:"current_value"`
	ProgressPercentage float64 `json:"progress_percentage"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type pipelineRunDTO struct {
	MatchID   int64  `json:"match_id"`
	UserID    string `json:"user_id,omitempty"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type dashboardDTO struct {
	Statistics  userStatisticsDTO `json:"statistics"`
	ActiveTasks []taskDTO         `json:"active_tasks"`
	FocusArea   string            `json:"focus_area,omitempty"`
}

func matchDigestToDTO(ctx context.Context, v digest.MatchDigest) matchDigestDTO {
	_, span := startSpan(ctx, "httpapi.matchDigestToDTO")
	defer span.End()

	return matchDigestDTO{
		MatchID:      v.MatchID,
		Duration:     v.Duration,
		StartTime:    formatOptionalTime(v.StartTime),
		RadiantWin:   v.RadiantWin,
		RadiantScore: v.RadiantScore,
		DireScore:    v.DireScore,
		GameMode:     v.GameMode,
		LobbyType:    v.LobbyType,
		Objectives: objectiveSummaryDTO{
			Count: v.Objectives.Count,
			Types: v.Objectives.Types,
		},
		Teamfights: teamfightSummaryDTO{
			Count:         v.Teamfights.Count,
			TotalDuration: v.Teamfights.TotalDuration,
		},
		Economy: economySummaryDTO{
			RadiantTotalNetWorth: v.Economy.RadiantTotalNetWorth,
			DireTotalNetWorth:    v.Economy.DireTotalNetWorth,
			TotalGoldSpent:       v.Economy.TotalGoldSpent,
			AverageGoldPerMin:    v.Economy.AverageGoldPerMin,
		},
		IncludedInCoaching: v.IncludedInCoaching,
		UpdatedAt:          formatTime(v.UpdatedAt),
	}
}

func playerDigestToDTO(ctx context.Context, v digest.PlayerDigest) playerDigestDTO {
	_, span := startSpan(ctx, "httpapi.playerDigestToDTO")
	defer span.End()

	return playerDigestDTO{
		MatchID:                v.MatchID,
		PlayerSlot:             v.PlayerSlot,
		IsRadiant:              v.IsRadiant(),
		AccountID:              v.AccountID,
		HeroID:                 v.HeroID,
		Kills:                  v.Kills,
		Deaths:                 v.Deaths,
		Assists:                v.Assists,
		GoldPerMin:             v.GoldPerMin,
		XPPerMin:               v.XPPerMin,
		GoldSpent:              v.GoldSpent,
		LastHits:               v.LastHits,
		Denies:                 v.Denies,
		NetWorth:               v.NetWorth,
		HeroDamage:             v.HeroDamage,
		TowerDamage:            v.TowerDamage,
		DamageTaken:            v.DamageTaken,
		TeamfightParticipation: v.TeamfightParticipation,
		KDA:                    v.KDA,
		KillParticipation:      v.KillParticipation,
		Lane:                   v.Lane,
		LaneRole:               v.LaneRole,
		VisionScore:            v.VisionScore,
		Items:                  v.Items,
		PositionMetrics:        v.PositionMetrics,
		KillsByHero:            v.KillsByHero,
		DamageByTarget:         v.DamageByTarget,
	}
}

func matchDetailsToDTO(ctx context.Context, v usecase.MatchDetails) matchDetailsDTO {
	ctx, span := startSpan(ctx, "httpapi.matchDetailsToDTO")
	defer span.End()

	players := make([]playerDigestDTO, 0, len(v.Players))
	for _, player := range v.Players {
		players = append(players, playerDigestToDTO(ctx, player))
	}

	return matchDetailsDTO{
		Match:   matchDigestToDTO(ctx, v.Match),
		Players: players,
	}
}

func matchMetricsToDTO(ctx context.Context, v metrics.MatchMetrics) matchMetricsDTO {
	_, span := startSpan(ctx, "httpapi.matchMetricsToDTO")
	defer span.End()

	return matchMetricsDTO{
		MatchID:        v.MatchID,
		PlayerSlot:     v.PlayerSlot,
		Aggressiveness: v.Aggressiveness,
		FarmEfficiency: v.FarmEfficiency,
		Macro:          v.Macro,
		Survivability:  v.Survivability,
		Early:          phaseKPIToDTO(v.Early),
		Mid:            phaseKPIToDTO(v.Mid),
		Late:           phaseKPIToDTO(v.Late),
		ComputedAt:     formatTime(v.ComputedAt),
	}
}

func phaseKPIToDTO(v metrics.PhaseKPI) phaseKPIDTO {
	return phaseKPIDTO{
		KDA:        v.KDA,
		GoldPerMin: v.GoldPerMin,
		XPPerMin:   v.XPPerMin,
	}
}

func userStatisticsToDTO(ctx context.Context, v statistics.UserStatistics) userStatisticsDTO {
	_, span := startSpan(ctx, "httpapi.userStatisticsToDTO")
	defer span.End()

	return userStatisticsDTO{
		UserID:            v.UserID,
		MatchesAnalyzed:   v.MatchesAnalyzed,
		WinRate:           v.WinRate,
		AvgKDA:            v.AvgKDA,
		AvgGoldPerMin:     v.AvgGoldPerMin,
		AvgXPPerMin:       v.AvgXPPerMin,
		AvgAggressiveness: v.AvgAggressiveness,
		AvgFarmEfficiency: v.AvgFarmEfficiency,
		AvgMacro:          v.AvgMacro,
		AvgSurvivability:  v.AvgSurvivability,
		ActiveTasks:       v.ActiveTasks,
		CompletedTasks:    v.CompletedTasks,
		WeeklyProgress:    v.WeeklyProgress,
		LastCalculatedAt:  formatTime(v.LastCalculatedAt),
	}
}

func taskToDTO(ctx context.Context, v task.Task) taskDTO {
	_, span := startSpan(ctx, "httpapi.taskToDTO")
	defer span.End()

	return taskDTO{
		ID:                 v.ID,
		UserID:             v.UserID,
		Category:           string(v.Category),
		Title:              v.Title,
		Description:        v.Description,
		Status:             string(v.Status),
		Priority:           string(v.Priority),
		TargetValue:        v.TargetValue,
		CurrentValue:       v.CurrentValue,
		ProgressPercentage: v.ProgressPercentage,
		CreatedAt:          formatTime(v.CreatedAt),
		UpdatedAt:          formatTime(v.UpdatedAt),
	}
}

func tasksToDTO(ctx context.Context, items []task.Task) []taskDTO {
	ctx, span := startSpan(ctx, "httpapi.tasksToDTO")
	defer span.End()

	out := make([]taskDTO, 0, len(items))
	for _, item := range items {
		out = append(out, taskToDTO(ctx, item))
	}
	return out
}

func pipelineRunToDTO(ctx context.Context, v pipeline.Run) pipelineRunDTO {
	_, span := startSpan(ctx, "httpapi.pipelineRunToDTO")
	defer span.End()

	return pipelineRunDTO{
		MatchID:   v.MatchID,
		UserID:    v.UserID,
		Stage:     string(v.Stage),
		Status:    string(v.Status),
		Reason:    v.Reason,
		UpdatedAt: formatTime(v.UpdatedAt),
	}
}

func dashboardToDTO(ctx context.Context, v usecase.Dashboard) dashboardDTO {
	ctx, span := startSpan(ctx, "httpapi.dashboardToDTO")
	defer span.End()

	return dashboardDTO{
		Statistics:  userStatisticsToDTO(ctx, v.Statistics),
		ActiveTasks: tasksToDTO(ctx, v.ActiveTasks),
		FocusArea:   string(v.FocusArea),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}
