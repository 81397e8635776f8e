package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/dota-coach/internal/domain/digest"
)

type matchDigestTableModel struct {
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
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

type playerDigestTableModel struct {
	MatchID                int64           `db:"match_id"`
	PlayerSlot             int64           `db:"player_slot"`
	AccountID              sql.NullInt64   `db:"account_id"`
	HeroID                 int64           `db:"hero_id"`
	Kills                  sql.NullFloat64 `db:"kills"`
	Deaths                 sql.NullFloat64 `db:"deaths"`
	Assists                sql.NullFloat64 `db:"assists"`
	GoldPerMin             sql.NullFloat64 `db:"gold_per_min"`
	XPPerMin               sql.NullFloat64 `db:"xp_per_min"`
	GoldSpent              sql.NullFloat64 `db:"gold_spent"`
	LastHits               sql.NullFloat64 `db:"last_hits"`
	Denies                 sql.NullFloat64 `db:"denies"`
	NetWorth               sql.NullFloat64 `db:"net_worth"`
	HeroDamage             sql.NullFloat64 `db:"hero_damage"`
	TowerDamage            sql.NullFloat64 `db:"tower_damage"`
	DamageTaken            sql.NullFloat64 `db:"damage_taken"`
	TeamfightParticipation sql.NullFloat64 `db:"teamfight_participation"`
	KDA                    sql.NullFloat64 `db:"kda"`
	KillParticipation      sql.NullFloat64 `db:"kill_participation"`
	Lane                   sql.NullFloat64 `db:"lane"`
	LaneRole               sql.NullFloat64 `db:"lane_role"`
	VisionScore            sql.NullFloat64 `db:"vision_score"`
	Items                  string          `db:"items"`
	PositionMetrics        sql.NullString  `db:"position_metrics"`
	KillsByHero            sql.NullString  `db:"kills_by_hero"`
	DamageByTarget         sql.NullString  `db:"damage_by_target"`
}

// playerMatchRow flattens the join used by the rollup query. Match
// columns carry an md_ prefix to avoid colliding with player columns.
type playerMatchRow struct {
	playerDigestTableModel
	MatchDuration   int64           `db:"md_duration"`
	MatchStartTime  *time.Time      `db:"md_start_time"`
	MatchRadiantWin bool            `db:"md_radiant_win"`
	MatchIncluded   bool            `db:"md_included_in_coaching"`
	MatchGameMode   sql.NullFloat64 `db:"md_game_mode"`
}

type objectiveSummaryDoc struct {
	Count int            `json:"count"`
	Types map[string]int `json:"types"`
}

type teamfightSummaryDoc struct {
	Count         int     `json:"count"`
	TotalDuration float64 `json:"total_duration"`
}

type economySummaryDoc struct {
	RadiantTotalNetWorth float64 `json:"radiant_total_net_worth"`
	DireTotalNetWorth    float64 `json:"dire_total_net_worth"`
	TotalGoldSpent       float64 `json:"total_gold_spent"`
	AverageGoldPerMin    float64 `json:"average_gold_per_min"`
}

func encodeJSONDoc(value any) string {
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeJSONDoc(raw string, out any) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	_ = sonic.Unmarshal([]byte(raw), out)
}

func encodeNullableDoc(value map[string]any) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeJSONDoc(value), Valid: true}
}

func decodeNullableDoc(raw sql.NullString) map[string]any {
	if !raw.Valid {
		return nil
	}
	out := make(map[string]any)
	decodeJSONDoc(raw.String, &out)
	return out
}

func nullableFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func floatFromNull(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func nullableInt(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func intFromNull(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func matchDigestFromRow(row matchDigestTableModel) digest.MatchDigest {
	var objectives objectiveSummaryDoc
	decodeJSONDoc(row.Objectives, &objectives)
	var teamfights teamfightSummaryDoc
	decodeJSONDoc(row.Teamfights, &teamfights)
	var economy economySummaryDoc
	decodeJSONDoc(row.Economy, &economy)

	return digest.MatchDigest{
		MatchID:      row.MatchID,
		Duration:     row.Duration,
		StartTime:    row.StartTime,
		RadiantWin:   row.RadiantWin,
		RadiantScore: floatFromNull(row.RadiantScore),
		DireScore:    floatFromNull(row.DireScore),
		GameMode:     floatFromNull(row.GameMode),
		LobbyType:    floatFromNull(row.LobbyType),
		Objectives: digest.ObjectiveSummary{
			Count: objectives.Count,
			Types: objectives.Types,
		},
		Teamfights: digest.TeamfightSummary{
			Count:         teamfights.Count,
			TotalDuration: teamfights.TotalDuration,
		},
		Economy: digest.EconomySummary{
			RadiantTotalNetWorth: economy.RadiantTotalNetWorth,
			DireTotalNetWorth:    economy.DireTotalNetWorth,
			TotalGoldSpent:       economy.TotalGoldSpent,
			AverageGoldPerMin:    economy.AverageGoldPerMin,
		},
		IncludedInCoaching: row.IncludedInCoaching,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func playerDigestFromModel(row playerDigestTableModel) digest.PlayerDigest {
	items := make(map[string]any)
	decodeJSONDoc(row.Items, &items)

	return digest.PlayerDigest{
		MatchID:                row.MatchID,
		PlayerSlot:             row.PlayerSlot,
		AccountID:              intFromNull(row.AccountID),
		HeroID:                 row.HeroID,
		Kills:                  floatFromNull(row.Kills),
		Deaths:                 floatFromNull(row.Deaths),
		Assists:                floatFromNull(row.Assists),
		GoldPerMin:             floatFromNull(row.GoldPerMin),
		XPPerMin:               floatFromNull(row.XPPerMin),
		GoldSpent:              floatFromNull(row.GoldSpent),
		LastHits:               floatFromNull(row.LastHits),
		Denies:                 floatFromNull(row.Denies),
		NetWorth:               floatFromNull(row.NetWorth),
		HeroDamage:             floatFromNull(row.HeroDamage),
		TowerDamage:            floatFromNull(row.TowerDamage),
		DamageTaken:            floatFromNull(row.DamageTaken),
		TeamfightParticipation: floatFromNull(row.TeamfightParticipation),
		KDA:                    floatFromNull(row.KDA),
		KillParticipation:      floatFromNull(row.KillParticipation),
		Lane:                   floatFromNull(row.Lane),
		LaneRole:               floatFromNull(row.LaneRole),
		VisionScore:            floatFromNull(row.VisionScore),
		Items:                  items,
		PositionMetrics:        decodeNullableDoc(row.PositionMetrics),
		KillsByHero:            decodeNullableDoc(row.KillsByHero),
		DamageByTarget:         decodeNullableDoc(row.DamageByTarget),
	}
}

func playerDigestToModel(player digest.PlayerDigest) playerDigestTableModel {
	items := player.Items
	if items == nil {
		items = map[string]any{}
	}

	return playerDigestTableModel{
		MatchID:                player.MatchID,
		PlayerSlot:             player.PlayerSlot,
		AccountID:              nullableInt(player.AccountID),
		HeroID:                 player.HeroID,
		Kills:                  nullableFloat(player.Kills),
		Deaths:                 nullableFloat(player.Deaths),
		Assists:                nullableFloat(player.Assists),
		GoldPerMin:             nullableFloat(player.GoldPerMin),
		XPPerMin:               nullableFloat(player.XPPerMin),
		GoldSpent:              nullableFloat(player.GoldSpent),
		LastHits:               nullableFloat(player.LastHits),
		Denies:                 nullableFloat(player.Denies),
		NetWorth:               nullableFloat(player.NetWorth),
		HeroDamage:             nullableFloat(player.HeroDamage),
		TowerDamage:            nullableFloat(player.TowerDamage),
		DamageTaken:            nullableFloat(player.DamageTaken),
		TeamfightParticipation: nullableFloat(player.TeamfightParticipation),
		KDA:                    nullableFloat(player.KDA),
		KillParticipation:      nullableFloat(player.KillParticipation),
		Lane:                   nullableFloat(player.Lane),
		LaneRole:               nullableFloat(player.LaneRole),
		VisionScore:            nullableFloat(player.VisionScore),
		Items:                  encodeJSONDoc(items),
		PositionMetrics:        encodeNullableDoc(player.PositionMetrics),
		KillsByHero:            encodeNullableDoc(player.KillsByHero),
		DamageByTarget:         encodeNullableDoc(player.DamageByTarget),
	}
}
