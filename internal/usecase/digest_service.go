package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
)

// DigestBuilder turns one raw provider match document into a
// MatchDigest plus one PlayerDigest per player. It is pure over the
// input document: no repository access, fail-fast on required fields,
// and it never emits partial output.
type DigestBuilder struct {
	coercer *digest.Coercer
	now     func() time.Time
}

func NewDigestBuilder(log *logging.Logger) *DigestBuilder {
	if log == nil {
		log = logging.Default()
	}
	return &DigestBuilder{
		coercer: digest.NewCoercer(log),
		now:     time.Now,
	}
}

type parsedRawPlayer struct {
	doc    map[string]any
	slot   int64
	heroID int64
}

func (b *DigestBuilder) Build(raw map[string]any) (digest.MatchDigest, []digest.PlayerDigest, error) {
	if raw == nil {
		return digest.MatchDigest{}, nil, fmt.Errorf("%w: raw match document is empty", ErrInvalidInput)
	}

	matchIDValue, ok := digest.CoerceNumber(raw["match_id"])
	if !ok || matchIDValue <= 0 {
		return digest.MatchDigest{}, nil, fmt.Errorf("%w: match_id must be a positive number, got %v", ErrInvalidInput, raw["match_id"])
	}
	matchID := int64(matchIDValue)

	durationValue, ok := digest.CoerceNumber(raw["duration"])
	if !ok || durationValue < 0 {
		return digest.MatchDigest{}, nil, fmt.Errorf("%w: duration must be a non-negative number, got %v", ErrInvalidInput, raw["duration"])
	}

	radiantWin, ok := raw["radiant_win"].(bool)
	if !ok {
		return digest.MatchDigest{}, nil, fmt.Errorf("%w: radiant_win must be a boolean, got %v", ErrInvalidInput, raw["radiant_win"])
	}

	rawPlayers, ok := raw["players"].([]any)
	if !ok || len(rawPlayers) == 0 {
		return digest.MatchDigest{}, nil, fmt.Errorf("%w: players must be a non-empty array", ErrInvalidInput)
	}

	parsed := make([]parsedRawPlayer, 0, len(rawPlayers))
	for i, item := range rawPlayers {
		doc, ok := item.(map[string]any)
		if !ok {
			return digest.MatchDigest{}, nil, fmt.Errorf("%w: player at index %d is not an object", ErrInvalidInput, i)
		}
		slot, ok := digest.CoerceNumber(doc["player_slot"])
		if !ok {
			return digest.MatchDigest{}, nil, fmt.Errorf("%w: player at index %d has invalid player_slot %v", ErrInvalidInput, i, doc["player_slot"])
		}
		heroID, ok := digest.CoerceNumber(doc["hero_id"])
		if !ok {
			return digest.MatchDigest{}, nil, fmt.Errorf("%w: player at index %d has invalid hero_id %v", ErrInvalidInput, i, doc["hero_id"])
		}
		parsed = append(parsed, parsedRawPlayer{doc: doc, slot: int64(slot), heroID: int64(heroID)})
	}

	// Team kill totals feed the kill participation denominators.
	radiantKills := 0.0
	direKills := 0.0
	for _, p := range parsed {
		kills, ok := digest.CoerceNumber(p.doc["kills"])
		if !ok {
			continue
		}
		if p.slot < digest.RadiantSlotLimit {
			radiantKills += kills
		} else {
			direKills += kills
		}
	}

	now := b.now().UTC()
	match := digest.MatchDigest{
		MatchID:      matchID,
		Duration:     int64(durationValue),
		StartTime:    b.startTime(raw["start_time"]),
		RadiantWin:   radiantWin,
		RadiantScore: b.coercer.Number("radiant_score", raw["radiant_score"]),
		DireScore:    b.coercer.Number("dire_score", raw["dire_score"]),
		GameMode:     b.coercer.Number("game_mode", raw["game_mode"]),
		LobbyType:    b.coercer.Number("lobby_type", raw["lobby_type"]),
		Objectives:   b.objectiveSummary(raw["objectives"]),
		Teamfights:   b.teamfightSummary(raw["teamfights"]),
		Economy:      b.economySummary(parsed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	players := make([]digest.PlayerDigest, 0, len(parsed))
	for _, p := range parsed {
		teamKills := direKills
		if p.slot < digest.RadiantSlotLimit {
			teamKills = radiantKills
		}

		player := digest.PlayerDigest{
			MatchID:                matchID,
			PlayerSlot:             p.slot,
			AccountID:              b.accountID(p.doc["account_id"]),
			HeroID:                 p.heroID,
			Kills:                  b.coercer.Number("kills", p.doc["kills"]),
			Deaths:                 b.coercer.Number("deaths", p.doc["deaths"]),
			Assists:                b.coercer.Number("assists", p.doc["assists"]),
			GoldPerMin:             b.coercer.Number("gold_per_min", p.doc["gold_per_min"]),
			XPPerMin:               b.coercer.Number("xp_per_min", p.doc["xp_per_min"]),
			GoldSpent:              b.coercer.Number("gold_spent", p.doc["gold_spent"]),
			LastHits:               b.coercer.Number("last_hits", p.doc["last_hits"]),
			Denies:                 b.coercer.Number("denies", p.doc["denies"]),
			NetWorth:               b.coercer.Number("net_worth", p.doc["net_worth"]),
			HeroDamage:             b.coercer.Number("hero_damage", p.doc["hero_damage"]),
			TowerDamage:            b.coercer.Number("tower_damage", p.doc["tower_damage"]),
			DamageTaken:            b.coercer.Number("damage_taken", p.doc["damage_taken"]),
			TeamfightParticipation: b.coercer.Number("teamfight_participation", p.doc["teamfight_participation"]),
			Lane:                   b.coercer.Number("lane", p.doc["lane"]),
			LaneRole:               b.coercer.Number("lane_role", p.doc["lane_role"]),
			VisionScore:            b.visionScore(p.doc),
			Items:                  buildItems(p.doc),
			PositionMetrics:        nil,
			KillsByHero:            b.coercer.Document("killed", p.doc["killed"]),
			DamageByTarget:         b.coercer.Document("damage_targets", p.doc["damage_targets"]),
		}
		player.KDA = kdaValue(player.Kills, player.Deaths, player.Assists)
		player.KillParticipation = killParticipation(player.Kills, player.Assists, teamKills)

		players = append(players, digest.Sanitize(player))
	}

	return match, players, nil
}

func (b *DigestBuilder) startTime(value any) *time.Time {
	epoch := b.coercer.Number("start_time", value)
	if epoch == nil || *epoch <= 0 {
		return nil
	}
	ts := time.Unix(int64(*epoch), 0).UTC()
	return &ts
}

func (b *DigestBuilder) accountID(value any) *int64 {
	parsed := b.coercer.Number("account_id", value)
	if parsed == nil {
		return nil
	}
	id := int64(*parsed)
	return &id
}

// kdaValue treats absent counters as 0 so that a drifted field never
// aborts the build. A deathless game scores kills plus assists.
func kdaValue(kills, deaths, assists *float64) *float64 {
	k := valueOrZero(kills)
	d := valueOrZero(deaths)
	a := valueOrZero(assists)

	kda := k + a
	if d > 0 {
		kda = (k + a) / d
	}
	return &kda
}

// killParticipation stays absent when the team scored no kills at all
// or when the player's own counters drifted away. Assists on the same
// kill double-count in the numerator, so the share is capped at 1.0.
func killParticipation(kills, assists *float64, teamKills float64) *float64 {
	if kills == nil || assists == nil || teamKills == 0 {
		return nil
	}
	share := (*kills + *assists) / teamKills
	if share > 1.0 {
		share = 1.0
	}
	return &share
}

func (b *DigestBuilder) visionScore(doc map[string]any) *float64 {
	obs := b.coercer.Number("observer_wards_placed", doc["observer_wards_placed"])
	sentry := b.coercer.Number("sentry_wards_placed", doc["sentry_wards_placed"])
	if obs == nil && sentry == nil {
		return nil
	}
	total := valueOrZero(obs) + valueOrZero(sentry)
	return &total
}

var itemSlots = []string{"item_0", "item_1", "item_2", "item_3", "item_4", "item_5", "item_neutral"}

// buildItems keeps only the slots the raw player actually carries.
// Absent slots are omitted, never null-filled.
func buildItems(doc map[string]any) map[string]any {
	items := make(map[string]any)
	for _, slot := range itemSlots {
		if value, ok := doc[slot]; ok {
			items[slot] = value
		}
	}
	return items
}

func (b *DigestBuilder) objectiveSummary(value any) digest.ObjectiveSummary {
	events, ok := value.([]any)
	if !ok || len(events) == 0 {
		return digest.ObjectiveSummary{}
	}

	summary := digest.ObjectiveSummary{
		Count: len(events),
		Types: make(map[string]int),
	}
	for _, item := range events {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		eventType, ok := doc["type"].(string)
		if !ok || eventType == "" {
			continue
		}
		summary.Types[eventType]++
	}
	return summary
}

func (b *DigestBuilder) teamfightSummary(value any) digest.TeamfightSummary {
	events, ok := value.([]any)
	if !ok || len(events) == 0 {
		return digest.TeamfightSummary{}
	}

	summary := digest.TeamfightSummary{Count: len(events)}
	for _, item := range events {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if duration, ok := digest.CoerceNumber(doc["duration"]); ok {
			summary.TotalDuration += duration
		}
	}
	return summary
}

func (b *DigestBuilder) economySummary(players []parsedRawPlayer) digest.EconomySummary {
	summary := digest.EconomySummary{}
	if len(players) == 0 {
		return summary
	}

	gpmSum := 0.0
	for _, p := range players {
		if netWorth, ok := digest.CoerceNumber(p.doc["net_worth"]); ok {
			if p.slot < digest.RadiantSlotLimit {
				summary.RadiantTotalNetWorth += netWorth
			} else {
				summary.DireTotalNetWorth += netWorth
			}
		}
		if goldSpent, ok := digest.CoerceNumber(p.doc["gold_spent"]); ok {
			summary.TotalGoldSpent += goldSpent
		}
		if gpm, ok := digest.CoerceNumber(p.doc["gold_per_min"]); ok {
			gpmSum += gpm
		}
	}
	summary.AverageGoldPerMin = gpmSum / float64(len(players))
	return summary
}

func valueOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
