package digest

// Sanitize rebuilds a PlayerDigest field by field from the fixed field
// set, re-coercing every value. It is the last gate before a player row
// leaves the core: whatever produced the record, nothing malformed can
// pass through. Pure, total, and idempotent.
func Sanitize(p PlayerDigest) PlayerDigest {
	return PlayerDigest{
		MatchID:                p.MatchID,
		PlayerSlot:             p.PlayerSlot,
		AccountID:              copyID(p.AccountID),
		HeroID:                 p.HeroID,
		Kills:                  sanitizeNumber(p.Kills),
		Deaths:                 sanitizeNumber(p.Deaths),
		Assists:                sanitizeNumber(p.Assists),
		GoldPerMin:             sanitizeNumber(p.GoldPerMin),
		XPPerMin:               sanitizeNumber(p.XPPerMin),
		GoldSpent:              sanitizeNumber(p.GoldSpent),
		LastHits:               sanitizeNumber(p.LastHits),
		Denies:                 sanitizeNumber(p.Denies),
		NetWorth:               sanitizeNumber(p.NetWorth),
		HeroDamage:             sanitizeNumber(p.HeroDamage),
		TowerDamage:            sanitizeNumber(p.TowerDamage),
		DamageTaken:            sanitizeNumber(p.DamageTaken),
		TeamfightParticipation: sanitizeNumber(p.TeamfightParticipation),
		KDA:                    sanitizeNumber(p.KDA),
		KillParticipation:      sanitizeNumber(p.KillParticipation),
		Lane:                   sanitizeNumber(p.Lane),
		LaneRole:               sanitizeNumber(p.LaneRole),
		VisionScore:            sanitizeNumber(p.VisionScore),
		Items:                  sanitizeDocument(p.Items),
		PositionMetrics:        sanitizeDocument(p.PositionMetrics),
		KillsByHero:            sanitizeDocument(p.KillsByHero),
		DamageByTarget:         sanitizeDocument(p.DamageByTarget),
	}
}

func sanitizeNumber(value *float64) *float64 {
	if value == nil {
		return nil
	}
	parsed, ok := CoerceNumber(*value)
	if !ok {
		return nil
	}
	return &parsed
}

func sanitizeDocument(value map[string]any) map[string]any {
	if value == nil {
		return nil
	}
	doc, ok := CoerceDocument(value)
	if !ok {
		return nil
	}
	return doc
}

func copyID(value *int64) *int64 {
	if value == nil {
		return nil
	}
	id := *value
	return &id
}
