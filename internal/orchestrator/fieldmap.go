package orchestrator

import "github.com/dreamware/portal/internal/monster"

// The resource spec uses one explicit, total field mapping. Automatic case
// conversion between internal and external names silently dropped fields
// in an earlier version of this system, so every key is written out by
// hand here and nowhere else. specFromRecord and recordFromSpec must stay
// inverse to each other.
//
// Numeric values are int64 because that is the only integer type the
// apimachinery deep-copy of unstructured content accepts.

func specFromRecord(rec monster.Record) map[string]any {
	spec := map[string]any{
		"accuracy":          int64(rec.Accuracy),
		"attackSpeed":       int64(rec.AttackSpeed),
		"damageMax":         int64(rec.DamageMax),
		"damageMin":         int64(rec.DamageMin),
		"defense":           int64(rec.Defense),
		"depth":             int64(rec.Depth),
		"hp":                int64(rec.HP),
		"id":                int64(rec.ID),
		"isDead":            rec.Dead,
		"maxHp":             int64(rec.MaxHP),
		"movementSpeed":     int64(rec.MovementSpeed),
		"name":              rec.Name,
		"turnsBetweenRegen": int64(rec.TurnsBetweenRegen),
		"type":              rec.Type,
		"position": map[string]any{
			"x": int64(rec.Position.X),
			"y": int64(rec.Position.Y),
		},
	}
	if rec.SpawnTimestamp != nil {
		spec["spawnTimestamp"] = *rec.SpawnTimestamp
	}
	if rec.DeathTimestamp != nil {
		spec["deathTimestamp"] = *rec.DeathTimestamp
	}
	if rec.PodName != "" {
		spec["podName"] = rec.PodName
	}
	return spec
}

func recordFromSpec(spec map[string]any) monster.Record {
	rec := monster.Record{
		ID:                specInt(spec, "id"),
		Name:              specString(spec, "name"),
		Type:              specString(spec, "type"),
		HP:                specInt(spec, "hp"),
		MaxHP:             specInt(spec, "maxHp"),
		Dead:              specBool(spec, "isDead"),
		Depth:             specInt(spec, "depth"),
		AttackSpeed:       specInt(spec, "attackSpeed"),
		MovementSpeed:     specInt(spec, "movementSpeed"),
		Accuracy:          specInt(spec, "accuracy"),
		Defense:           specInt(spec, "defense"),
		DamageMin:         specInt(spec, "damageMin"),
		DamageMax:         specInt(spec, "damageMax"),
		TurnsBetweenRegen: specInt(spec, "turnsBetweenRegen"),
		PodName:           specString(spec, "podName"),
	}
	if pos, ok := spec["position"].(map[string]any); ok {
		rec.Position = monster.Position{
			X: specInt(pos, "x"),
			Y: specInt(pos, "y"),
		}
	}
	if ts, ok := specInt64(spec, "spawnTimestamp"); ok {
		rec.SpawnTimestamp = &ts
	}
	if ts, ok := specInt64(spec, "deathTimestamp"); ok {
		rec.DeathTimestamp = &ts
	}
	return rec
}

func specInt(spec map[string]any, key string) int {
	n, _ := specInt64(spec, key)
	return int(n)
}

// specInt64 tolerates both int64 (unstructured round trips) and float64
// (raw JSON decoding).
func specInt64(spec map[string]any, key string) (int64, bool) {
	switch n := spec[key].(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func specString(spec map[string]any, key string) string {
	s, _ := spec[key].(string)
	return s
}

func specBool(spec map[string]any, key string) bool {
	b, _ := spec[key].(bool)
	return b
}
