package monster

import (
	"fmt"
	"regexp"
	"strings"
)

// Position locates a monster on the current dungeon level.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Record is one monster instance as tracked by the portal. The JSON field
// names match the wire format the game client sends and the camelCase keys
// the orchestration resource spec uses; keep them in sync with the field
// table in internal/orchestrator.
type Record struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	HP                int      `json:"hp"`
	MaxHP             int      `json:"maxHp"`
	Dead              bool     `json:"isDead"`
	Depth             int      `json:"depth"`
	Position          Position `json:"position"`
	AttackSpeed       int      `json:"attackSpeed"`
	MovementSpeed     int      `json:"movementSpeed"`
	Accuracy          int      `json:"accuracy"`
	Defense           int      `json:"defense"`
	DamageMin         int      `json:"damageMin"`
	DamageMax         int      `json:"damageMax"`
	TurnsBetweenRegen int      `json:"turnsBetweenRegen"`

	// SpawnTimestamp and DeathTimestamp are Unix seconds. A nil pointer
	// means "never set", which is distinct from an explicit zero.
	SpawnTimestamp *int64 `json:"spawnTimestamp,omitempty"`
	DeathTimestamp *int64 `json:"deathTimestamp,omitempty"`

	// AdminKill marks an operator-triggered death as opposed to an
	// in-game one.
	AdminKill bool `json:"isAdminKill,omitempty"`

	// PodName correlates the record to the orchestration resource
	// instance when it differs from Name.
	PodName string `json:"podName,omitempty"`
}

// ResourceName is the name used for the monster's orchestration resource.
// Resource names must be DNS-safe, so the display name is lowered here and
// nowhere else.
func (r Record) ResourceName() string {
	return strings.ToLower(r.Name)
}

// Snapshot is one untrusted monster object from an inbound batch.
type Snapshot map[string]any

// HasID reports whether the snapshot carries an "id" field at all.
// Entries without one are skipped by the reconciler rather than failing
// the batch.
func (s Snapshot) HasID() bool {
	_, ok := s["id"]
	return ok
}

// ValidationError names the snapshot fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid monster data: " + strings.Join(e.Fields, "; ")
}

// nameShape admits names that lower to a valid DNS-1123 label; the
// lowering happens in ResourceName, not here.
var nameShape = regexp.MustCompile(`^[a-zA-Z0-9]([-a-zA-Z0-9]*[a-zA-Z0-9])?$`)

// Parse validates and normalizes a snapshot into a Record. It returns a
// *ValidationError naming every offending field; no partial record is
// produced on failure.
//
// Coercion policy: boolean fields arriving as 0/1 numbers are coerced to
// bool (the game client has sent both encodings over time). Every other
// type mismatch fails validation.
func Parse(s Snapshot) (Record, error) {
	var rec Record
	v := &validator{snap: s}

	rec.ID = v.intField("id")
	rec.Name = v.stringField("name")
	rec.Type = v.stringField("type")
	rec.HP = v.intField("hp")
	rec.MaxHP = v.intField("maxHp")
	rec.Dead = v.boolField("isDead")
	rec.Depth = v.intField("depth")
	rec.AttackSpeed = v.intField("attackSpeed")
	rec.MovementSpeed = v.intField("movementSpeed")
	rec.Accuracy = v.intField("accuracy")
	rec.Defense = v.intField("defense")
	rec.DamageMin = v.intField("damageMin")
	rec.DamageMax = v.intField("damageMax")
	rec.TurnsBetweenRegen = v.intField("turnsBetweenRegen")
	rec.Position = v.positionField("position")

	rec.SpawnTimestamp = v.optionalInt64("spawnTimestamp")
	rec.DeathTimestamp = v.optionalInt64("deathTimestamp")
	rec.PodName = v.optionalString("podName")

	if len(v.bad) == 0 {
		if rec.HP < 0 {
			v.fail("hp", "must be non-negative")
		}
		if rec.MaxHP < 0 {
			v.fail("maxHp", "must be non-negative")
		}
		if rec.Name != "" && !nameShape.MatchString(rec.Name) {
			v.fail("name", "not a valid resource name")
		}
	}
	if len(v.bad) > 0 {
		return Record{}, &ValidationError{Fields: v.bad}
	}
	return rec, nil
}

// validator accumulates per-field failures so one pass reports them all.
type validator struct {
	snap Snapshot
	bad  []string
}

func (v *validator) fail(field, reason string) {
	v.bad = append(v.bad, fmt.Sprintf("%s: %s", field, reason))
}

func (v *validator) intField(field string) int {
	raw, ok := v.snap[field]
	if !ok {
		v.fail(field, "missing required field")
		return 0
	}
	n, ok := asInt(raw)
	if !ok {
		v.fail(field, fmt.Sprintf("expected integer, got %T", raw))
		return 0
	}
	return n
}

func (v *validator) stringField(field string) string {
	raw, ok := v.snap[field]
	if !ok {
		v.fail(field, "missing required field")
		return ""
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		v.fail(field, fmt.Sprintf("expected non-empty string, got %T", raw))
		return ""
	}
	return s
}

func (v *validator) boolField(field string) bool {
	raw, ok := v.snap[field]
	if !ok {
		v.fail(field, "missing required field")
		return false
	}
	b, ok := asBool(raw)
	if !ok {
		v.fail(field, fmt.Sprintf("expected boolean, got %T", raw))
		return false
	}
	return b
}

func (v *validator) positionField(field string) Position {
	raw, ok := v.snap[field]
	if !ok {
		v.fail(field, "missing required field")
		return Position{}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.fail(field, fmt.Sprintf("expected object with x/y, got %T", raw))
		return Position{}
	}
	x, okX := asInt(m["x"])
	y, okY := asInt(m["y"])
	if !okX || !okY {
		v.fail(field, "expected integer x and y coordinates")
		return Position{}
	}
	return Position{X: x, Y: y}
}

func (v *validator) optionalInt64(field string) *int64 {
	raw, ok := v.snap[field]
	if !ok || raw == nil {
		return nil
	}
	n, ok := asInt64(raw)
	if !ok {
		v.fail(field, fmt.Sprintf("expected integer, got %T", raw))
		return nil
	}
	return &n
}

func (v *validator) optionalString(field string) string {
	raw, ok := v.snap[field]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(field, fmt.Sprintf("expected string, got %T", raw))
		return ""
	}
	return s
}

// asInt accepts the integer encodings encoding/json can hand us. Floats
// with a fractional part are rejected rather than truncated.
func asInt(raw any) (int, bool) {
	n, ok := asInt64(raw)
	return int(n), ok
}

func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// asBool coerces 0/1 numbers to bool; the game client has been
// inconsistent about boolean encoding across versions.
func asBool(raw any) (bool, bool) {
	switch b := raw.(type) {
	case bool:
		return b, true
	case float64:
		if b == 0 {
			return false, true
		}
		if b == 1 {
			return true, true
		}
		return false, false
	case int:
		if b == 0 {
			return false, true
		}
		if b == 1 {
			return true, true
		}
		return false, false
	default:
		return false, false
	}
}
