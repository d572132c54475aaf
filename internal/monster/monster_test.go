package monster

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSnapshot returns a complete, well-typed snapshot as it would arrive
// from the game client after JSON decoding (numbers are float64).
func validSnapshot() Snapshot {
	raw := `{
		"id": 7, "name": "dragon-7", "type": "dragon",
		"hp": 50, "maxHp": 50, "isDead": false, "depth": 2,
		"position": {"x": 3, "y": 4},
		"attackSpeed": 100, "movementSpeed": 100, "accuracy": 80,
		"defense": 10, "damageMin": 5, "damageMax": 10,
		"turnsBetweenRegen": 5
	}`
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		panic(err)
	}
	return s
}

func TestParse(t *testing.T) {
	t.Run("valid snapshot produces a full record", func(t *testing.T) {
		rec, err := Parse(validSnapshot())
		require.NoError(t, err)

		assert.Equal(t, 7, rec.ID)
		assert.Equal(t, "dragon-7", rec.Name)
		assert.Equal(t, "dragon", rec.Type)
		assert.Equal(t, 50, rec.HP)
		assert.Equal(t, 50, rec.MaxHP)
		assert.False(t, rec.Dead)
		assert.Equal(t, 2, rec.Depth)
		assert.Equal(t, Position{X: 3, Y: 4}, rec.Position)
		assert.Equal(t, 5, rec.DamageMin)
		assert.Equal(t, 10, rec.DamageMax)
		assert.Nil(t, rec.SpawnTimestamp)
		assert.Nil(t, rec.DeathTimestamp)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		s := validSnapshot()
		delete(s, "maxHp")

		_, err := Parse(s)
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "maxHp")
	})

	t.Run("all missing fields are reported", func(t *testing.T) {
		s := validSnapshot()
		delete(s, "hp")
		delete(s, "depth")

		_, err := Parse(s)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
	})

	t.Run("isDead accepts 0/1 coercion", func(t *testing.T) {
		s := validSnapshot()
		s["isDead"] = float64(1)

		rec, err := Parse(s)
		require.NoError(t, err)
		assert.True(t, rec.Dead)
	})

	t.Run("isDead rejects other numbers", func(t *testing.T) {
		s := validSnapshot()
		s["isDead"] = float64(2)

		_, err := Parse(s)
		require.Error(t, err)
	})

	t.Run("no silent coercion for non-boolean fields", func(t *testing.T) {
		s := validSnapshot()
		s["hp"] = "50"

		_, err := Parse(s)
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "hp")
	})

	t.Run("fractional numbers are not integers", func(t *testing.T) {
		s := validSnapshot()
		s["depth"] = 2.5

		_, err := Parse(s)
		require.Error(t, err)
	})

	t.Run("negative hp fails", func(t *testing.T) {
		s := validSnapshot()
		s["hp"] = float64(-1)

		_, err := Parse(s)
		require.Error(t, err)
	})

	t.Run("name must be a valid resource name", func(t *testing.T) {
		s := validSnapshot()
		s["name"] = "Dragon Seven"

		_, err := Parse(s)
		require.Error(t, err)
	})

	t.Run("mixed-case name is accepted and lowered for resources", func(t *testing.T) {
		s := validSnapshot()
		s["name"] = "Dragon"

		rec, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, "Dragon", rec.Name)
		assert.Equal(t, "dragon", rec.ResourceName())
	})

	t.Run("malformed position fails", func(t *testing.T) {
		s := validSnapshot()
		s["position"] = map[string]any{"x": float64(3)}

		_, err := Parse(s)
		require.Error(t, err)
	})

	t.Run("optional timestamps pass through", func(t *testing.T) {
		s := validSnapshot()
		s["spawnTimestamp"] = float64(1700000000)

		rec, err := Parse(s)
		require.NoError(t, err)
		require.NotNil(t, rec.SpawnTimestamp)
		assert.Equal(t, int64(1700000000), *rec.SpawnTimestamp)
		assert.Nil(t, rec.DeathTimestamp)
	})

	t.Run("optional podName passes through", func(t *testing.T) {
		s := validSnapshot()
		s["podName"] = "dragon-7-pod"

		rec, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, "dragon-7-pod", rec.PodName)
	})
}

func TestSnapshotHasID(t *testing.T) {
	assert.True(t, validSnapshot().HasID())
	assert.False(t, Snapshot{"name": "x"}.HasID())
}
