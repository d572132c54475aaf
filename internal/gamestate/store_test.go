package gamestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("empty until first update", func(t *testing.T) {
		s := NewStore()

		_, ok := s.Player()
		assert.False(t, ok)
		_, ok = s.GameState()
		assert.False(t, ok)
		assert.Empty(t, s.Items())
	})

	t.Run("latest snapshot wins", func(t *testing.T) {
		s := NewStore()
		s.SetPlayer(map[string]any{"gold": float64(10)})
		s.SetPlayer(map[string]any{"gold": float64(25)})

		got, ok := s.Player()
		require.True(t, ok)
		assert.Equal(t, float64(25), got["gold"])
	})

	t.Run("reads return copies", func(t *testing.T) {
		s := NewStore()
		s.SetGameState(map[string]any{"turns": float64(4)})

		got, _ := s.GameState()
		got["turns"] = float64(999)

		fresh, _ := s.GameState()
		assert.Equal(t, float64(4), fresh["turns"])
	})

	t.Run("items replace wholesale", func(t *testing.T) {
		s := NewStore()
		s.SetItems([]map[string]any{{"name": "sword"}, {"name": "shield"}})
		s.SetItems([]map[string]any{{"name": "wand"}})

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "wand", items[0]["name"])
	})

	t.Run("reset drops everything", func(t *testing.T) {
		s := NewStore()
		s.SetPlayer(map[string]any{"gold": float64(10)})
		s.SetItems([]map[string]any{{"name": "sword"}})

		s.Reset()

		_, ok := s.Player()
		assert.False(t, ok)
		assert.Empty(t, s.Items())
	})
}

func TestNumber(t *testing.T) {
	snap := map[string]any{"gold": float64(12), "name": "hero"}

	n, ok := Number(snap, "gold")
	assert.True(t, ok)
	assert.Equal(t, float64(12), n)

	_, ok = Number(snap, "name")
	assert.False(t, ok)
	_, ok = Number(snap, "missing")
	assert.False(t, ok)
}
