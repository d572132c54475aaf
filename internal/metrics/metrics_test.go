package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := New()
	now := time.Unix(1700000000, 0)

	m.MonsterCreated(now)
	m.MonsterCreated(now.Add(time.Minute))
	m.MonsterDied(now.Add(2*time.Minute), 2*time.Minute)
	m.SetPlayer(120, 3, 18)
	m.SetGameTurns(421)

	body := scrape(t, m)

	assert.Contains(t, body, "portal_monster_count 2")
	assert.Contains(t, body, "portal_monster_death_count 1")
	assert.Contains(t, body, `portal_monster_lifespan_seconds_bucket{le="300"} 1`)
	assert.Contains(t, body, `portal_monster_lifespan_seconds_bucket{le="60"} 0`)
	assert.Contains(t, body, "portal_last_monster_created_timestamp 1.70000006e+09")
	assert.Contains(t, body, "portal_player_gold 120")
	assert.Contains(t, body, "portal_game_turns 421")
}

func TestMetricsUnknownLifespanSkipsHistogram(t *testing.T) {
	m := New()
	m.MonsterDied(time.Unix(1700000000, 0), -1)

	body := scrape(t, m)
	assert.Contains(t, body, "portal_monster_death_count 1")
	assert.Contains(t, body, "portal_monster_lifespan_seconds_count 0")
}

func TestMetricsIndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.MonsterCreated(time.Now())

	assert.True(t, strings.Contains(scrape(t, a), "portal_monster_count 1"))
	assert.True(t, strings.Contains(scrape(t, b), "portal_monster_count 0"))
}
