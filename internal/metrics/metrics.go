// Package metrics owns the portal's Prometheus registry and the collectors
// the reconciler and the game-state glue feed. Everything is registered on
// a private registry so tests can build as many instances as they like,
// and exposed through Handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// lifespanBuckets are the duration boundaries (seconds) for the monster
// lifespan histogram.
var lifespanBuckets = []float64{10, 30, 60, 300, 600, 1800, 3600, 7200}

// Metrics bundles every collector the portal publishes.
type Metrics struct {
	registry *prometheus.Registry

	monstersCreated prometheus.Counter
	monsterDeaths   prometheus.Counter
	monsterLifespan prometheus.Histogram
	lastCreated     prometheus.Gauge
	lastDeath       prometheus.Gauge

	playerGold  prometheus.Gauge
	playerDepth prometheus.Gauge
	playerHP    prometheus.Gauge
	gameTurns   prometheus.Gauge
}

// New builds a Metrics with its own registry, with the standard process
// and Go runtime collectors included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		monstersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "monster_count",
			Help:      "Total number of monsters created.",
		}),
		monsterDeaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "monster_death_count",
			Help:      "Total number of monsters that have died.",
		}),
		monsterLifespan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "monster_lifespan_seconds",
			Help:      "Time in seconds monsters stay alive.",
			Buckets:   lifespanBuckets,
		}),
		lastCreated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "last_monster_created_timestamp",
			Help:      "Unix timestamp of the last monster creation.",
		}),
		lastDeath: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "last_monster_death_timestamp",
			Help:      "Unix timestamp of the last monster death.",
		}),
		playerGold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "player_gold",
			Help:      "Gold carried by the player.",
		}),
		playerDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "player_depth",
			Help:      "Dungeon level the player is on.",
		}),
		playerHP: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "player_hp",
			Help:      "Current player hit points.",
		}),
		gameTurns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "game_turns",
			Help:      "Turns taken in the current game.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.monstersCreated,
		m.monsterDeaths,
		m.monsterLifespan,
		m.lastCreated,
		m.lastDeath,
		m.playerGold,
		m.playerDepth,
		m.playerHP,
		m.gameTurns,
	)
	return m
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MonsterCreated records one monster creation at the given time.
func (m *Metrics) MonsterCreated(now time.Time) {
	m.monstersCreated.Inc()
	m.lastCreated.Set(float64(now.Unix()))
}

// MonsterDied records one monster death. A negative lifespan means the
// spawn time was unknown and the observation is skipped.
func (m *Metrics) MonsterDied(now time.Time, lifespan time.Duration) {
	m.monsterDeaths.Inc()
	m.lastDeath.Set(float64(now.Unix()))
	if lifespan >= 0 {
		m.monsterLifespan.Observe(lifespan.Seconds())
	}
}

// SetPlayer publishes the player vitals selected for scraping.
func (m *Metrics) SetPlayer(gold, depth, hp float64) {
	m.playerGold.Set(gold)
	m.playerDepth.Set(depth)
	m.playerHP.Set(hp)
}

// SetGameTurns publishes the current turn count.
func (m *Metrics) SetGameTurns(turns float64) {
	m.gameTurns.Set(turns)
}
