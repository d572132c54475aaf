package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreamware/portal/internal/events"
	"github.com/dreamware/portal/internal/gamestate"
	"github.com/dreamware/portal/internal/metrics"
	"github.com/dreamware/portal/internal/monster"
	"github.com/dreamware/portal/internal/reconciler"
	"github.com/dreamware/portal/internal/state"
)

// server holds the portal's moving parts and exposes them over HTTP.
type server struct {
	engine  *reconciler.Engine
	store   *state.Store
	feed    *state.PodFeed
	game    *gamestate.Store
	metrics *metrics.Metrics
	hub     *events.Hub
}

func newServer(engine *reconciler.Engine, store *state.Store, feed *state.PodFeed, game *gamestate.Store, m *metrics.Metrics, hub *events.Hub) *server {
	return &server{
		engine:  engine,
		store:   store,
		feed:    feed,
		game:    game,
		metrics: m,
		hub:     hub,
	}
}

// routes builds the HTTP mux. metricsPath is configurable so the scrape
// endpoint can be moved off /metrics.
func (s *server) routes(metricsPath string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/monsters/update", s.handleMonstersUpdate)
	mux.HandleFunc("/monsters/death", s.handleMonsterDeath)
	mux.HandleFunc("/monsters/admin-kill/", s.handleAdminKill)
	mux.HandleFunc("/monsters/data", s.handleMonstersData)
	mux.HandleFunc("/monsters/all", s.handleMonstersAll)
	mux.HandleFunc("/monsters/dead", s.handleMonstersDead)
	mux.HandleFunc("/monsters/count", s.handleMonsterCount)
	mux.HandleFunc("/monsters/dead-count", s.handleDeadCount)
	mux.HandleFunc("/monsters/monsties-count", s.handleMonstiesCount)
	mux.HandleFunc("/monsters/timestamps", s.handleTimestamps)
	mux.HandleFunc("/monsters/reset", s.handleMonstersReset)
	mux.Handle("/monsters/events", s.hub)

	mux.HandleFunc("/monsties/add", s.handleMonstiesAdd)
	mux.HandleFunc("/monsties/new", s.handleMonstiesNew)
	mux.HandleFunc("/monsties/list", s.handleMonstiesList)
	mux.HandleFunc("/monsties/reset", s.handleMonstiesReset)

	mux.HandleFunc("/player/update", s.handlePlayerUpdate)
	mux.HandleFunc("/player/data", s.handlePlayerData)
	mux.HandleFunc("/gamestate/update", s.handleGameStateUpdate)
	mux.HandleFunc("/gamestate/data", s.handleGameStateData)
	mux.HandleFunc("/items/update", s.handleItemsUpdate)
	mux.HandleFunc("/items/data", s.handleItemsData)

	mux.Handle(metricsPath, s.metrics.Handler())
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// writeJSON writes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError writes a JSON error body. Internal detail goes to the log,
// never to the client.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleMonstersUpdate ingests a batch of monster snapshots.
//
//	POST /monsters/update
//	body: JSON array of monster snapshot objects
func (s *server) handleMonstersUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var snaps []monster.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snaps); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if snaps == nil {
		writeError(w, http.StatusBadRequest, "no JSON payload received")
		return
	}

	applied, err := s.engine.ApplyBatch(r.Context(), snaps)
	if err != nil {
		var verr *monster.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		log.Printf("apply batch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to process monsters",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("processed %d monsters", applied),
	})
}

// handleMonsterDeath marks a single monster dead.
//
//	POST /monsters/death
//	body: {"id": <int or numeric string>}
func (s *server) handleMonsterDeath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	id, ok := parseID(body["id"])
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid monster id")
		return
	}

	if err := s.engine.Kill(r.Context(), id); err != nil {
		s.writeKillError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "id": id})
}

// handleAdminKill force-kills a monster out of band. Two forms:
//
//	DELETE /monsters/admin-kill/{id}
//	DELETE /monsters/admin-kill/pod/{podName}
//
// The pod form is what the cluster controller calls when a monster pod
// is deleted ahead of the game noticing.
func (s *server) handleAdminKill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/monsters/admin-kill/")
	if podName, ok := strings.CutPrefix(rest, "pod/"); ok {
		if podName == "" {
			writeError(w, http.StatusBadRequest, "missing pod name")
			return
		}
		if err := s.engine.AdminKillByPod(r.Context(), podName); err != nil {
			s.writeKillError(w, 0, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "pod": podName})
		return
	}

	id, err := strconv.Atoi(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monster id")
		return
	}
	if err := s.engine.AdminKill(r.Context(), id); err != nil {
		s.writeKillError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "id": id})
}

func (s *server) writeKillError(w http.ResponseWriter, id int, err error) {
	switch {
	case errors.Is(err, reconciler.ErrNotFound):
		writeError(w, http.StatusNotFound, "monster not found")
	case errors.Is(err, reconciler.ErrAlreadyDead):
		writeError(w, http.StatusBadRequest, "monster already dead")
	default:
		log.Printf("kill monster %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to process death",
			"message": err.Error(),
		})
	}
}

func (s *server) handleMonstersData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Active())
}

func (s *server) handleMonstersAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.store.All())
}

func (s *server) handleMonstersDead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Dead())
}

func (s *server) handleMonsterCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"monster_count": s.store.CountActive()})
}

func (s *server) handleDeadCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"dead_monster_count": s.store.CountDead()})
}

func (s *server) handleMonstiesCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"monsties_count": s.feed.Count()})
}

// handleTimestamps reports spawn and death times for every monster ever
// seen. Unset timestamps render as the string "Unknown".
func (s *server) handleTimestamps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stamps := s.store.Timestamps()
	out := make([]map[string]any, 0, len(stamps))
	for _, ts := range stamps {
		out = append(out, map[string]any{
			"name":           ts.Name,
			"spawnTimestamp": tsOrUnknown(ts.Spawn),
			"deathTimestamp": tsOrUnknown(ts.Death),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func tsOrUnknown(ts *int64) any {
	if ts == nil {
		return "Unknown"
	}
	return *ts
}

// handleMonstersReset clears all monster state for a new game. The local
// collections always clear; a cluster sweep failure is logged and the
// reset still reports success.
//
//	POST /monsters/reset
func (s *server) handleMonstersReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.engine.Reset(r.Context()); err != nil {
		log.Printf("reset cluster sweep: %v", err)
	}
	s.feed.Reset()
	s.game.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseID accepts a monster id as a JSON number or a numeric string. The
// game is inconsistent about which it sends.
func parseID(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
