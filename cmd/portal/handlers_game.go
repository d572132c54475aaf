package main

import (
	"encoding/json"
	"net/http"

	"github.com/dreamware/portal/internal/gamestate"
)

// The monsties feed is the reverse channel: the cluster controller posts
// the names of monster pods it has created, and the game pulls them to
// name newly spawned monsters after their pods.

func (s *server) handleMonstiesAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	podName, _ := body["pod-name"].(string)
	if podName == "" {
		writeError(w, http.StatusBadRequest, "missing pod-name")
		return
	}

	s.feed.Add(podName)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "pod-name": podName})
}

// handleMonstiesNew drains the unconsumed pod names. Each name is handed
// out exactly once.
func (s *server) handleMonstiesNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"pod-names": s.feed.Drain()})
}

func (s *server) handleMonstiesList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"pod-names": s.feed.Seen()})
}

func (s *server) handleMonstiesReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.feed.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handlePlayerUpdate stores the latest player snapshot and republishes
// gold, depth, and hp as gauges.
func (s *server) handlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, ok := decodeObject(w, r)
	if !ok {
		return
	}
	s.game.SetPlayer(snap)
	s.metrics.SetPlayer(playerGauges(snap))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func playerGauges(snap map[string]any) (gold, depth, hp float64) {
	gold, _ = gamestate.Number(snap, "gold")
	depth, _ = gamestate.Number(snap, "depthLevel")
	hp, _ = gamestate.Number(snap, "currentHP")
	return gold, depth, hp
}

func (s *server) handlePlayerData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap, ok := s.game.Player()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleGameStateUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, ok := decodeObject(w, r)
	if !ok {
		return
	}
	s.game.SetGameState(snap)
	if turns, ok := gamestate.Number(snap, "gameTurns"); ok {
		s.metrics.SetGameTurns(turns)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *server) handleGameStateData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap, ok := s.game.GameState()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleItemsUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var items []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if items == nil {
		writeError(w, http.StatusBadRequest, "no JSON payload received")
		return
	}
	s.game.SetItems(items)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *server) handleItemsData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.game.Items())
}

func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var snap map[string]any
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, false
	}
	if snap == nil {
		writeError(w, http.StatusBadRequest, "no JSON payload received")
		return nil, false
	}
	return snap, true
}
