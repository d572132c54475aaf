// Package gamestate keeps the latest player, game-state, and item
// snapshots pushed by the game client. Unlike monsters these carry no
// lifecycle: each update replaces the previous snapshot wholesale, and the
// read endpoints simply echo the latest one back.
package gamestate

import "sync"

// Store holds the most recent snapshot of each kind behind one lock.
type Store struct {
	mu     sync.RWMutex
	player map[string]any
	game   map[string]any
	items  []map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetPlayer replaces the player snapshot.
func (s *Store) SetPlayer(snap map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = copyMap(snap)
}

// Player returns the latest player snapshot, or false when none has been
// received yet.
func (s *Store) Player() (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.player == nil {
		return nil, false
	}
	return copyMap(s.player), true
}

// SetGameState replaces the game-state snapshot.
func (s *Store) SetGameState(snap map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = copyMap(snap)
}

// GameState returns the latest game-state snapshot, or false when none has
// been received yet.
func (s *Store) GameState() (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.game == nil {
		return nil, false
	}
	return copyMap(s.game), true
}

// SetItems replaces the item list.
func (s *Store) SetItems(items []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]map[string]any, 0, len(items))
	for _, item := range items {
		s.items = append(s.items, copyMap(item))
	}
}

// Items returns the latest item list; empty until the first update.
func (s *Store) Items() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, copyMap(item))
	}
	return out
}

// Reset drops every snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = nil
	s.game = nil
	s.items = nil
}

// Number pulls a numeric field out of a snapshot, for gauge republishing.
func Number(snap map[string]any, key string) (float64, bool) {
	switch n := snap[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// copyMap is shallow; snapshot values are only read, never mutated.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
