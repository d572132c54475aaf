package state

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/dreamware/portal/internal/monster"
)

// AdminKill is one entry in the administrative-kill ledger.
type AdminKill struct {
	EntryID   string `json:"entryId"`
	MonsterID int    `json:"monsterId"`
	Name      string `json:"name"`
	PodName   string `json:"podName,omitempty"`
	KilledAt  int64  `json:"killedAt"`
}

// Timestamps is the per-monster lifecycle view surfaced by the timestamps
// endpoint. Nil means the timestamp was never set.
type Timestamps struct {
	Name  string
	Spawn *int64
	Death *int64
}

// Store owns the three monster collections and the admin-kill ledger
// behind a single coarse lock.
//
// Membership contract:
//   - every monster in active or dead is also in all
//   - a monster is in exactly one of active/dead at any time
//   - all and dead only shrink on Reset
//
// All reads return copies so callers can't mutate shared state.
type Store struct {
	mu         sync.RWMutex
	active     map[int]monster.Record
	all        map[int]monster.Record
	dead       map[int]monster.Record
	adminKills map[int]AdminKill
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		active:     make(map[int]monster.Record),
		all:        make(map[int]monster.Record),
		dead:       make(map[int]monster.Record),
		adminKills: make(map[int]AdminKill),
	}
}

// Get returns the record for id from the all-time collection.
func (s *Store) Get(id int) (monster.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.all[id]
	return rec, ok
}

// Known reports whether id has ever been seen.
func (s *Store) Known(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.all[id]
	return ok
}

// IsDead reports whether id is in the dead collection.
func (s *Store) IsDead(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.dead[id]
	return ok
}

// Insert adds a newly sighted monster to the all-time and active
// collections.
func (s *Store) Insert(rec monster.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.all[rec.ID] = rec
	s.active[rec.ID] = rec
}

// Refresh overwrites the record in the all-time and active collections.
// The caller is responsible for carrying forward the spawn timestamp.
func (s *Store) Refresh(rec monster.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.all[rec.ID] = rec
	s.active[rec.ID] = rec
}

// MarkDead moves the record from active to dead and updates the all-time
// collection, in one critical section so the liveness partition never has
// a monster on both sides.
func (s *Store) MarkDead(rec monster.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, rec.ID)
	s.all[rec.ID] = rec
	s.dead[rec.ID] = rec
}

// FindActiveByPod returns the active record whose pod name (or name, when
// no pod name was reported) matches.
func (s *Store) FindActiveByPod(podName string) (monster.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.active {
		if rec.PodName == podName || (rec.PodName == "" && rec.Name == podName) {
			return rec, true
		}
	}
	return monster.Record{}, false
}

// Active returns the live monsters sorted by id.
func (s *Store) Active() []monster.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecords(s.active)
}

// All returns every monster ever seen, sorted by id.
func (s *Store) All() []monster.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecords(s.all)
}

// Dead returns the dead monsters sorted by id.
func (s *Store) Dead() []monster.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecords(s.dead)
}

// CountActive returns the number of live monsters.
func (s *Store) CountActive() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// CountDead returns the number of dead monsters.
func (s *Store) CountDead() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dead)
}

// Timestamps returns the spawn/death timestamps for every monster ever
// seen, sorted by id.
func (s *Store) Timestamps() []Timestamps {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Timestamps, 0, len(s.all))
	for _, rec := range sortedRecords(s.all) {
		out = append(out, Timestamps{
			Name:  rec.Name,
			Spawn: rec.SpawnTimestamp,
			Death: rec.DeathTimestamp,
		})
	}
	return out
}

// RecordAdminKill adds a ledger entry for an operator-triggered kill.
// Entries are keyed by monster id; each id can only die once, so there is
// at most one entry per id.
func (s *Store) RecordAdminKill(id int, name, podName string, killedAt int64) AdminKill {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := AdminKill{
		EntryID:   uuid.NewString(),
		MonsterID: id,
		Name:      name,
		PodName:   podName,
		KilledAt:  killedAt,
	}
	s.adminKills[id] = entry
	return entry
}

// AdminKilled reports whether id died by operator action.
func (s *Store) AdminKilled(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.adminKills[id]
	return ok
}

// AdminKills returns the ledger sorted by monster id.
func (s *Store) AdminKills() []AdminKill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AdminKill, 0, len(s.adminKills))
	for _, entry := range s.adminKills {
		out = append(out, entry)
	}
	slices.SortFunc(out, func(a, b AdminKill) int { return a.MonsterID - b.MonsterID })
	return out
}

// Reset clears every collection and the ledger. This is the only
// operation that removes entries from all or dead.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = make(map[int]monster.Record)
	s.all = make(map[int]monster.Record)
	s.dead = make(map[int]monster.Record)
	s.adminKills = make(map[int]AdminKill)
}

func sortedRecords(m map[int]monster.Record) []monster.Record {
	out := make([]monster.Record, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b monster.Record) int { return a.ID - b.ID })
	return out
}
