package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dreamware/portal/internal/events"
	"github.com/dreamware/portal/internal/metrics"
	"github.com/dreamware/portal/internal/monster"
	"github.com/dreamware/portal/internal/orchestrator"
	"github.com/dreamware/portal/internal/state"
)

// ErrNotFound is returned when an operation names an id the portal has
// never seen.
var ErrNotFound = errors.New("monster not found")

// ErrAlreadyDead is returned when a death transition targets an id that is
// already in the dead collection. Death is at-most-once.
var ErrAlreadyDead = errors.New("monster already dead")

// Orchestrator is the slice of the orchestration client the engine drives.
// Defined here so tests can substitute a fake without touching the real
// cluster transport.
type Orchestrator interface {
	Exists(ctx context.Context, namespace, name string) (bool, error)
	Create(ctx context.Context, namespace string, rec monster.Record) error
	Update(ctx context.Context, namespace string, rec monster.Record) error
	Delete(ctx context.Context, namespace, name string) error
	DeleteAll(ctx context.Context, namespace string) error
}

// Publisher receives lifecycle events. *events.Hub satisfies it; a nil
// publisher disables the feed.
type Publisher interface {
	Publish(events.Event)
}

// Engine is the stateful decision procedure between inbound snapshots,
// the in-memory collections, and the orchestration mirror.
//
// Per-monster lifecycle: Unseen -> Active -> Dead, with Dead terminal.
// Mutating operations are serialized by one engine mutex, so a batch, a
// death event, an admin kill, or a reset never interleave with each other.
// Read endpoints go straight to the state store and are not blocked by
// orchestrator I/O.
type Engine struct {
	store     *state.Store
	orch      Orchestrator
	metrics   *metrics.Metrics
	pub       Publisher
	namespace string

	// now is injectable so tests control timestamps.
	now func() time.Time

	// mu serializes mutating operations, orchestrator calls included.
	mu sync.Mutex
}

// New creates an engine. pub may be nil to disable the event feed.
func New(store *state.Store, orch Orchestrator, m *metrics.Metrics, pub Publisher, namespace string) *Engine {
	return &Engine{
		store:     store,
		orch:      orch,
		metrics:   m,
		pub:       pub,
		namespace: namespace,
		now:       time.Now,
	}
}

// ApplyBatch validates every snapshot in the batch, then applies them in
// array order. Validation is all-or-nothing: one invalid entry rejects the
// whole batch before anything is applied. Entries with no id at all are
// skipped with a warning. Application is not atomic: an orchestrator
// failure aborts the batch at that entry, and local state already applied
// for earlier entries stays applied.
//
// It returns the number of entries applied.
func (e *Engine) ApplyBatch(ctx context.Context, snaps []monster.Snapshot) (int, error) {
	records := make([]monster.Record, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.HasID() {
			log.Printf("reconciler: skipping monster entry without id")
			continue
		}
		rec, err := monster.Parse(snap)
		if err != nil {
			return 0, err
		}
		records = append(records, rec)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	applied := 0
	for _, rec := range records {
		if err := e.step(ctx, rec); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// step runs one state-machine transition for a validated record.
func (e *Engine) step(ctx context.Context, rec monster.Record) error {
	if e.store.IsDead(rec.ID) {
		// Dead is terminal: later snapshots for the id are ignored in
		// full, whatever their isDead flag says.
		log.Printf("reconciler: ignoring snapshot for dead monster %d", rec.ID)
		return nil
	}

	if !e.store.Known(rec.ID) {
		return e.spawn(ctx, rec)
	}
	if rec.Dead {
		// The stored spawn timestamp always wins over whatever the
		// snapshot carries, and the pod correlation survives the death.
		cur, _ := e.store.Get(rec.ID)
		rec.SpawnTimestamp = cur.SpawnTimestamp
		if rec.PodName == "" {
			rec.PodName = cur.PodName
		}
		return e.kill(ctx, rec.ID, rec, false)
	}
	return e.refresh(ctx, rec)
}

// spawn handles Unseen -> Active. The spawn timestamp is assigned here,
// once, and never overwritten afterwards. A snapshot that arrives already
// dead still spawns first so the all-time collection has the record, then
// dies immediately.
func (e *Engine) spawn(ctx context.Context, rec monster.Record) error {
	now := e.now()
	if rec.SpawnTimestamp == nil {
		ts := now.Unix()
		rec.SpawnTimestamp = &ts
	}
	diedOnArrival := rec.Dead
	rec.Dead = false
	rec.DeathTimestamp = nil

	e.metrics.MonsterCreated(now)
	e.store.Insert(rec)
	log.Printf("reconciler: new monster %d (%s)", rec.ID, rec.Name)

	if err := e.createResource(ctx, rec); err != nil {
		return err
	}
	e.publish(events.TypeSpawn, rec, now)

	if diedOnArrival {
		rec.Dead = true
		return e.kill(ctx, rec.ID, rec, false)
	}
	return nil
}

// createResource mirrors a new monster into the cluster. A resource that
// already exists (a retried batch, typically) is a warning, not a failure.
func (e *Engine) createResource(ctx context.Context, rec monster.Record) error {
	exists, err := e.orch.Exists(ctx, e.namespace, rec.ResourceName())
	if err != nil {
		return fmt.Errorf("probe monster resource %s: %w", rec.ResourceName(), err)
	}
	if exists {
		log.Printf("reconciler: resource %s already exists, skipping create", rec.ResourceName())
		return nil
	}
	if err := e.orch.Create(ctx, e.namespace, rec); err != nil {
		if errors.Is(err, orchestrator.ErrAlreadyExists) {
			log.Printf("reconciler: duplicate create for %s: %v", rec.ResourceName(), err)
			return nil
		}
		return err
	}
	return nil
}

// refresh handles Active -> Active: the orchestration mirror is updated
// first, then the local collections, so a transport failure leaves this
// entry unapplied locally. The spawn timestamp of the stored record always
// wins over whatever the snapshot carries.
func (e *Engine) refresh(ctx context.Context, rec monster.Record) error {
	cur, _ := e.store.Get(rec.ID)
	rec.SpawnTimestamp = cur.SpawnTimestamp
	rec.DeathTimestamp = nil
	if rec.PodName == "" {
		rec.PodName = cur.PodName
	}

	if err := e.orch.Update(ctx, e.namespace, rec); err != nil {
		return err
	}
	e.store.Refresh(rec)
	e.publish(events.TypeUpdate, rec, e.now())
	return nil
}

// kill performs Active -> Dead with the given record's field values. The
// caller must hold the engine lock and must have established that the id
// is not already dead.
func (e *Engine) kill(ctx context.Context, id int, rec monster.Record, admin bool) error {
	now := e.now()
	ts := now.Unix()
	rec.Dead = true
	rec.DeathTimestamp = &ts
	rec.AdminKill = admin

	lifespan := time.Duration(-1)
	if rec.SpawnTimestamp != nil {
		lifespan = time.Duration(ts-*rec.SpawnTimestamp) * time.Second
	}
	e.metrics.MonsterDied(now, lifespan)

	e.store.MarkDead(rec)
	if admin {
		e.store.RecordAdminKill(id, rec.Name, rec.PodName, ts)
	}
	log.Printf("reconciler: monster %d (%s) died (admin=%t)", id, rec.Name, admin)

	evType := events.TypeDeath
	if admin {
		evType = events.TypeAdminKill
	}
	e.publish(evType, rec, now)

	if err := e.orch.Delete(ctx, e.namespace, rec.ResourceName()); err != nil {
		// Local state stays applied; the mirror lags until the next
		// successful reconciliation.
		return err
	}
	return nil
}

// Kill applies an explicit out-of-band death event for id.
func (e *Engine) Kill(ctx context.Context, id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("monster %d: %w", id, ErrNotFound)
	}
	if e.store.IsDead(id) {
		return fmt.Errorf("monster %d: %w", id, ErrAlreadyDead)
	}
	return e.kill(ctx, id, rec, false)
}

// AdminKill applies an operator-triggered death for id. Unlike Kill it
// requires the monster to be currently active and records the kill in the
// administrative ledger.
func (e *Engine) AdminKill(ctx context.Context, id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("monster %d: %w", id, ErrNotFound)
	}
	if e.store.IsDead(id) {
		return fmt.Errorf("monster %d: %w", id, ErrAlreadyDead)
	}
	return e.kill(ctx, id, rec, true)
}

// AdminKillByPod is AdminKill keyed by the pod name the cluster controller
// reports when a monster pod is deleted.
func (e *Engine) AdminKillByPod(ctx context.Context, podName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.store.FindActiveByPod(podName)
	if !ok {
		return fmt.Errorf("pod %s: %w", podName, ErrNotFound)
	}
	return e.kill(ctx, rec.ID, rec, true)
}

// Reset clears every collection and the admin ledger, then best-effort
// deletes every mirrored resource in the namespace. The local clear always
// happens; a deletion error is returned for logging but the portal is
// empty regardless, which makes Reset idempotent.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Reset()
	e.publish(events.TypeReset, monster.Record{}, e.now())
	log.Printf("reconciler: monster state reset")

	if err := e.orch.DeleteAll(ctx, e.namespace); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func (e *Engine) publish(t events.Type, rec monster.Record, now time.Time) {
	if e.pub == nil {
		return
	}
	e.pub.Publish(events.Event{
		Type:      t,
		ID:        rec.ID,
		Name:      rec.Name,
		Timestamp: now.Unix(),
	})
}
