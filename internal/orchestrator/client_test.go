package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynfake "k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/dreamware/portal/internal/monster"
)

const testNS = "dungeon-master-system"

func testRecord() monster.Record {
	return monster.Record{
		ID:                1,
		Name:              "Dragon",
		Type:              "dragon",
		HP:                50,
		MaxHP:             50,
		Depth:             2,
		Position:          monster.Position{X: 3, Y: 4},
		AttackSpeed:       100,
		MovementSpeed:     100,
		Accuracy:          80,
		Defense:           10,
		DamageMin:         5,
		DamageMax:         10,
		TurnsBetweenRegen: 5,
	}
}

func newFakeClient(t *testing.T) (*Client, *dynfake.FakeDynamicClient) {
	t.Helper()
	dyn := dynfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{gvr: "MonsterList"},
	)
	c := NewWithInterface(dyn)
	c.backoff.Duration = time.Millisecond
	return c, dyn
}

func TestClientCreateAndExists(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()

	exists, err := c.Exists(ctx, testNS, "dragon")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Create(ctx, testNS, testRecord()))

	exists, err = c.Exists(ctx, testNS, "dragon")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClientCreateDuplicate(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()

	require.NoError(t, c.Create(ctx, testNS, testRecord()))

	err := c.Create(ctx, testNS, testRecord())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestClientUpdate(t *testing.T) {
	t.Run("merges new values into the spec", func(t *testing.T) {
		c, _ := newFakeClient(t)
		ctx := context.Background()
		require.NoError(t, c.Create(ctx, testNS, testRecord()))

		rec := testRecord()
		rec.HP = 10
		rec.Position = monster.Position{X: 9, Y: 9}
		require.NoError(t, c.Update(ctx, testNS, rec))

		records, err := c.List(ctx, testNS)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 10, records[0].HP)
		assert.Equal(t, monster.Position{X: 9, Y: 9}, records[0].Position)
		// Untouched fields survive the merge.
		assert.Equal(t, 50, records[0].MaxHP)
	})

	t.Run("missing resource is a no-op, never a create", func(t *testing.T) {
		c, _ := newFakeClient(t)
		ctx := context.Background()

		require.NoError(t, c.Update(ctx, testNS, testRecord()))

		exists, err := c.Exists(ctx, testNS, "dragon")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("retries on conflict and succeeds", func(t *testing.T) {
		c, dyn := newFakeClient(t)
		ctx := context.Background()
		require.NoError(t, c.Create(ctx, testNS, testRecord()))

		attempts := 0
		dyn.PrependReactor("update", "monsters", func(k8stesting.Action) (bool, runtime.Object, error) {
			attempts++
			if attempts <= 2 {
				conflict := apierrors.NewConflict(
					schema.GroupResource{Group: group, Resource: resource},
					"dragon", errors.New("the object has been modified"))
				return true, nil, conflict
			}
			return false, nil, nil
		})

		require.NoError(t, c.Update(ctx, testNS, testRecord()))
		assert.Equal(t, 3, attempts)
	})

	t.Run("surfaces conflict after exhausting retries", func(t *testing.T) {
		c, dyn := newFakeClient(t)
		ctx := context.Background()
		require.NoError(t, c.Create(ctx, testNS, testRecord()))

		attempts := 0
		dyn.PrependReactor("update", "monsters", func(k8stesting.Action) (bool, runtime.Object, error) {
			attempts++
			conflict := apierrors.NewConflict(
				schema.GroupResource{Group: group, Resource: resource},
				"dragon", errors.New("the object has been modified"))
			return true, nil, conflict
		})

		err := c.Update(ctx, testNS, testRecord())
		require.Error(t, err)
		assert.True(t, apierrors.IsConflict(err))
		assert.Equal(t, 3, attempts)
	})
}

func TestClientDelete(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, testNS, testRecord()))

	require.NoError(t, c.Delete(ctx, testNS, "dragon"))

	exists, err := c.Exists(ctx, testNS, "dragon")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is a no-op, not an error.
	require.NoError(t, c.Delete(ctx, testNS, "dragon"))
}

func TestClientDeleteAll(t *testing.T) {
	t.Run("removes every resource", func(t *testing.T) {
		c, _ := newFakeClient(t)
		ctx := context.Background()
		for _, name := range []string{"goblin-1", "goblin-2", "goblin-3"} {
			rec := testRecord()
			rec.Name = name
			require.NoError(t, c.Create(ctx, testNS, rec))
		}

		require.NoError(t, c.DeleteAll(ctx, testNS))

		records, err := c.List(ctx, testNS)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("continues past individual failures and returns the last error", func(t *testing.T) {
		c, dyn := newFakeClient(t)
		ctx := context.Background()
		for _, name := range []string{"goblin-1", "goblin-2", "goblin-3"} {
			rec := testRecord()
			rec.Name = name
			require.NoError(t, c.Create(ctx, testNS, rec))
		}

		dyn.PrependReactor("delete", "monsters", func(action k8stesting.Action) (bool, runtime.Object, error) {
			del := action.(k8stesting.DeleteAction)
			if del.GetName() == "goblin-2" {
				return true, nil, errors.New("boom")
			}
			return false, nil, nil
		})

		err := c.DeleteAll(ctx, testNS)
		require.Error(t, err)

		records, listErr := c.List(ctx, testNS)
		require.NoError(t, listErr)
		require.Len(t, records, 1)
		assert.Equal(t, "goblin-2", records[0].Name)
	})
}

func TestFieldMapRoundTrip(t *testing.T) {
	rec := testRecord()
	spawn := int64(1700000000)
	rec.SpawnTimestamp = &spawn
	rec.PodName = "dragon-pod"

	got := recordFromSpec(specFromRecord(rec))
	assert.Equal(t, rec, got)
}

func TestFieldMapOmitsUnsetTimestamps(t *testing.T) {
	spec := specFromRecord(testRecord())
	_, hasSpawn := spec["spawnTimestamp"]
	_, hasDeath := spec["deathTimestamp"]
	assert.False(t, hasSpawn)
	assert.False(t, hasDeath)
}
