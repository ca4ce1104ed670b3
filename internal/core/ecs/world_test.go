package ecs

import (
	"math"
	"math/rand"
	"testing"

	"github.com/modosynth/modosynth/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSpawnGetRoundTrip(t *testing.T) {
	f := newFixture(t)
	e := f.spawn(t, f.pos.Value(Position{X: 1, Y: 2}), f.tag.Value(Tag{}))

	p := Get(f.w, f.pos, e)
	require.NotNil(t, p)
	assert.Equal(t, Position{X: 1, Y: 2}, *p)
	assert.NotNil(t, Get(f.w, f.tag, e))
	assert.Nil(t, Get(f.w, f.vel, e), "absent component is a nil lookup, not an error")

	p.X = 10
	assert.Equal(t, 10.0, Get(f.w, f.pos, e).X, "writes through the pointer persist")

	assert.True(t, f.w.Alive(e))
	assert.True(t, f.w.Has(e, f.pos.ID()))
	assert.False(t, f.w.Has(e, f.vel.ID()))
	m, ok := f.w.Mask(e)
	require.True(t, ok)
	assert.Equal(t, MaskOf(f.pos.ID(), f.tag.ID()), m)
	checkIndex(t, f.w)
}

func TestSpawnDuplicateTypeKeepsLast(t *testing.T) {
	f := newFixture(t)
	e := f.spawn(t, f.pos.Value(Position{X: 1}), f.pos.Value(Position{X: 2}))

	assert.Equal(t, Position{X: 2}, *Get(f.w, f.pos, e))
	assert.Len(t, View(f.w, f.pos), 1)
	checkIndex(t, f.w)
}

func TestSpawnWith(t *testing.T) {
	f := newFixture(t)

	e, err := f.w.SpawnWith(10, f.tag.Value(Tag{}))
	require.NoError(t, err)
	assert.Equal(t, EntityID(10), e.ID)
	assert.Equal(t, EntityID(11), f.spawn(t).ID)

	_, err = f.w.SpawnWith(10)
	assert.ErrorIs(t, err, ErrPreconditionViolated)

	require.NoError(t, f.w.Despawn(e))
	again, err := f.w.SpawnWith(10)
	require.NoError(t, err, "a despawned identity may be forced again")
	assert.Equal(t, EntityID(10), again.ID)
	assert.Equal(t, EntityID(12), f.spawn(t).ID, "forcing a lower id does not rewind")
}

func TestSpawnIdentityExhausted(t *testing.T) {
	alloc := NewAllocator()
	alloc.Seed(math.MaxUint32)
	f := newFixture(t, WithAllocator(alloc))

	f.spawn(t)
	_, err := f.w.Spawn(f.tag.Value(Tag{}))
	assert.ErrorIs(t, err, ErrIdentityExhausted)
	assert.Equal(t, 1, f.w.Len())
	assert.Empty(t, View(f.w, f.tag), "failed spawn stores nothing")
}

func TestSpawnRewoundOverLiveEntity(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(t, f.pos.Value(Position{X: 1}))
	f.w.Allocator().Seed(a.ID)

	_, err := f.w.Spawn(f.pos.Value(Position{X: 2}))
	assert.ErrorIs(t, err, ErrPreconditionViolated)
	assert.Equal(t, 1, f.w.Len())
	assert.Equal(t, Position{X: 1}, *Get(f.w, f.pos, a))
	checkIndex(t, f.w)

	b := f.spawn(t, f.pos.Value(Position{X: 3}))
	assert.Equal(t, a.ID+1, b.ID, "the allocator moved past the live identity")
	require.NoError(t, f.w.Despawn(a))
	assert.Len(t, View(f.w, f.pos), 1)
	checkIndex(t, f.w)
}

func TestUnknownComponent(t *testing.T) {
	f := newFixture(t)
	other := NewSchema()
	foreign := Register[Position](other)

	_, err := f.w.Spawn(foreign.Value(Position{}))
	assert.ErrorIs(t, err, ErrUnknownComponent)
	assert.Equal(t, 0, f.w.Len())

	e := f.spawn(t, f.pos.Value(Position{}))
	assert.Nil(t, Get(f.w, foreign, e))
	assert.ErrorIs(t, Add(f.w, foreign, e, Position{}), ErrUnknownComponent)
	assert.Nil(t, View(f.w, foreign))
}

func TestRegisterAfterFreezePanics(t *testing.T) {
	s := NewSchema()
	Register[Position](s)
	NewWorld(s)
	assert.Panics(t, func() { Register[Velocity](s) })
	assert.Equal(t, "ecs.Position", s.Name(0))
}

func TestDespawn(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(t, f.pos.Value(Position{X: 0, Y: 0}), f.tag.Value(Tag{}))
	b := f.spawn(t, f.pos.Value(Position{X: 1, Y: 1}))

	var visited []Entity
	Run2(f.w, f.pos, f.tag, func(e Entity, _ *Position, _ *Tag) { visited = append(visited, e) })
	assert.Equal(t, []Entity{a}, visited)

	require.NoError(t, f.w.Despawn(a))

	visited = nil
	Run1(f.w, f.pos, func(e Entity, _ *Position) { visited = append(visited, e) })
	assert.Equal(t, []Entity{b}, visited)
	assert.Nil(t, Get(f.w, f.pos, a))
	assert.Nil(t, Get(f.w, f.tag, a))
	assert.False(t, f.w.Alive(a))
	assert.Equal(t, Position{X: 1, Y: 1}, *Get(f.w, f.pos, b))
	checkIndex(t, f.w)
}

func TestDespawnMiddleRelocatesLast(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(t, f.pos.Value(Position{X: 1}))
	b := f.spawn(t, f.pos.Value(Position{X: 2}))
	c := f.spawn(t, f.pos.Value(Position{X: 3}))
	require.Equal(t, int32(2), f.w.index[c.ID].slots[f.pos.ID()])

	require.NoError(t, f.w.Despawn(b))

	assert.Equal(t, int32(0), f.w.index[a.ID].slots[f.pos.ID()], "a is untouched")
	assert.Equal(t, int32(1), f.w.index[c.ID].slots[f.pos.ID()], "c moved into b's slot")
	assert.Equal(t, Position{X: 1}, *Get(f.w, f.pos, a))
	assert.Equal(t, Position{X: 3}, *Get(f.w, f.pos, c))
	assert.Equal(t, []Position{{X: 1}, {X: 3}}, View(f.w, f.pos))
	checkIndex(t, f.w)
}

func TestDespawnPreconditions(t *testing.T) {
	f := newFixture(t)

	err := f.w.Despawn(Entity{ID: 0})
	assert.ErrorIs(t, err, ErrPreconditionViolated, "empty registry")

	e := f.spawn(t, f.tag.Value(Tag{}))
	assert.ErrorIs(t, f.w.Despawn(Entity{ID: 99}), ErrPreconditionViolated)

	require.NoError(t, f.w.Despawn(e))
	f.spawn(t)
	assert.ErrorIs(t, f.w.Despawn(e), ErrPreconditionViolated, "double despawn")
}

func TestLifecycleEvents(t *testing.T) {
	f := newFixture(t)
	bus := f.w.Events()

	var onSpawn, onDespawn []Position
	event.Subscribe(bus, func(s Spawn) {
		p := Get(f.w, f.pos, s.Entity)
		require.NotNil(t, p, "spawn handlers see stored components")
		onSpawn = append(onSpawn, *p)
	})
	event.Subscribe(bus, func(d Despawn) {
		assert.False(t, f.w.Alive(d.Entity), "registry entry is gone first")
		p := Get(f.w, f.pos, d.Entity)
		require.NotNil(t, p, "despawn handlers still see components")
		onDespawn = append(onDespawn, *p)
	})

	e := f.spawn(t, f.pos.Value(Position{X: 5}))
	Get(f.w, f.pos, e).X = 6
	require.NoError(t, f.w.Despawn(e))

	assert.Equal(t, []Position{{X: 5}}, onSpawn)
	assert.Equal(t, []Position{{X: 6}}, onDespawn, "final value, not the spawn value")
}

func TestMutationInsideHandlersIsRejected(t *testing.T) {
	f := newFixture(t)
	var errs []error
	event.Subscribe(f.w.Events(), func(s Spawn) {
		_, err := f.w.Spawn()
		errs = append(errs, err)
	})
	event.Subscribe(f.w.Events(), func(d Despawn) {
		errs = append(errs, f.w.Despawn(d.Entity))
	})

	e := f.spawn(t, f.tag.Value(Tag{}))
	require.NoError(t, f.w.Despawn(e))

	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrReentrantMutation)
	}
	assert.Equal(t, 0, f.w.Len())
	checkIndex(t, f.w)
}

func TestPanickingHandlerReleasesWorld(t *testing.T) {
	f := newFixture(t)
	fail := true
	event.Subscribe(f.w.Events(), func(s Spawn) {
		if fail {
			panic("handler failed")
		}
	})

	assert.Panics(t, func() { _, _ = f.w.Spawn(f.tag.Value(Tag{})) })
	fail = false

	e := f.spawn(t, f.tag.Value(Tag{}))
	require.NoError(t, f.w.Despawn(e), "a recovered handler panic leaves the world mutable")
}

func TestAddRemove(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(t, f.pos.Value(Position{X: 1}))
	b := f.spawn(t, f.pos.Value(Position{X: 2}), f.vel.Value(Velocity{X: 2}))

	require.NoError(t, Add(f.w, f.vel, a, Velocity{X: 1}))
	assert.Equal(t, Velocity{X: 1}, *Get(f.w, f.vel, a))
	require.NoError(t, Add(f.w, f.vel, a, Velocity{X: 9}), "overwrite")
	assert.Equal(t, Velocity{X: 9}, *Get(f.w, f.vel, a))
	assert.Len(t, View(f.w, f.vel), 2)
	checkIndex(t, f.w)

	n := 0
	Run2(f.w, f.pos, f.vel, func(Entity, *Position, *Velocity) { n++ })
	assert.Equal(t, 2, n, "query sees the added component")

	require.NoError(t, Remove(f.w, f.vel, b))
	assert.Nil(t, Get(f.w, f.vel, b))
	assert.Equal(t, Velocity{X: 9}, *Get(f.w, f.vel, a), "a's velocity relocated correctly")
	require.NoError(t, Remove(f.w, f.vel, b), "removing an absent component is a no-op")
	checkIndex(t, f.w)

	n = 0
	Run2(f.w, f.pos, f.vel, func(Entity, *Position, *Velocity) { n++ })
	assert.Equal(t, 1, n)

	require.NoError(t, f.w.Despawn(a))
	assert.ErrorIs(t, Add(f.w, f.vel, a, Velocity{}), ErrPreconditionViolated)
	assert.ErrorIs(t, Remove(f.w, f.vel, a), ErrPreconditionViolated)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixture(t, WithLogger(zap.New(core)))

	e := f.spawn(t, f.tag.Value(Tag{}))
	require.NoError(t, f.w.Despawn(e))

	spawned := logs.FilterMessage("entity spawned").All()
	require.Len(t, spawned, 1)
	assert.Equal(t, uint32(e.ID), spawned[0].ContextMap()["entity"])
	assert.Equal(t, 1, logs.FilterMessage("entity despawned").Len())
}

// TestRandomChurn drives random spawns, despawns, adds and removes and checks
// after every step that each live entity still reads back its own values.
func TestRandomChurn(t *testing.T) {
	f := newFixture(t, WithCapacity(4))
	rng := rand.New(rand.NewSource(1))

	type want struct {
		pos Position
		vel *Velocity
	}
	model := make(map[Entity]want)
	var live []Entity

	for step := 0; step < 1500; step++ {
		switch r := rng.Intn(10); {
		case r < 5 || len(live) == 0:
			x := float64(step)
			values := []Value{f.pos.Value(Position{X: x, Y: -x})}
			w := want{pos: Position{X: x, Y: -x}}
			if rng.Intn(2) == 0 {
				v := Velocity{X: x}
				w.vel = &v
				values = append(values, f.vel.Value(v))
			}
			e := f.spawn(t, values...)
			model[e] = w
			live = append(live, e)
		case r < 8:
			i := rng.Intn(len(live))
			e := live[i]
			require.NoError(t, f.w.Despawn(e))
			delete(model, e)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		case r < 9:
			e := live[rng.Intn(len(live))]
			v := Velocity{Y: float64(step)}
			require.NoError(t, Add(f.w, f.vel, e, v))
			w := model[e]
			w.vel = &v
			model[e] = w
		default:
			e := live[rng.Intn(len(live))]
			require.NoError(t, Remove(f.w, f.vel, e))
			w := model[e]
			w.vel = nil
			model[e] = w
		}

		checkIndex(t, f.w)
		for e, w := range model {
			p := Get(f.w, f.pos, e)
			require.NotNil(t, p)
			require.Equal(t, w.pos, *p, "position of %s at step %d", e, step)
			v := Get(f.w, f.vel, e)
			if w.vel == nil {
				require.Nil(t, v)
			} else {
				require.NotNil(t, v)
				require.Equal(t, *w.vel, *v)
			}
		}
	}
}
