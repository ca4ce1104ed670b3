package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ Current, Max int }
type Tag struct{}

type fixture struct {
	w      *World
	pos    Component[Position]
	vel    Component[Velocity]
	health Component[Health]
	tag    Component[Tag]
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s := NewSchema()
	f := &fixture{
		pos:    Register[Position](s),
		vel:    Register[Velocity](s),
		health: Register[Health](s),
		tag:    Register[Tag](s),
	}
	f.w = NewWorld(s, opts...)
	return f
}

func (f *fixture) spawn(t *testing.T, values ...Value) Entity {
	t.Helper()
	e, err := f.w.Spawn(values...)
	require.NoError(t, err)
	return e
}

// checkIndex verifies the index, the registry and every table agree.
func checkIndex(t *testing.T, w *World) {
	t.Helper()
	require.Len(t, w.registry, len(w.index))
	require.Len(t, w.position, len(w.index))

	perTable := make([]int, len(w.tables))
	for pos, en := range w.registry {
		require.Equal(t, pos, w.position[en.entity.ID], "registry position of %s", en.entity)
		rec, ok := w.index[en.entity.ID]
		require.True(t, ok, "%s in registry but not indexed", en.entity)
		require.Equal(t, rec.mask, en.mask, "registry mask copy of %s", en.entity)

		for i, slot := range rec.slots {
			has := rec.mask.Has(ComponentID(i))
			require.Equal(t, has, slot != invalidSlot, "mask/slot mismatch for %s component %d", en.entity, i)
			if !has {
				continue
			}
			perTable[i]++
			require.Less(t, int(slot), w.tables[i].Len())
			require.Equal(t, en.entity, w.tables[i].Owner(int(slot)), "slot %d of component %d", slot, i)
		}
	}
	for i, col := range w.tables {
		require.Equal(t, perTable[i], col.Len(), "table %d holds values of dead entities", i)
	}
}
