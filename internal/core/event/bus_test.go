package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type moved struct{ Dx int }
type renamed struct{ Name string }

func TestTriggerRunsHandlersInOrder(t *testing.T) {
	b := NewBus()
	var calls []string
	Subscribe(b, func(e moved) { calls = append(calls, "first") })
	Subscribe(b, func(e moved) { calls = append(calls, "second") })
	Subscribe(b, func(e renamed) { calls = append(calls, "renamed:"+e.Name) })

	Trigger(b, moved{Dx: 1})
	assert.Equal(t, []string{"first", "second"}, calls)

	Trigger(b, renamed{Name: "vco"})
	assert.Equal(t, []string{"first", "second", "renamed:vco"}, calls)
}

func TestTriggerWithoutHandlers(t *testing.T) {
	b := NewBus()
	assert.NotPanics(t, func() { Trigger(b, moved{}) })
	assert.Equal(t, 0, b.History(), "events without undo handlers are not recorded")
}

func TestEmitIsDeferredOneTick(t *testing.T) {
	b := NewBus()
	total := 0
	Subscribe(b, func(e moved) {
		total += e.Dx
		if e.Dx == 1 {
			// emitted from a handler: lands in the next tick
			Emit(b, moved{Dx: 100})
		}
	})

	Emit(b, moved{Dx: 1})
	Emit(b, moved{Dx: 2})
	assert.Equal(t, 0, total)
	assert.Equal(t, 2, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 103, total)
	assert.Equal(t, 0, b.Pending())
}
