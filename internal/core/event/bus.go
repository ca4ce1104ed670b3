package event

import "reflect"

// Bus delivers typed events to handlers. Trigger is synchronous; Emit defers
// delivery to the next SwapBuffers/DispatchAll pair, which the system runner
// calls once per tick. Handlers run on the caller's goroutine in the order they
// were subscribed. A Bus is not safe for concurrent use.
type Bus struct {
	handlers map[reflect.Type][]any
	front    []func()
	back     []func()

	undo    map[reflect.Type][]func(any)
	history []record
	undoing int
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]any),
		front:    make([]func(), 0, 64),
		back:     make([]func(), 0, 64),
		undo:     make(map[reflect.Type][]func(any)),
	}
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Trigger calls every handler of T with event, in subscription order. If T has
// undo handlers the event is recorded in the undo history first.
func Trigger[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if b.undoing == 0 && len(b.undo[t]) > 0 {
		b.history = append(b.history, record{typ: t, event: event})
	}
	for _, h := range b.handlers[t] {
		h.(func(T))(event)
	}
}

// Emit queues an event into the back buffer (delivered after the next
// SwapBuffers and DispatchAll).
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, func() { Trigger(b, event) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers all front-buffer events in emission order. Events
// emitted by handlers land in the back buffer and wait for the next swap.
func (b *Bus) DispatchAll() {
	for _, deliver := range b.front {
		deliver()
	}
	b.front = b.front[:0]
}

// Pending returns the number of emitted events not yet dispatched.
func (b *Bus) Pending() int {
	return len(b.front) + len(b.back)
}
