package event

import "reflect"

type record struct {
	typ   reflect.Type
	event any
}

// SubscribeUndo registers the inverse of events of type T. From then on every
// Trigger of T is recorded, and Undo replays fn with the recorded event.
func SubscribeUndo[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.undo[t] = append(b.undo[t], func(ev any) { fn(ev.(T)) })
}

// Undo pops the newest recorded event and runs its undo handlers. Events
// triggered while those handlers run are not recorded. It returns false when
// there is nothing to undo.
func (b *Bus) Undo() bool {
	if len(b.history) == 0 {
		return false
	}
	last := b.history[len(b.history)-1]
	b.history[len(b.history)-1] = record{}
	b.history = b.history[:len(b.history)-1]

	b.undoing++
	defer func() { b.undoing-- }()
	for _, h := range b.undo[last.typ] {
		h(last.event)
	}
	return true
}

// History returns the number of undoable events recorded.
func (b *Bus) History() int { return len(b.history) }

// ClearHistory forgets every recorded event.
func (b *Bus) ClearHistory() {
	b.history = b.history[:0]
}
