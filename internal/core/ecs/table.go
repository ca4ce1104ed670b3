package ecs

import "fmt"

// column is the type-erased face of a Table that the World needs for removal.
type column interface {
	Len() int
	SwapRemove(slot int) (movedFrom int, moved bool, err error)
	Owner(slot int) Entity
}

// Table is the dense sequence of one component type. Values are packed with no
// holes; removal swaps the last element into the freed slot. owners[i] is the
// entity holding values[i], which lets the World repair its index after a
// swap in O(1).
type Table[T any] struct {
	values []T
	owners []Entity
}

func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{
		values: make([]T, 0, capacity),
		owners: make([]Entity, 0, capacity),
	}
}

// Append pushes v for owner and returns its slot.
func (t *Table[T]) Append(owner Entity, v T) int {
	t.values = append(t.values, v)
	t.owners = append(t.owners, owner)
	return len(t.values) - 1
}

// At returns a pointer into the table. The pointer stays valid until the next
// Append or SwapRemove.
func (t *Table[T]) At(slot int) (*T, error) {
	if slot < 0 || slot >= len(t.values) {
		return nil, fmt.Errorf("read slot %d of %d: %w", slot, len(t.values), ErrOutOfRange)
	}
	return &t.values[slot], nil
}

// Owner returns the entity holding the value at slot, or the zero Entity if
// slot is not valid.
func (t *Table[T]) Owner(slot int) Entity {
	if slot < 0 || slot >= len(t.owners) {
		return Entity{}
	}
	return t.owners[slot]
}

func (t *Table[T]) Len() int { return len(t.values) }

// Values exposes the packed values.
func (t *Table[T]) Values() []T { return t.values }

// SwapRemove deletes the value at slot by moving the last value into it. When
// a move happened it reports the former last index; moved is false when slot
// was the last element.
func (t *Table[T]) SwapRemove(slot int) (movedFrom int, moved bool, err error) {
	if slot < 0 || slot >= len(t.values) {
		return 0, false, fmt.Errorf("swap-remove slot %d of %d: %w", slot, len(t.values), ErrOutOfRange)
	}
	end := len(t.values) - 1
	if slot != end {
		t.values[slot] = t.values[end]
		t.owners[slot] = t.owners[end]
		moved = true
	}
	var zero T
	t.values[end] = zero // drop references held by the popped value
	t.values = t.values[:end]
	t.owners = t.owners[:end]
	return end, moved, nil
}
