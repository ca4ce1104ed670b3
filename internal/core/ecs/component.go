package ecs

import "fmt"

// MaxComponents is the size of the closed component set a Schema can hold.
const MaxComponents = 256

// ComponentID is the position of a component type within its Schema.
type ComponentID uint8

// Schema is the closed set of component types a World stores. Types are
// registered up front with Register; NewWorld freezes the schema.
type Schema struct {
	names  []string
	tables []func(capacity int) column
	frozen bool
}

func NewSchema() *Schema {
	return &Schema{
		names:  make([]string, 0, 16),
		tables: make([]func(int) column, 0, 16),
	}
}

// Len returns the number of registered component types.
func (s *Schema) Len() int { return len(s.tables) }

// Name returns the Go type name of component id.
func (s *Schema) Name(id ComponentID) string {
	if int(id) >= len(s.names) {
		return fmt.Sprintf("component#%d", id)
	}
	return s.names[id]
}

// Component is the typed handle for one registered component type.
type Component[T any] struct {
	id     ComponentID
	schema *Schema
}

// Register adds T to the schema and returns its handle. It panics when the
// schema is frozen or full; both are construction-time mistakes.
func Register[T any](s *Schema) Component[T] {
	if s.frozen {
		panic("ecs: Register called after the schema was frozen by NewWorld")
	}
	if len(s.tables) >= MaxComponents {
		panic("ecs: too many component types")
	}
	id := ComponentID(len(s.tables))
	var zero T
	s.names = append(s.names, fmt.Sprintf("%T", zero))
	s.tables = append(s.tables, func(capacity int) column {
		return NewTable[T](capacity)
	})
	return Component[T]{id: id, schema: s}
}

func (c Component[T]) ID() ComponentID { return c.id }

// Mask returns the single-bit mask of this component.
func (c Component[T]) Mask() Mask { return MaskOf(c.id) }

// Value binds v to this component type so it can be passed to Spawn.
func (c Component[T]) Value(v T) Value {
	return value[T]{id: c.id, schema: c.schema, v: v}
}

func (c Component[T]) table(w *World) (*Table[T], bool) {
	if c.schema != w.schema || int(c.id) >= len(w.tables) {
		return nil, false
	}
	t, ok := w.tables[c.id].(*Table[T])
	return t, ok
}

// Value is one element of the closed component union: a component value
// tagged with the type it belongs to.
type Value interface {
	ComponentID() ComponentID
	fits(w *World) bool
	appendTo(w *World, owner Entity) int
	storeAt(w *World, slot int) error
}

type value[T any] struct {
	id     ComponentID
	schema *Schema
	v      T
}

func (v value[T]) ComponentID() ComponentID { return v.id }

func (v value[T]) handle() Component[T] { return Component[T]{id: v.id, schema: v.schema} }

func (v value[T]) fits(w *World) bool {
	_, ok := v.handle().table(w)
	return ok
}

func (v value[T]) appendTo(w *World, owner Entity) int {
	t, _ := v.handle().table(w)
	return t.Append(owner, v.v)
}

func (v value[T]) storeAt(w *World, slot int) error {
	t, _ := v.handle().table(w)
	p, err := t.At(slot)
	if err != nil {
		return err
	}
	*p = v.v
	return nil
}
