package ecs

import (
	"fmt"

	"github.com/modosynth/modosynth/internal/core/event"
	"go.uber.org/zap"
)

const invalidSlot int32 = -1

// record is the per-entity index: the slot of each component in its table
// (invalidSlot where absent) and the active mask. mask.Has(i) holds iff
// slots[i] != invalidSlot.
type record struct {
	slots []int32
	mask  Mask
}

// entry is one registry element. Registry order carries no meaning.
type entry struct {
	entity Entity
	mask   Mask
}

// World is the top-level ECS container. It owns the allocator, one dense table
// per component type, the per-entity index, the registry of live entities,
// the event bus and a deferred command buffer.
//
// A World is not safe for concurrent use.
type World struct {
	schema   *Schema
	alloc    *Allocator
	tables   []column
	index    map[EntityID]*record
	registry []entry
	position map[EntityID]int // registry position of each live entity
	bus      *event.Bus
	commands *CommandBuffer
	log      *zap.Logger

	busy int // >0 while a query runs or a structural event is being dispatched
}

type options struct {
	capacity  int
	allocator *Allocator
	bus       *event.Bus
	log       *zap.Logger
}

// Option configures NewWorld.
type Option func(*options)

// WithCapacity preallocates room for n entities per table.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithAllocator injects the identity allocator, e.g. a seeded one for replay.
func WithAllocator(a *Allocator) Option {
	return func(o *options) { o.allocator = a }
}

// WithBus shares an existing event bus with the World.
func WithBus(b *event.Bus) Option {
	return func(o *options) { o.bus = b }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// NewWorld freezes schema and builds an empty World over it.
func NewWorld(schema *Schema, opts ...Option) *World {
	o := options{capacity: 256}
	for _, opt := range opts {
		opt(&o)
	}
	if o.allocator == nil {
		o.allocator = NewAllocator()
	}
	if o.bus == nil {
		o.bus = event.NewBus()
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	schema.frozen = true
	w := &World{
		schema:   schema,
		alloc:    o.allocator,
		tables:   make([]column, len(schema.tables)),
		index:    make(map[EntityID]*record, o.capacity),
		registry: make([]entry, 0, o.capacity),
		position: make(map[EntityID]int, o.capacity),
		bus:      o.bus,
		log:      o.log,
	}
	for i, newTable := range schema.tables {
		w.tables[i] = newTable(o.capacity)
	}
	w.commands = newCommandBuffer(w)
	return w
}

func (w *World) Schema() *Schema          { return w.schema }
func (w *World) Allocator() *Allocator    { return w.alloc }
func (w *World) Events() *event.Bus       { return w.bus }
func (w *World) Commands() *CommandBuffer { return w.commands }
func (w *World) Len() int                 { return len(w.registry) }

// MarkForDestruction queues e for despawn on the next Commands().Flush().
func (w *World) MarkForDestruction(e Entity) {
	w.commands.Despawn(e)
}

// Alive reports whether e is in the registry.
func (w *World) Alive(e Entity) bool {
	_, ok := w.position[e.ID]
	return ok
}

// Entities returns a snapshot of the live entities in registry order.
func (w *World) Entities() []Entity {
	out := make([]Entity, len(w.registry))
	for i, en := range w.registry {
		out[i] = en.entity
	}
	return out
}

// Mask returns the active-component set of e.
func (w *World) Mask(e Entity) (Mask, bool) {
	rec, ok := w.index[e.ID]
	if !ok {
		return Mask{}, false
	}
	return rec.mask, true
}

// Has reports whether e currently holds component id.
func (w *World) Has(e Entity, id ComponentID) bool {
	rec, ok := w.index[e.ID]
	return ok && rec.mask.Has(id)
}

// Spawn creates an entity holding the given component values and fires
// Spawn once every value is stored. When a type appears twice the last value
// wins.
func (w *World) Spawn(values ...Value) (Entity, error) {
	if err := w.checkSpawn(values); err != nil {
		return Entity{}, err
	}
	e, err := w.alloc.Next()
	if err != nil {
		return Entity{}, fmt.Errorf("spawn: %w", err)
	}
	// A rewound allocator can hand out a live identity.
	if _, ok := w.position[e.ID]; ok {
		return Entity{}, fmt.Errorf("spawn %s: already live: %w", e, ErrPreconditionViolated)
	}
	return w.spawn(e, values)
}

// SpawnWith is Spawn with a caller-chosen identity. The allocator is moved
// past id. Reusing the identity of a live entity is rejected.
func (w *World) SpawnWith(id EntityID, values ...Value) (Entity, error) {
	if err := w.checkSpawn(values); err != nil {
		return Entity{}, err
	}
	if _, ok := w.position[id]; ok {
		return Entity{}, fmt.Errorf("spawn with id %d: already live: %w", id, ErrPreconditionViolated)
	}
	return w.spawn(w.alloc.Force(id), values)
}

func (w *World) checkSpawn(values []Value) error {
	if w.busy > 0 {
		return fmt.Errorf("spawn: %w", ErrReentrantMutation)
	}
	for _, v := range values {
		if !v.fits(w) {
			return fmt.Errorf("spawn with component %d: %w", v.ComponentID(), ErrUnknownComponent)
		}
	}
	return nil
}

func (w *World) spawn(e Entity, values []Value) (Entity, error) {
	rec := w.newRecord()
	for _, v := range values {
		id := v.ComponentID()
		if rec.mask.Has(id) {
			if err := v.storeAt(w, int(rec.slots[id])); err != nil {
				return Entity{}, fmt.Errorf("spawn %s: %w", e, err)
			}
			continue
		}
		rec.slots[id] = int32(v.appendTo(w, e))
		rec.mask.Set(id)
	}
	w.index[e.ID] = rec
	w.position[e.ID] = len(w.registry)
	w.registry = append(w.registry, entry{entity: e, mask: rec.mask})

	w.log.Debug("entity spawned", zap.Uint32("entity", uint32(e.ID)), zap.Int("components", len(values)))

	trigger(w, Spawn{Entity: e})
	return e, nil
}

// trigger delivers a lifecycle event with structural mutation blocked.
func trigger[T any](w *World, ev T) {
	done := w.enter()
	defer done()
	event.Trigger(w.bus, ev)
}

// Despawn removes e from the registry, fires Despawn while its components are
// still readable, then drops its component values.
func (w *World) Despawn(e Entity) error {
	if w.busy > 0 {
		return fmt.Errorf("despawn %s: %w", e, ErrReentrantMutation)
	}
	if len(w.registry) == 0 {
		return fmt.Errorf("despawn %s: registry is empty: %w", e, ErrPreconditionViolated)
	}
	pos, ok := w.position[e.ID]
	if !ok {
		return fmt.Errorf("despawn %s: not live: %w", e, ErrPreconditionViolated)
	}

	last := len(w.registry) - 1
	if pos != last {
		w.registry[pos] = w.registry[last]
		w.position[w.registry[pos].entity.ID] = pos
	}
	w.registry = w.registry[:last]
	delete(w.position, e.ID)

	trigger(w, Despawn{Entity: e})

	// Components go only after the event so handlers can read final values.
	rec := w.index[e.ID]
	delete(w.index, e.ID)

	w.log.Debug("entity despawned", zap.Uint32("entity", uint32(e.ID)))

	for i := range rec.slots {
		id := ComponentID(i)
		if !rec.mask.Has(id) {
			continue
		}
		if err := w.removeSlot(id, rec.slots[i]); err != nil {
			return fmt.Errorf("despawn %s: %w", e, err)
		}
	}
	return nil
}

// removeSlot swap-removes one table slot and points the moved entity's record
// at its new position.
func (w *World) removeSlot(id ComponentID, slot int32) error {
	col := w.tables[id]
	movedFrom, moved, err := col.SwapRemove(int(slot))
	if err != nil {
		return fmt.Errorf("remove %s: %w", w.schema.Name(id), err)
	}
	if !moved {
		return nil
	}
	owner := col.Owner(int(slot))
	rec, ok := w.index[owner.ID]
	if !ok || rec.slots[id] != int32(movedFrom) {
		return fmt.Errorf("remove %s: %s did not own slot %d: %w", w.schema.Name(id), owner, movedFrom, ErrOutOfRange)
	}
	rec.slots[id] = slot
	return nil
}

func (w *World) newRecord() *record {
	rec := &record{slots: make([]int32, len(w.tables))}
	for i := range rec.slots {
		rec.slots[i] = invalidSlot
	}
	return rec
}

// enter marks the World busy until the returned func is called.
func (w *World) enter() func() {
	w.busy++
	return func() { w.busy-- }
}

// setMask keeps the registry copy of e's mask in step with its record.
func (w *World) setMask(e Entity, m Mask) {
	if pos, ok := w.position[e.ID]; ok {
		w.registry[pos].mask = m
	}
}

// Get returns e's value of component c, or nil when e does not hold it or is
// not live. The pointer is valid until the next structural mutation.
func Get[T any](w *World, c Component[T], e Entity) *T {
	t, ok := c.table(w)
	if !ok {
		return nil
	}
	rec, ok := w.index[e.ID]
	if !ok || !rec.mask.Has(c.id) {
		return nil
	}
	p, err := t.At(int(rec.slots[c.id]))
	if err != nil {
		w.log.DPanic("stale component slot", zap.Uint32("entity", uint32(e.ID)), zap.Error(err))
		return nil
	}
	return p
}

// Add attaches v to the live entity e, overwriting any existing value of the
// same type. It does not fire Spawn.
func Add[T any](w *World, c Component[T], e Entity, v T) error {
	if w.busy > 0 {
		return fmt.Errorf("add to %s: %w", e, ErrReentrantMutation)
	}
	t, ok := c.table(w)
	if !ok {
		return fmt.Errorf("add to %s: %w", e, ErrUnknownComponent)
	}
	if !w.Alive(e) {
		return fmt.Errorf("add to %s: not live: %w", e, ErrPreconditionViolated)
	}
	rec := w.index[e.ID]
	if rec.mask.Has(c.id) {
		p, err := t.At(int(rec.slots[c.id]))
		if err != nil {
			return fmt.Errorf("add to %s: %w", e, err)
		}
		*p = v
		return nil
	}
	rec.slots[c.id] = int32(t.Append(e, v))
	rec.mask.Set(c.id)
	w.setMask(e, rec.mask)
	return nil
}

// Remove detaches component c from the live entity e. Removing a component the
// entity does not hold is a no-op.
func Remove[T any](w *World, c Component[T], e Entity) error {
	if w.busy > 0 {
		return fmt.Errorf("remove from %s: %w", e, ErrReentrantMutation)
	}
	if _, ok := c.table(w); !ok {
		return fmt.Errorf("remove from %s: %w", e, ErrUnknownComponent)
	}
	if !w.Alive(e) {
		return fmt.Errorf("remove from %s: not live: %w", e, ErrPreconditionViolated)
	}
	rec := w.index[e.ID]
	if !rec.mask.Has(c.id) {
		return nil
	}
	slot := rec.slots[c.id]
	rec.slots[c.id] = invalidSlot
	rec.mask.Unset(c.id)
	w.setMask(e, rec.mask)
	if err := w.removeSlot(c.id, slot); err != nil {
		return fmt.Errorf("remove from %s: %w", e, err)
	}
	return nil
}

// View exposes the dense values of component c in table order. The slice is
// valid until the next structural mutation.
func View[T any](w *World, c Component[T]) []T {
	t, ok := c.table(w)
	if !ok {
		return nil
	}
	return t.Values()
}
