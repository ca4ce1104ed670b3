package world

import (
	"fmt"

	"github.com/modosynth/modosynth/internal/component"
	"github.com/modosynth/modosynth/internal/core/ecs"
	"github.com/modosynth/modosynth/internal/core/event"
	"github.com/modosynth/modosynth/internal/data"
	"go.uber.org/zap"
)

const (
	portHalfSize   = 1.5
	maxParentDepth = 64
)

// Editor is the patch editor state: blocks with ports, and ropes between
// them, all stored in one ECS World. Accessed only from the loop goroutine.
type Editor struct {
	world     *ecs.World
	c         component.Set
	catalogue *data.Catalogue
	log       *zap.Logger

	rope    ecs.Entity // rope being drawn, valid while drawing
	drawing bool
}

// NewEditor builds an empty editor over the given catalogue.
func NewEditor(catalogue *data.Catalogue, log *zap.Logger, opts ...ecs.Option) *Editor {
	schema, set := component.NewSchema()
	w := ecs.NewWorld(schema, append([]ecs.Option{ecs.WithLogger(log)}, opts...)...)
	e := &Editor{
		world:     w,
		c:         set,
		catalogue: catalogue,
		log:       log,
	}

	bus := w.Events()
	event.Subscribe(bus, func(d ecs.Despawn) { e.despawnDependents(d.Entity) })
	event.SubscribeUndo(bus, func(p Placed) { e.undoSpawn(p.Entity) })
	event.SubscribeUndo(bus, func(c Connect) { e.undoSpawn(c.Entity) })
	return e
}

func (e *Editor) World() *ecs.World           { return e.world }
func (e *Editor) Components() component.Set   { return e.c }
func (e *Editor) Catalogue() *data.Catalogue  { return e.catalogue }
func (e *Editor) Drawing() (ecs.Entity, bool) { return e.rope, e.drawing }

// WorldPosition resolves tf through its parent chain. A missing parent ends
// the chain as if tf were a root.
func (e *Editor) WorldPosition(tf component.Transform) component.Vec2 {
	pos := tf.FromParent
	for depth := 0; tf.HasParent && depth < maxParentDepth; depth++ {
		parent := ecs.Get(e.world, e.c.Transform, tf.Parent)
		if parent == nil {
			break
		}
		pos = pos.Add(parent.FromParent)
		tf = *parent
	}
	return pos
}

func (e *Editor) hit(pos component.Vec2, tf *component.Transform, box *component.Box) bool {
	center := e.WorldPosition(*tf)
	return pos.Within(center.Sub(box.Dim), center.Add(box.Dim))
}

// SpawnBlock places the catalogue block name at pos together with its input
// and output ports, then triggers Placed.
func (e *Editor) SpawnBlock(name string, pos component.Vec2) (ecs.Entity, error) {
	cfg, err := e.catalogue.Get(name)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("spawn block: %w", err)
	}
	half := component.Vec2{X: cfg.Dim[0] / 2, Y: cfg.Dim[1] / 2}
	block, err := e.world.Spawn(
		e.c.Transform.Value(component.Transform{FromParent: pos}),
		e.c.Box.Value(component.Box{
			Dim:      half,
			UVCenter: component.Vec2{X: cfg.UV[0], Y: cfg.UV[1]},
			Texture:  0,
		}),
		e.c.Selectable.Value(component.Selectable{}),
		e.c.Moveable.Value(component.Moveable{}),
	)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("spawn block %q: %w", name, err)
	}
	if err := e.spawnPorts(block, half, true, cfg.Inputs); err != nil {
		return ecs.Entity{}, err
	}
	if err := e.spawnPorts(block, half, false, cfg.Outputs); err != nil {
		return ecs.Entity{}, err
	}

	e.log.Debug("block placed",
		zap.String("block", name),
		zap.Uint32("entity", uint32(block.ID)),
		zap.Int("inputs", cfg.Inputs),
		zap.Int("outputs", cfg.Outputs),
	)
	event.Trigger(e.world.Events(), Placed{Entity: block})
	return block, nil
}

// spawnPorts lines count ports up along the left (inputs) or right (outputs)
// edge of the block. Outputs start ropes; inputs accept them.
func (e *Editor) spawnPorts(parent ecs.Entity, half component.Vec2, isInput bool, count int) error {
	x := half.X + portHalfSize
	if isInput {
		x = -x
	}
	spacing := 2 * half.Y / float64(count+1)
	for i := 0; i < count; i++ {
		values := []ecs.Value{
			e.c.Transform.Value(component.Transform{
				Parent:     parent,
				HasParent:  true,
				FromParent: component.Vec2{X: x, Y: -half.Y + spacing*float64(i+1)},
			}),
			e.c.Box.Value(component.Box{
				Dim:      component.Vec2{X: portHalfSize, Y: portHalfSize},
				UVCenter: component.Vec2{X: portHalfSize, Y: portHalfSize},
				Texture:  1,
			}),
		}
		if isInput {
			values = append(values, e.c.RopeConnectable.Value(component.RopeConnectable{}))
		} else {
			values = append(values, e.c.RopeSpawnable.Value(component.RopeSpawnable{}))
		}
		if _, err := e.world.Spawn(values...); err != nil {
			return fmt.Errorf("spawn port %d of %s: %w", i, parent, err)
		}
	}
	return nil
}

// Press selects the first selectable box under pos. If there is none and pos
// is over a rope-spawnable port, a new rope starts there.
func (e *Editor) Press(pos component.Vec2) error {
	selected := false
	ecs.Run3(e.world, e.c.Transform, e.c.Box, e.c.Selectable,
		func(_ ecs.Entity, tf *component.Transform, box *component.Box, sel *component.Selectable) {
			if selected || !e.hit(pos, tf, box) {
				return
			}
			sel.Selected = true
			selected = true
		})
	if selected {
		return nil
	}

	var (
		start component.Transform
		found bool
	)
	ecs.Run3(e.world, e.c.Transform, e.c.Box, e.c.RopeSpawnable,
		func(_ ecs.Entity, tf *component.Transform, box *component.Box, _ *component.RopeSpawnable) {
			if found || !e.hit(pos, tf, box) {
				return
			}
			start = *tf
			found = true
		})
	if !found {
		return nil
	}

	rope, err := e.world.Spawn(e.c.Rope.Value(component.Rope{
		Start: start,
		End:   component.Transform{FromParent: e.WorldPosition(start)},
	}))
	if err != nil {
		return fmt.Errorf("start rope: %w", err)
	}
	e.rope, e.drawing = rope, true
	return nil
}

// Drag moves the loose end of the rope being drawn to pos, or moves every
// selected moveable by delta.
func (e *Editor) Drag(pos, delta component.Vec2) {
	if e.drawing {
		if r := ecs.Get(e.world, e.c.Rope, e.rope); r != nil && !r.End.HasParent {
			r.End.FromParent = pos
		}
		return
	}
	ecs.Run3(e.world, e.c.Transform, e.c.Moveable, e.c.Selectable,
		func(_ ecs.Entity, tf *component.Transform, _ *component.Moveable, sel *component.Selectable) {
			if sel.Selected {
				tf.FromParent = tf.FromParent.Add(delta)
			}
		})
}

// Release finishes a rope by attaching it to the connectable port under pos
// (triggering Connect) or discarding it. Without a rope it clears selection.
func (e *Editor) Release(pos component.Vec2) error {
	if !e.drawing {
		selectables := ecs.View(e.world, e.c.Selectable)
		for i := range selectables {
			selectables[i].Selected = false
		}
		return nil
	}
	rope := e.rope
	e.drawing = false

	var (
		target ecs.Entity
		offset component.Vec2
		found  bool
	)
	ecs.Run3(e.world, e.c.Transform, e.c.Box, e.c.RopeConnectable,
		func(ent ecs.Entity, tf *component.Transform, box *component.Box, _ *component.RopeConnectable) {
			if found || !e.hit(pos, tf, box) {
				return
			}
			target = ent
			offset = pos.Sub(e.WorldPosition(*tf))
			found = true
		})

	if !found {
		if err := e.world.Despawn(rope); err != nil {
			return fmt.Errorf("discard rope: %w", err)
		}
		return nil
	}
	r := ecs.Get(e.world, e.c.Rope, rope)
	if r == nil {
		return fmt.Errorf("connect rope %s: %w", rope, ecs.ErrPreconditionViolated)
	}
	r.End = component.Transform{Parent: target, HasParent: true, FromParent: offset}
	event.Trigger(e.world.Events(), Connect{Entity: rope})
	return nil
}

// Undo reverts the newest Placed or Connect and applies the despawns it
// cascades into. It reports false when there was nothing to undo.
func (e *Editor) Undo() (bool, error) {
	if !e.world.Events().Undo() {
		return false, nil
	}
	if _, err := e.world.Commands().Flush(); err != nil {
		return true, fmt.Errorf("undo: %w", err)
	}
	return true, nil
}

func (e *Editor) undoSpawn(ent ecs.Entity) {
	if !e.world.Alive(ent) {
		return
	}
	if err := e.world.Despawn(ent); err != nil {
		e.log.Error("undo despawn failed", zap.Uint32("entity", uint32(ent.ID)), zap.Error(err))
		return
	}
	e.log.Debug("undone", zap.Uint32("entity", uint32(ent.ID)))
}

// despawnDependents queues the children of a despawned entity and every rope
// anchored to it. Runs inside Despawn dispatch, so it may only read.
func (e *Editor) despawnDependents(gone ecs.Entity) {
	if e.drawing && e.rope == gone {
		e.drawing = false
	}
	cmd := e.world.Commands()
	ecs.Run1(e.world, e.c.Transform, func(ent ecs.Entity, tf *component.Transform) {
		if tf.HasParent && tf.Parent == gone {
			cmd.Despawn(ent)
		}
	})
	ecs.Run1(e.world, e.c.Rope, func(ent ecs.Entity, r *component.Rope) {
		if (r.Start.HasParent && r.Start.Parent == gone) || (r.End.HasParent && r.End.Parent == gone) {
			cmd.Despawn(ent)
		}
	})
}
