package ecs

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// maxFlushRounds bounds how many times Flush re-drains commands queued by the
// handlers of commands it just applied.
const maxFlushRounds = 16

// CommandBuffer collects spawn and despawn requests made while the World is
// being iterated or is dispatching events, and applies them later with Flush.
type CommandBuffer struct {
	world    *World
	despawns []Entity
	spawns   [][]Value
}

func newCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{
		world:    w,
		despawns: make([]Entity, 0, 64),
		spawns:   make([][]Value, 0, 16),
	}
}

// Spawn queues an entity to be spawned on the next Flush.
func (b *CommandBuffer) Spawn(values ...Value) {
	b.spawns = append(b.spawns, values)
}

// Despawn queues e for destruction on the next Flush.
func (b *CommandBuffer) Despawn(e Entity) {
	b.despawns = append(b.despawns, e)
}

// Len returns the number of queued commands.
func (b *CommandBuffer) Len() int {
	return len(b.despawns) + len(b.spawns)
}

// Flush applies queued despawns, then queued spawns, and returns the spawned
// entities in request order. Despawns of entities that are no longer live are
// skipped; despawns of identities never allocated are errors. Commands
// queued by event handlers during the flush are applied in further rounds.
// Every failure is reported; one failure does not stop the rest.
func (b *CommandBuffer) Flush() ([]Entity, error) {
	if b.world.busy > 0 {
		return nil, fmt.Errorf("flush commands: %w", ErrReentrantMutation)
	}
	var (
		spawned []Entity
		errs    error
	)
	for round := 0; b.Len() > 0; round++ {
		if round == maxFlushRounds {
			errs = multierr.Append(errs, fmt.Errorf("flush commands: still %d queued after %d rounds", b.Len(), round))
			break
		}
		despawns, spawns := b.despawns, b.spawns
		b.despawns = make([]Entity, 0, cap(despawns))
		b.spawns = make([][]Value, 0, cap(spawns))

		seen := make(map[EntityID]struct{}, len(despawns))
		for _, e := range despawns {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			if !b.world.Alive(e) {
				if !b.world.alloc.Issued(e.ID) {
					errs = multierr.Append(errs, fmt.Errorf("despawn %s: never allocated: %w", e, ErrPreconditionViolated))
					continue
				}
				b.world.log.Debug("skip queued despawn of dead entity", zap.Uint32("entity", uint32(e.ID)))
				continue
			}
			errs = multierr.Append(errs, b.world.Despawn(e))
		}
		for _, values := range spawns {
			e, err := b.world.Spawn(values...)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			spawned = append(spawned, e)
		}
	}
	return spawned, errs
}
