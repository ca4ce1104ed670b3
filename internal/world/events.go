package world

import "github.com/modosynth/modosynth/internal/core/ecs"

// Placed is triggered after the user places a block and its ports.
type Placed struct {
	Entity ecs.Entity
}

// Connect is triggered after a rope is attached to a connectable port.
type Connect struct {
	Entity ecs.Entity
}
