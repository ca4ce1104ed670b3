package component

import "github.com/modosynth/modosynth/internal/core/ecs"

// Transform places an entity relative to an optional parent entity.
// Pure data; world positions are resolved by the world package.
type Transform struct {
	Parent     ecs.Entity
	HasParent  bool
	FromParent Vec2
}

// Box is a textured rectangle. Dim holds half extents.
type Box struct {
	Dim      Vec2
	UVCenter Vec2
	Texture  int // index into the catalogue textures
}

// Moveable marks entities the user may drag.
type Moveable struct{}

// Selectable tracks pointer selection.
type Selectable struct {
	Selected bool
}

// RopeSpawnable marks ports a rope can be dragged out of.
type RopeSpawnable struct{}

// RopeConnectable marks ports a rope can be dropped onto.
type RopeConnectable struct{}

// Rope is a cable between two anchors. An End without a parent follows the
// pointer while the rope is being drawn.
type Rope struct {
	Start  Transform
	End    Transform
	Length float64 // never shrinks below 1.01x the anchor distance
}

// Set holds the handles of every editor component, registered on one schema.
type Set struct {
	Transform       ecs.Component[Transform]
	Box             ecs.Component[Box]
	Moveable        ecs.Component[Moveable]
	Selectable      ecs.Component[Selectable]
	RopeSpawnable   ecs.Component[RopeSpawnable]
	RopeConnectable ecs.Component[RopeConnectable]
	Rope            ecs.Component[Rope]
}

// NewSchema registers the editor components in a fixed order.
func NewSchema() (*ecs.Schema, Set) {
	s := ecs.NewSchema()
	return s, Set{
		Transform:       ecs.Register[Transform](s),
		Box:             ecs.Register[Box](s),
		Moveable:        ecs.Register[Moveable](s),
		Selectable:      ecs.Register[Selectable](s),
		RopeSpawnable:   ecs.Register[RopeSpawnable](s),
		RopeConnectable: ecs.Register[RopeConnectable](s),
		Rope:            ecs.Register[Rope](s),
	}
}
