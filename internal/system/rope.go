package system

import (
	"time"

	"github.com/modosynth/modosynth/internal/component"
	"github.com/modosynth/modosynth/internal/core/ecs"
	coresys "github.com/modosynth/modosynth/internal/core/system"
	"github.com/modosynth/modosynth/internal/world"
)

// ropeSlack is the minimum rope length relative to the anchor distance.
const ropeSlack = 1.01

// RopeSystem keeps every rope at least slightly longer than the distance
// between its anchors. Phase 2 (Update).
type RopeSystem struct {
	editor *world.Editor
}

func NewRopeSystem(editor *world.Editor) *RopeSystem {
	return &RopeSystem{editor: editor}
}

func (s *RopeSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *RopeSystem) Update(_ time.Duration) {
	c := s.editor.Components()
	ecs.Run1(s.editor.World(), c.Rope, func(_ ecs.Entity, r *component.Rope) {
		start := s.editor.WorldPosition(r.Start)
		end := s.editor.WorldPosition(r.End)
		r.Length = max(ropeSlack*end.Sub(start).Norm(), r.Length)
	})
}
