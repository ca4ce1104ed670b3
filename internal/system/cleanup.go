package system

import (
	"time"

	"github.com/modosynth/modosynth/internal/core/ecs"
	coresys "github.com/modosynth/modosynth/internal/core/system"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred spawn/despawn queue at tick end.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.world.Commands().Len() == 0 {
		return
	}
	spawned, err := s.world.Commands().Flush()
	for _, e := range multierr.Errors(err) {
		s.log.Error("deferred command failed", zap.Error(e))
	}
	if len(spawned) > 0 {
		s.log.Debug("deferred spawns applied", zap.Int("count", len(spawned)))
	}
}
