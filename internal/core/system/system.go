package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: apply pointer/keyboard input
	PhasePreUpdate               // 1: dispatch last tick's deferred events
	PhaseUpdate                  // 2: per-component simulation
	PhasePostUpdate              // 3: derived state (selection, layout)
	PhaseCleanup                 // 4: flush queued spawns and despawns
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
