package system

import (
	"time"

	"github.com/modosynth/modosynth/internal/component"
	coresys "github.com/modosynth/modosynth/internal/core/system"
	"github.com/modosynth/modosynth/internal/world"
	"go.uber.org/zap"
)

// InputKind selects the editor action an Input performs.
type InputKind int

const (
	InputPress InputKind = iota
	InputDrag
	InputRelease
	InputPlace
	InputUndo
)

func (k InputKind) String() string {
	switch k {
	case InputPress:
		return "press"
	case InputDrag:
		return "drag"
	case InputRelease:
		return "release"
	case InputPlace:
		return "place"
	case InputUndo:
		return "undo"
	}
	return "unknown"
}

// Input is one pointer or keyboard action. Block is only used by InputPlace.
type Input struct {
	Kind  InputKind
	Pos   component.Vec2
	Delta component.Vec2
	Block string
}

// InputSystem drains the input queue into the editor. It is the only place
// other goroutines hand work to the loop. Phase 0 (Input).
type InputSystem struct {
	editor     *world.Editor
	queue      chan Input
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(editor *world.Editor, queueSize, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		editor:     editor,
		queue:      make(chan Input, queueSize),
		maxPerTick: maxPerTick,
		log:        log,
	}
}

// Submit enqueues an input without blocking. It reports false when the queue
// is full and the input was dropped.
func (s *InputSystem) Submit(in Input) bool {
	select {
	case s.queue <- in:
		return true
	default:
		return false
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for n := 0; n < s.maxPerTick; n++ {
		select {
		case in := <-s.queue:
			s.apply(in)
		default:
			return
		}
	}
}

func (s *InputSystem) apply(in Input) {
	var err error
	switch in.Kind {
	case InputPress:
		err = s.editor.Press(in.Pos)
	case InputDrag:
		s.editor.Drag(in.Pos, in.Delta)
	case InputRelease:
		err = s.editor.Release(in.Pos)
	case InputPlace:
		_, err = s.editor.SpawnBlock(in.Block, in.Pos)
	case InputUndo:
		var undone bool
		undone, err = s.editor.Undo()
		if !undone {
			s.log.Debug("nothing to undo")
		}
	}
	if err != nil {
		s.log.Warn("input failed", zap.Stringer("kind", in.Kind), zap.Error(err))
	}
}
