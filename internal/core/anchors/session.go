package anchors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrUnknownTransition = errors.New("unknown session transition")
)

// SessionObserver is told about every AR session lifecycle transition.
// All methods are required; a scene cannot be built without one.
type SessionObserver interface {
	SessionFailed(err error)
	SessionInterrupted()
	SessionInterruptionEnded(resetTracking bool)
}

// Lifecycle is the state of the AR session as reported by the host.
type Lifecycle uint8

const (
	LifecyclePaused Lifecycle = iota
	LifecycleRunning
	LifecycleInterrupted
	LifecycleFailed
)

func (l Lifecycle) String() string {
	switch l {
	case LifecyclePaused:
		return "paused"
	case LifecycleRunning:
		return "running"
	case LifecycleInterrupted:
		return "interrupted"
	case LifecycleFailed:
		return "failed"
	default:
		return fmt.Sprintf("Lifecycle(%d)", uint8(l))
	}
}

// Transition is a lifecycle event reported by the host.
type Transition uint8

const (
	TransitionRun Transition = iota
	TransitionPause
	TransitionFail
	TransitionInterrupt
	TransitionEndInterruption
)

func (t Transition) String() string {
	switch t {
	case TransitionRun:
		return "run"
	case TransitionPause:
		return "pause"
	case TransitionFail:
		return "failed"
	case TransitionInterrupt:
		return "interrupted"
	case TransitionEndInterruption:
		return "interruption_ended"
	default:
		return fmt.Sprintf("Transition(%d)", uint8(t))
	}
}

func ParseTransition(s string) (Transition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run":
		return TransitionRun, nil
	case "pause":
		return TransitionPause, nil
	case "failed", "fail":
		return TransitionFail, nil
	case "interrupted", "interrupt":
		return TransitionInterrupt, nil
	case "interruption_ended":
		return TransitionEndInterruption, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransition, s)
	}
}

// Next returns the state reached by applying t to l.
//
// Run restarts the session from any state, including after a failure.
// Fail is accepted from any state.
func (l Lifecycle) Next(t Transition) (Lifecycle, error) {
	switch t {
	case TransitionRun:
		return LifecycleRunning, nil
	case TransitionFail:
		return LifecycleFailed, nil
	case TransitionPause:
		if l == LifecycleRunning || l == LifecycleInterrupted || l == LifecyclePaused {
			return LifecyclePaused, nil
		}
	case TransitionInterrupt:
		if l == LifecycleRunning {
			return LifecycleInterrupted, nil
		}
	case TransitionEndInterruption:
		if l == LifecycleInterrupted {
			return LifecycleRunning, nil
		}
	}
	return l, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, t, l)
}
