package launch

import "fmt"

// State models the launcher lifecycle. Transitions are validated so an
// out-of-order call is a programming error surfaced immediately rather than
// a silently skipped display restore.
type State int

const (
	StateIdle State = iota
	StateDisplayConfigured
	StateRunning
	StateExited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDisplayConfigured:
		return "display_configured"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// validTransitions enumerates the only allowed state changes.
var validTransitions = map[State]State{
	StateIdle:              StateDisplayConfigured,
	StateDisplayConfigured: StateRunning,
	StateRunning:           StateExited,
}

// transition advances the launcher state, rejecting anything outside the
// Idle → DisplayConfigured → Running → Exited chain.
func (l *Launcher) transition(to State) error {
	if validTransitions[l.state] != to {
		return fmt.Errorf("invalid launcher transition %s -> %s", l.state, to)
	}
	l.state = to
	return nil
}

// State returns the current launcher state.
func (l *Launcher) State() State {
	return l.state
}
