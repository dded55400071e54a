package lifecycle

// State is the coordinator's lifecycle state. Owned exclusively by the
// Coordinator and mutated only through its transition function.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateBuilding
	StatePreviewing
	StateError
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateBuilding:
		return "building"
	case StatePreviewing:
		return "previewing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// validStarts lists the states an explicit start/build/preview call may begin
// from. Error is deliberately included: errors are not terminal, a fresh
// explicit call re-enters the machine.
var validStarts = map[State]bool{
	StateIdle:    true,
	StateStopped: true,
	StateRunning: true,
	StateError:   true,
}
