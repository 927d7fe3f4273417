package build

// State is the lifecycle state of a Build
type State int

const (
	Running State = iota
	Successful
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Successful:
		return "successful"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible
func (s State) IsTerminal() bool {
	return s == Successful || s == Failed
}

// canTransition lists the only legal moves: running to either terminal state
func canTransition(from, to State) bool {
	return from == Running && to.IsTerminal()
}
