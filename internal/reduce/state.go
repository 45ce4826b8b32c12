package reduce

import "fmt"

// State is the lifecycle state of a Reducer.
type State string

const (
	StateAccumulating State = "ACCUMULATING"
	StateFinished     State = "FINISHED"
)

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s State) bool {
	return s == StateFinished
}

// transition validates and applies from -> to on *cur.
//
// The caller supplies the expected prior state so that a double Finish or an
// Add racing a Finish is reported rather than silently absorbed.
func transition(cur *State, from, to State) error {
	if *cur != from {
		if IsTerminal(*cur) {
			return &Error{Kind: ErrFinished, Msg: fmt.Sprintf("expected %s, got %s", from, *cur)}
		}
		return fmt.Errorf("invalid transition: expected %s, got %s", from, *cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	*cur = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateAccumulating:
		return to == StateFinished
	default:
		return false
	}
}
