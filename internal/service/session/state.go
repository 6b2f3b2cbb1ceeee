// Package session holds the per-meeting transcript aggregate and the
// registry that addresses sessions by id.
package session

import "fmt"

// State represents the lifecycle state of a session.
type State int

const (
	// StateActive - Session is recording, no end timestamp.
	StateActive State = iota
	// StateEnded - End timestamp recorded. Terminal.
	StateEnded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateEnded:
		return "ENDED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal.
func (s State) IsTerminal() bool {
	return s == StateEnded
}
