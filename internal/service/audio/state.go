package audio

import "fmt"

// UtteranceState is the lifecycle of the utterance currently being streamed.
//
//	OPEN ──final──▶ FINALIZED
//	OPEN ──limit / error / client drop──▶ DROPPED
//	any ──end of utterance──▶ OPEN (next utterance)
//
// Partials are forwarded only while OPEN. At most one final per utterance
// reaches the transcript; a DROPPED utterance never does.
type UtteranceState int

const (
	StateOpen UtteranceState = iota
	StateFinalized
	StateDropped
)

// String returns the string representation of the state.
func (s UtteranceState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateFinalized:
		return "FINALIZED"
	case StateDropped:
		return "DROPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal reports whether the utterance accepts no further transcripts.
func (s UtteranceState) IsTerminal() bool {
	return s == StateFinalized || s == StateDropped
}
