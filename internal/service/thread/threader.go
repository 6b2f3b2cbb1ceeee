// Package thread links answers back to the question they respond to.
package thread

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Threading limits.
const (
	// MaxAnswerDistance is how many entries after a question an answer may appear.
	MaxAnswerDistance = 4
	// ResolveDistance resolves the pending question once an answer is this far away.
	ResolveDistance = 2
	// LongAnswerRunes resolves the pending question on a long answer.
	LongAnswerRunes = 100
)

// AnswerStarters are leading words that mark an utterance as an answer
// regardless of distance or speaker.
var AnswerStarters = []string{
	"yes", "no", "absolutely", "definitely", "correct", "right",
	"exactly", "sure", "well", "i think", "in my opinion",
}

// Pending is a question that has not been resolved yet.
type Pending struct {
	Index     int
	Speaker   string
	Timestamp time.Time
}

// Threader tracks pending questions as a LIFO stack. Only the top of the
// stack is eligible to be answered by the next non-question utterance.
//
// Transitions:
//
//	Ask(i)            push {i}
//	Reply(i) answer   tag entry, pop top if i-top ≥ 2, text ends '.', or len > 100
//	Reply(i) other    stack untouched
//
// Threader is not safe for concurrent use; the owning session serializes access.
type Threader struct {
	stack []Pending
}

// New creates an empty threader.
func New() *Threader {
	return &Threader{}
}

// Ask records a question entry as pending.
func (t *Threader) Ask(index int, speaker string, ts time.Time) {
	t.stack = append(t.stack, Pending{Index: index, Speaker: speaker, Timestamp: ts})
}

// Reply evaluates a non-question utterance at index by speaker. It returns
// the index of the question it answers and true when it is an answer.
func (t *Threader) Reply(index int, speaker, text string) (int, bool) {
	q, ok := t.Top()
	if !ok {
		return 0, false
	}

	distance := index - q.Index
	answer := distance <= MaxAnswerDistance &&
		speaker != q.Speaker &&
		!strings.HasSuffix(text, "?")
	if StartsWithAnswer(text) {
		answer = true
	}
	if !answer {
		return 0, false
	}

	if distance >= ResolveDistance ||
		strings.HasSuffix(text, ".") ||
		utf8.RuneCountInString(text) > LongAnswerRunes {
		t.remove(q.Index)
	}
	return q.Index, true
}

// remove drops the pending question with the given entry index.
func (t *Threader) remove(index int) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].Index == index {
			t.stack = append(t.stack[:i], t.stack[i+1:]...)
			return
		}
	}
}

// Top returns the most recently asked pending question.
func (t *Threader) Top() (Pending, bool) {
	if len(t.stack) == 0 {
		return Pending{}, false
	}
	return t.stack[len(t.stack)-1], true
}

// Len returns the number of pending questions.
func (t *Threader) Len() int {
	return len(t.stack)
}

// Pending returns a copy of the pending stack, oldest first.
func (t *Threader) Pending() []Pending {
	out := make([]Pending, len(t.stack))
	copy(out, t.stack)
	return out
}

// StartsWithAnswer reports whether text opens with an answer-starter. The
// match is a plain lower-cased prefix, so "Nothing" counts as "no".
func StartsWithAnswer(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, s := range AnswerStarters {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}
