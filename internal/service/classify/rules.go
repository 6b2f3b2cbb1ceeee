// Package classify holds the linguistic heuristics that tag an utterance as a
// question, a decision or an action item.
//
// Heuristics are data: each Rule pairs a Kind with one matcher (suffix,
// leading word, substring or regular expression) and a single evaluator walks
// the table. New rules are added to DefaultRules without touching control flow.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the label a rule contributes.
type Kind int

const (
	KindQuestion Kind = iota
	KindDecision
	KindActionItem
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindQuestion:
		return "question"
	case KindDecision:
		return "decision"
	case KindActionItem:
		return "action_item"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Rule is one tagged heuristic. Exactly one matcher field is expected to be set.
type Rule struct {
	Kind Kind
	Name string

	// Suffix matches the trimmed, case-sensitive text ending.
	Suffix string
	// FirstWords matches the lower-cased first word.
	FirstWords []string
	// Phrases matches any lower-cased substring.
	Phrases []string
	// Pattern matches the lower-cased text.
	Pattern *regexp.Regexp
}

// Match evaluates the rule against the trimmed text and its lower-cased form.
func (r Rule) Match(text, lower string) bool {
	switch {
	case r.Suffix != "":
		return strings.HasSuffix(text, r.Suffix)
	case len(r.FirstWords) > 0:
		first := firstWord(lower)
		for _, w := range r.FirstWords {
			if first == w {
				return true
			}
		}
		return false
	case len(r.Phrases) > 0:
		for _, p := range r.Phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	case r.Pattern != nil:
		return r.Pattern.MatchString(lower)
	default:
		return false
	}
}

func firstWord(lower string) string {
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// DefaultRules is the built-in rule table.
var DefaultRules = []Rule{
	// Questions
	{Kind: KindQuestion, Name: "question-mark", Suffix: "?"},
	{Kind: KindQuestion, Name: "interrogative-start", FirstWords: []string{
		"what", "where", "when", "why", "who", "how", "is", "are", "can",
		"could", "would", "should", "will", "do", "does", "did", "have",
		"has", "am", "was", "were",
	}},
	{Kind: KindQuestion, Name: "wh-auxiliary", Pattern: regexp.MustCompile(`\b(what|where|when|why|how|who)\s+(is|are|was|were|do|does|did|can|could|would)`)},
	{Kind: KindQuestion, Name: "request-you", Pattern: regexp.MustCompile(`\b(can you|could you|would you|will you)\s+\w+`)},
	{Kind: KindQuestion, Name: "hedged-request", Pattern: regexp.MustCompile(`\b(let me know|tell me|i'm wondering|i was wondering)\b`)},
	{Kind: KindQuestion, Name: "knowledge-probe", Pattern: regexp.MustCompile(`\b(any idea|do you know|have you heard)\b`)},

	// Decisions
	{Kind: KindDecision, Name: "decision-marker", Phrases: []string{
		"decided", "decision", "agreed", "conclusion", "finalized",
		"resolved", "approved", "confirmed", "consensus", "settled on",
		"moving forward with", "we will", "let's go with",
	}},

	// Action items
	{Kind: KindActionItem, Name: "self-commitment", Pattern: regexp.MustCompile(`(i will|i'll|i am going to|i'm going to)\s+(.+)`)},
	{Kind: KindActionItem, Name: "self-offer", Pattern: regexp.MustCompile(`(let me|i can|i should)\s+(.+)`)},
	{Kind: KindActionItem, Name: "assignment", Pattern: regexp.MustCompile(`(will you|can you|could you)\s+(.+)`)},
	{Kind: KindActionItem, Name: "explicit-task", Pattern: regexp.MustCompile(`(action item|todo|task|follow up|follow-up)`)},
	{Kind: KindActionItem, Name: "deadline", Phrases: []string{
		"by tomorrow", "by friday", "by monday", "by next",
		"by the end of", "asap", "soon", "this week", "next week",
	}},
}
