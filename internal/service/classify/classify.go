package classify

import "strings"

// Result is the outcome of evaluating every rule against one text.
type Result struct {
	Question   bool
	Decision   bool
	ActionItem bool
}

// Classifier evaluates a rule table.
type Classifier struct {
	rules []Rule
}

// New creates a classifier over rules. A nil table uses DefaultRules.
func New(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Default is the classifier over DefaultRules.
var Default = New(nil)

// Has reports whether any rule of the given kind matches text.
func (c *Classifier) Has(kind Kind, text string) bool {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if r.Kind == kind && r.Match(text, lower) {
			return true
		}
	}
	return false
}

// Evaluate applies all rules. The three labels are independent.
func (c *Classifier) Evaluate(text string) Result {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	var res Result
	for _, r := range c.rules {
		if !r.Match(text, lower) {
			continue
		}
		switch r.Kind {
		case KindQuestion:
			res.Question = true
		case KindDecision:
			res.Decision = true
		case KindActionItem:
			res.ActionItem = true
		}
	}
	return res
}

// IsQuestion reports whether text reads as a question.
func IsQuestion(text string) bool { return Default.Has(KindQuestion, text) }

// IsDecision reports whether text records a decision.
func IsDecision(text string) bool { return Default.Has(KindDecision, text) }

// IsActionItem reports whether text commits someone to a task.
func IsActionItem(text string) bool { return Default.Has(KindActionItem, text) }
