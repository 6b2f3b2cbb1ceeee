package thread

import (
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestThreader_EmptyStackNeverAnswers(t *testing.T) {
	th := New()

	if _, ok := th.Reply(0, "A", "Yes, absolutely."); ok {
		t.Error("expected no answer without a pending question")
	}
}

func TestThreader_QuickAnswerKeepsQuestionPending(t *testing.T) {
	th := New()
	th.Ask(0, "A", t0)

	q, ok := th.Reply(1, "B", "The sky is blue")
	if !ok {
		t.Fatal("expected entry 1 to answer question 0")
	}
	if q != 0 {
		t.Errorf("expected question 0, got %d", q)
	}
	if th.Len() != 1 {
		t.Errorf("expected question to remain pending, got %d pending", th.Len())
	}
}

func TestThreader_SameSpeakerIsNotAnAnswer(t *testing.T) {
	th := New()
	th.Ask(0, "A", t0)

	if _, ok := th.Reply(1, "A", "Some more context on that"); ok {
		t.Error("asker continuing should not be an answer")
	}
	if th.Len() != 1 {
		t.Errorf("stack should be untouched, got %d pending", th.Len())
	}
}

func TestThreader_DistanceLimit(t *testing.T) {
	th := New()
	th.Ask(0, "A", t0)

	if _, ok := th.Reply(5, "B", "Unrelated remark"); ok {
		t.Error("distance 5 should not be an answer")
	}
	if _, ok := th.Reply(4, "B", "Related remark"); !ok {
		t.Error("distance 4 should be an answer")
	}
}

func TestThreader_AnswerStarterOverridesChecks(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		speaker string
		text    string
	}{
		{"same speaker", 1, "A", "Yes, I answered my own question"},
		{"far away", 9, "B", "Well it depends"},
		{"multiword starter", 7, "A", "In my opinion it is fine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := New()
			th.Ask(0, "A", t0)

			q, ok := th.Reply(tt.index, tt.speaker, tt.text)
			if !ok || q != 0 {
				t.Errorf("expected answer to question 0, got (%d, %v)", q, ok)
			}
		})
	}
}

func TestThreader_ResolveRules(t *testing.T) {
	tests := []struct {
		name        string
		index       int
		text        string
		wantPending int
	}{
		{"short quick answer", 1, "Tuesday", 1},
		{"sentence end", 1, "Tuesday.", 0},
		{"distance two", 2, "Tuesday", 0},
		{"long answer", 1, strings.Repeat("a", 101), 0},
		{"exactly one hundred", 1, strings.Repeat("a", 100), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := New()
			th.Ask(0, "A", t0)

			if _, ok := th.Reply(tt.index, "B", tt.text); !ok {
				t.Fatal("expected an answer")
			}
			if th.Len() != tt.wantPending {
				t.Errorf("pending = %d, want %d", th.Len(), tt.wantPending)
			}
		})
	}
}

func TestThreader_LIFO(t *testing.T) {
	th := New()
	th.Ask(0, "A", t0)
	th.Ask(1, "B", t0.Add(time.Second))

	q, ok := th.Reply(2, "C", "Sure thing.")
	if !ok || q != 1 {
		t.Fatalf("expected answer to most recent question 1, got (%d, %v)", q, ok)
	}

	top, _ := th.Top()
	if top.Index != 0 {
		t.Fatalf("expected question 0 on top after pop, got %d", top.Index)
	}

	q, ok = th.Reply(3, "D", "Okay then")
	if !ok || q != 0 {
		t.Fatalf("expected answer to question 0, got (%d, %v)", q, ok)
	}
	if th.Len() != 0 {
		t.Errorf("expected empty stack, got %d", th.Len())
	}
}

func TestThreader_PendingIsACopy(t *testing.T) {
	th := New()
	th.Ask(0, "A", t0)

	p := th.Pending()
	p[0].Index = 42

	top, _ := th.Top()
	if top.Index != 0 {
		t.Error("mutating Pending() result must not affect the threader")
	}
}

func TestStartsWithAnswer(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Yes", true},
		{"yes, we can", true},
		{"No.", true},
		{"  Sure thing", true},
		{"I think so", true},
		{"Exactly!", true},
		{"Nothing changed on my side", true},
		{"Nowhere near done", true},
		{"Rightly so", true},
		{"Surely not", true},
		{"Wellington office says hi", true},
		{"Yesterday we shipped", true},
		{"Maybe later", false},
		{"The answer is yes", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := StartsWithAnswer(tt.text); got != tt.want {
				t.Errorf("StartsWithAnswer(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
