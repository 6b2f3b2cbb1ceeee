package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"voice-minutes-service/internal/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var (
	voiceA = models.NewVoiceFeatures(100, 120, 5000)
	voiceB = models.NewVoiceFeatures(220, 150, 3000)
)

func TestSession_QuestionClassification(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	e := s.AppendUtterance("Can we ship Friday?", voiceA, "microphone")

	if e.Type != models.EntryQuestion {
		t.Errorf("expected question, got %s", e.Type)
	}
	if e.QuestionID == nil || *e.QuestionID != 0 {
		t.Errorf("expected question id 0, got %v", e.QuestionID)
	}
	if s.Status(0).UnansweredQuestions != 1 {
		t.Error("expected one pending question")
	}
}

func TestSession_ThreadsQuestionAndAnswers(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	q := s.AppendUtterance("What's the deadline?", voiceA, "microphone")
	a := s.AppendUtterance("The sky is blue", voiceB, "microphone")

	if q.SpeakerID == a.SpeakerID {
		t.Fatal("expected two distinct speakers")
	}
	if a.Type != models.EntryAnswer {
		t.Errorf("expected answer, got %s", a.Type)
	}
	if !a.Answers(0) {
		t.Errorf("expected answers_question 0, got %v", a.AnswersQuestion)
	}
	if got := s.Status(0).UnansweredQuestions; got != 1 {
		t.Errorf("expected question 0 to stay pending, got %d pending", got)
	}
}

func TestSession_FlagsAreIndependentOfType(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	d := s.AppendUtterance("We decided to launch next Monday", voiceA, "microphone")
	if !d.IsDecision {
		t.Error("expected decision flag")
	}
	if d.Type != models.EntryStatement {
		t.Errorf("expected statement, got %s", d.Type)
	}

	ai := s.AppendUtterance("I'll send the report by Friday", voiceA, "microphone")
	if !ai.IsActionItem {
		t.Error("expected action item flag")
	}
	if ai.Assignee != "Participant 1" {
		t.Errorf("expected assignee 'Participant 1', got %q", ai.Assignee)
	}

	qd := s.AppendUtterance("Have we agreed on the budget?", voiceB, "tab_audio")
	if qd.Type != models.EntryQuestion || !qd.IsDecision {
		t.Errorf("expected question flagged as decision, got type=%s decision=%v", qd.Type, qd.IsDecision)
	}
	if !qd.IsRemote || qd.SpeakerName != "Participant 2 (Remote)" {
		t.Errorf("expected remote participant 2, got %q remote=%v", qd.SpeakerName, qd.IsRemote)
	}
}

func TestSession_EntryCarriesSmoothedFeatures(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	s.AppendUtterance("First remark", voiceA, "microphone")
	e := s.AppendUtterance("Second remark", models.NewVoiceFeatures(110, 130, 5000), "microphone")

	if e.VoiceFeatures.Pitch < 102.9 || e.VoiceFeatures.Pitch > 103.1 {
		t.Errorf("expected smoothed pitch ~103, got %v", e.VoiceFeatures.Pitch)
	}
}

func TestSession_TextIsTrimmed(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	e := s.AppendUtterance("  hello there  ", voiceA, "microphone")
	if e.Text != "hello there" {
		t.Errorf("expected trimmed text, got %q", e.Text)
	}
}

func TestSession_AudioSourcesDistinctInOrder(t *testing.T) {
	s := New("m-1", models.MeetingHybrid)

	s.AppendUtterance("one", voiceA, "microphone")
	s.AppendUtterance("two", voiceB, "tab_audio")
	s.AppendUtterance("three", voiceA, "microphone")

	got := s.AudioSources()
	if len(got) != 2 || got[0] != "microphone" || got[1] != "tab_audio" {
		t.Errorf("unexpected audio sources %v", got)
	}
}

func TestSession_Stop(t *testing.T) {
	clock := newFakeClock()
	s := New("m-1", models.MeetingOnline, WithClock(clock.Now))

	if !s.Status(0).IsActive {
		t.Error("new session should be active")
	}

	clock.Advance(65 * time.Second)
	if got := s.Stop(); got != "1m 5s" {
		t.Errorf("expected '1m 5s', got %q", got)
	}
	if s.State() != StateEnded {
		t.Errorf("expected StateEnded, got %v", s.State())
	}
	if s.Status(0).IsActive {
		t.Error("stopped session should not be active")
	}

	clock.Advance(time.Hour)
	got, ended := s.End()
	if got != "1m 5s" {
		t.Errorf("second stop should keep the first end time, got %q", got)
	}
	if ended {
		t.Error("second stop should not report ending the session")
	}
}

func TestSession_SnapshotDurationInProgress(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	if got := s.Snapshot().Duration(); got != DurationInProgress {
		t.Errorf("expected %q, got %q", DurationInProgress, got)
	}
}

func TestSession_Title(t *testing.T) {
	clock := newFakeClock()
	s := New("m-1", "", WithClock(clock.Now))

	sn := s.Snapshot()
	if sn.Title != "Meeting - 2024-03-01 10:00" {
		t.Errorf("unexpected title %q", sn.Title)
	}
	if sn.MeetingType != models.MeetingPhysical {
		t.Errorf("expected default meeting type physical, got %s", sn.MeetingType)
	}
}

func TestSession_StatusOffsets(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)
	for i := 0; i < 5; i++ {
		s.AppendUtterance(fmt.Sprintf("remark %d", i), voiceA, "microphone")
	}

	tests := []struct {
		since int
		want  int
	}{
		{0, 5},
		{3, 2},
		{5, 0},
		{9, 0},
		{-2, 5},
	}

	for _, tt := range tests {
		st := s.Status(tt.since)
		if len(st.Entries) != tt.want {
			t.Errorf("Status(%d): got %d entries, want %d", tt.since, len(st.Entries), tt.want)
		}
		if st.TotalCount != 5 {
			t.Errorf("Status(%d): total count %d, want 5", tt.since, st.TotalCount)
		}
	}

	st := s.Status(0)
	if len(st.Participants) != 1 {
		t.Errorf("expected 1 participant, got %d", len(st.Participants))
	}
	for _, p := range st.Participants {
		if p.Name != "Participant 1" || p.Source != "microphone" || p.IsRemote {
			t.Errorf("unexpected participant %+v", p)
		}
	}
}

func TestSession_SnapshotIsDetached(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)
	s.AppendUtterance("first", voiceA, "microphone")

	sn := s.Snapshot()
	s.AppendUtterance("second", voiceA, "microphone")

	if len(sn.Entries) != 1 {
		t.Errorf("snapshot should not observe later appends, got %d entries", len(sn.Entries))
	}
	sn.Entries[0].Text = "mutated"
	if s.Snapshot().Entries[0].Text != "first" {
		t.Error("mutating a snapshot must not affect the session")
	}
}

func TestSession_IndicesMonotonicUnderStress(t *testing.T) {
	s := New("m-1", models.MeetingHybrid)
	texts := []string{
		"What about the budget?",
		"It is fine",
		"Yes, definitely.",
		"We decided to hire two engineers",
		"Could you send the notes",
		"Okay",
	}

	const n = 500
	for i := 0; i < n; i++ {
		v := voiceA
		if i%2 == 1 {
			v = voiceB
		}
		s.AppendUtterance(texts[i%len(texts)], v, "microphone")
	}

	sn := s.Snapshot()
	if len(sn.Entries) != n {
		t.Fatalf("expected %d entries, got %d", n, len(sn.Entries))
	}
	for i, e := range sn.Entries {
		if e.Index != i {
			t.Fatalf("entry at position %d has index %d", i, e.Index)
		}
	}
}

func TestSession_ConcurrentAppends(t *testing.T) {
	s := New("m-1", models.MeetingPhysical)

	const workers, perWorker = 20, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				v := voiceA
				if w%2 == 0 {
					v = voiceB
				}
				s.AppendUtterance(fmt.Sprintf("worker %d says %d", w, j), v, "microphone")
				_ = s.Status(0)
			}
		}(w)
	}
	wg.Wait()

	sn := s.Snapshot()
	if len(sn.Entries) != workers*perWorker {
		t.Fatalf("expected %d entries, got %d", workers*perWorker, len(sn.Entries))
	}
	seen := make(map[int]bool)
	for i, e := range sn.Entries {
		if e.Index != i || seen[e.Index] {
			t.Fatalf("bad index %d at position %d", e.Index, i)
		}
		seen[e.Index] = true
	}
	if len(sn.Speakers) != 2 {
		t.Errorf("expected 2 speakers, got %d", len(sn.Speakers))
	}
}

func TestSession_AppendCountsMatchEntry(t *testing.T) {
	s := New("m-1", models.MeetingHybrid)

	const workers, perWorker = 10, 20
	var wg sync.WaitGroup
	errs := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				source := fmt.Sprintf("source-%d-%d", w, j)
				got := s.Append("status update", voiceA, source)
				n := len(got.AudioSources)
				if n != got.Entry.Index+1 || got.AudioSources[n-1] != source {
					errs <- fmt.Sprintf("entry %d saw %d sources ending in %q", got.Entry.Index, n, got.AudioSources[n-1])
				}
				if got.SpeakerCount < 1 || got.SpeakerCount > got.Entry.Index+1 {
					errs <- fmt.Sprintf("entry %d saw %d speakers", got.Entry.Index, got.SpeakerCount)
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry()

	s := r.Create(models.MeetingHybrid)
	got, err := r.Get(s.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Error("expected the registered session")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 session, got %d", r.Len())
	}
}

func TestRegistry_UnknownSession(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Append("missing", "hello", voiceA, "microphone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_RejectsBlankText(t *testing.T) {
	r := NewRegistry()
	s := r.Create(models.MeetingPhysical)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := r.Append(s.ID(), text, voiceA, "microphone"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Append(%q): expected ErrInvalidInput, got %v", text, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("rejected input must not append, got %d entries", s.Len())
	}
}

func TestRegistry_CustomIDs(t *testing.T) {
	n := 0
	r := NewRegistry(WithIDFunc(func() string {
		n++
		return fmt.Sprintf("meeting-%d", n)
	}))

	a := r.Create(models.MeetingPhysical)
	b := r.Create(models.MeetingOnline)
	if a.ID() != "meeting-1" || b.ID() != "meeting-2" {
		t.Errorf("unexpected ids %s, %s", a.ID(), b.ID())
	}
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r := NewRegistry()
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = r.Create(models.MeetingPhysical).ID()
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := r.Append(id, fmt.Sprintf("note %d", j), voiceA, "microphone"); err != nil {
					t.Errorf("append failed: %v", err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		s, _ := r.Get(id)
		if s.Len() != 50 {
			t.Errorf("session %s: expected 50 entries, got %d", id, s.Len())
		}
		if s.SpeakerCount() != 1 {
			t.Errorf("session %s: profiles must not leak across sessions, got %d", id, s.SpeakerCount())
		}
	}
}

func TestSetupMessage(t *testing.T) {
	tests := []struct {
		meetingType models.MeetingType
		prefix      string
	}{
		{models.MeetingPhysical, "Place your device"},
		{models.MeetingOnline, "Share your meeting"},
		{models.MeetingHybrid, "Dual-mode active"},
		{"webinar", "Meeting started."},
	}

	for _, tt := range tests {
		got := SetupMessage(tt.meetingType)
		if len(got) < len(tt.prefix) || got[:len(tt.prefix)] != tt.prefix {
			t.Errorf("SetupMessage(%s) = %q, want prefix %q", tt.meetingType, got, tt.prefix)
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateActive, "ACTIVE"},
		{StateEnded, "ENDED"},
		{State(7), "UNKNOWN(7)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %v, want %v", tt.state, got, tt.expected)
		}
	}
}
