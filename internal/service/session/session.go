package session

import (
	"strings"
	"sync"
	"time"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/service/classify"
	"voice-minutes-service/internal/service/speaker"
	"voice-minutes-service/internal/service/thread"
)

// Setup hints returned when a session starts.
var setupMessages = map[models.MeetingType]string{
	models.MeetingPhysical: "Place your device centrally in the room. All voices will be captured via microphone.",
	models.MeetingOnline:   "Share your meeting tab/window when prompted. System audio will be captured automatically.",
	models.MeetingHybrid:   "Dual-mode active: Microphone captures room audio while screen share captures remote participants.",
}

// SetupMessage returns the setup hint for a meeting type.
func SetupMessage(t models.MeetingType) string {
	if msg, ok := setupMessages[t]; ok {
		return msg
	}
	return "Meeting started."
}

// Session is the transcript aggregate of one meeting.
//
// AppendUtterance is the only mutating entry point besides Stop and runs
// under the session's exclusive lock; readers take the shared lock and
// observe the state either before or after any append.
type Session struct {
	mu sync.RWMutex

	id          string
	meetingType models.MeetingType
	title       string
	state       State
	startedAt   time.Time
	endedAt     *time.Time

	entries    []models.TranscriptEntry
	speakers   *speaker.Directory
	threader   *thread.Threader
	classifier *classify.Classifier
	sources    []string
	seen       map[string]bool

	now func() time.Time
}

// New creates an active session started at the current clock time.
func New(id string, meetingType models.MeetingType, opts ...Option) *Session {
	o := newOptions(opts)
	if meetingType == "" {
		meetingType = models.MeetingPhysical
	}

	start := o.now().UTC()
	return &Session{
		id:          id,
		meetingType: meetingType,
		title:       "Meeting - " + start.Format("2006-01-02 15:04"),
		state:       StateActive,
		startedAt:   start,
		speakers:    speaker.New(meetingType, o.speakerOpts...),
		threader:    thread.New(),
		classifier:  o.classifier,
		seen:        make(map[string]bool),
		now:         o.now,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// MeetingType returns the meeting type fixed at creation.
func (s *Session) MeetingType() models.MeetingType {
	return s.meetingType
}

// StartedAt returns the start timestamp.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// AppendUtterance attributes, classifies and threads one utterance and
// appends it to the transcript. The caller guarantees text is non-empty
// after trimming.
func (s *Session) AppendUtterance(text string, features models.VoiceFeatures, audioSource string) models.TranscriptEntry {
	return s.Append(text, features, audioSource).Entry
}

// Appended is an appended entry with the session counts as of that append.
type Appended struct {
	Entry        models.TranscriptEntry
	SpeakerCount int
	AudioSources []string
}

// Append appends an utterance like AppendUtterance and captures the speaker
// count and audio sources inside the same critical section.
func (s *Session) Append(text string, features models.VoiceFeatures, audioSource string) Appended {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.appendLocked(text, features, audioSource)
	return Appended{
		Entry:        entry,
		SpeakerCount: s.speakers.Len(),
		AudioSources: append([]string{}, s.sources...),
	}
}

func (s *Session) appendLocked(text string, features models.VoiceFeatures, audioSource string) models.TranscriptEntry {
	index := len(s.entries)
	ts := s.now().UTC()

	speakerID := s.speakers.Resolve(features, audioSource)
	profile, _ := s.speakers.Profile(speakerID)
	labels := s.classifier.Evaluate(text)

	entry := models.TranscriptEntry{
		Index:         index,
		Timestamp:     ts,
		SpeakerID:     speakerID,
		SpeakerName:   profile.Name,
		Text:          text,
		Type:          models.EntryStatement,
		AudioSource:   audioSource,
		IsRemote:      profile.IsRemote,
		VoiceFeatures: profile.Sample(),
	}

	if labels.Question {
		entry.Type = models.EntryQuestion
		entry.QuestionID = intPtr(index)
		s.threader.Ask(index, speakerID, ts)
	} else if q, ok := s.threader.Reply(index, speakerID, text); ok {
		entry.Type = models.EntryAnswer
		entry.AnswersQuestion = intPtr(q)
	}

	if labels.Decision {
		entry.IsDecision = true
	}
	if labels.ActionItem {
		entry.IsActionItem = true
		entry.Assignee = profile.Name
	}

	s.entries = append(s.entries, entry)
	if !s.seen[audioSource] {
		s.seen[audioSource] = true
		s.sources = append(s.sources, audioSource)
	}
	return entry
}

func intPtr(v int) *int {
	return &v
}

// Stop records the end timestamp and returns the formatted duration.
// Stopping an ended session keeps the first end timestamp.
func (s *Session) Stop() string {
	d, _ := s.End()
	return d
}

// End is Stop that also reports whether this call ended the session.
func (s *Session) End() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended := false
	if !s.state.IsTerminal() {
		end := s.now().UTC()
		s.endedAt = &end
		s.state = StateEnded
		ended = true
	}
	return FormatDuration(s.startedAt, s.endedAt), ended
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Len returns the number of transcript entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SpeakerCount returns the number of known speakers.
func (s *Session) SpeakerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speakers.Len()
}

// AudioSources returns the distinct audio sources in first-seen order.
func (s *Session) AudioSources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.sources...)
}

// Status reports the entries from since onward. A negative offset is
// treated as zero and an offset past the end yields no entries.
func (s *Session) Status(since int) models.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if since < 0 {
		since = 0
	}
	if since > len(s.entries) {
		since = len(s.entries)
	}

	participants := make(map[string]models.ParticipantStatus, s.speakers.Len())
	for _, p := range s.speakers.Profiles() {
		participants[p.ID] = models.ParticipantStatus{
			Name:     p.Name,
			IsRemote: p.IsRemote,
			Source:   p.AudioSource,
		}
	}

	return models.StatusResponse{
		Entries:             append([]models.TranscriptEntry{}, s.entries[since:]...),
		TotalCount:          len(s.entries),
		Participants:        participants,
		AudioSources:        append([]string{}, s.sources...),
		IsActive:            !s.state.IsTerminal(),
		MeetingType:         s.meetingType,
		UnansweredQuestions: s.threader.Len(),
	}
}

// Snapshot is a consistent, detached copy of a session.
type Snapshot struct {
	ID           string
	MeetingType  models.MeetingType
	Title        string
	State        State
	StartedAt    time.Time
	EndedAt      *time.Time
	Entries      []models.TranscriptEntry
	Speakers     []models.SpeakerProfile
	AudioSources []string
	Pending      []thread.Pending
}

// Duration returns the formatted session duration.
func (sn Snapshot) Duration() string {
	return FormatDuration(sn.StartedAt, sn.EndedAt)
}

// Snapshot copies the session state under the shared lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ended *time.Time
	if s.endedAt != nil {
		e := *s.endedAt
		ended = &e
	}
	return Snapshot{
		ID:           s.id,
		MeetingType:  s.meetingType,
		Title:        s.title,
		State:        s.state,
		StartedAt:    s.startedAt,
		EndedAt:      ended,
		Entries:      append([]models.TranscriptEntry{}, s.entries...),
		Speakers:     s.speakers.Profiles(),
		AudioSources: append([]string{}, s.sources...),
		Pending:      s.threader.Pending(),
	}
}
