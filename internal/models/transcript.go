// Package models defines the data structures shared by the meeting core,
// the transport layers and the event publisher.
package models

import "time"

// EntryType is the classified role of a transcript entry.
type EntryType string

const (
	EntryStatement EntryType = "statement"
	EntryQuestion  EntryType = "question"
	EntryAnswer    EntryType = "answer"
)

// Default acoustic priors used when a feature is absent.
const (
	DefaultPitch  = 100.0
	DefaultPace   = 120.0
	DefaultEnergy = 5000.0
)

// VoiceFeatures is the acoustic summary that accompanies an utterance.
// Nil fields fall back to the default priors.
type VoiceFeatures struct {
	AvgPitch       *float64 `json:"avg_pitch,omitempty" yaml:"avg_pitch,omitempty"`
	WordsPerMinute *float64 `json:"words_per_minute,omitempty" yaml:"words_per_minute,omitempty"`
	Energy         *float64 `json:"energy,omitempty" yaml:"energy,omitempty"`
	Channel        string   `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// NewVoiceFeatures builds a fully populated feature set.
func NewVoiceFeatures(pitch, pace, energy float64) VoiceFeatures {
	return VoiceFeatures{AvgPitch: &pitch, WordsPerMinute: &pace, Energy: &energy}
}

// Sample resolves the features into concrete values, applying priors.
func (f VoiceFeatures) Sample() VoiceSample {
	s := VoiceSample{Pitch: DefaultPitch, Pace: DefaultPace, Energy: DefaultEnergy}
	if f.AvgPitch != nil {
		s.Pitch = *f.AvgPitch
	}
	if f.WordsPerMinute != nil {
		s.Pace = *f.WordsPerMinute
	}
	if f.Energy != nil {
		s.Energy = *f.Energy
	}
	return s
}

// VoiceSample is a resolved pitch / pace / energy triple.
type VoiceSample struct {
	Pitch  float64 `json:"pitch"`
	Pace   float64 `json:"pace"`
	Energy float64 `json:"energy"`
}

// TranscriptEntry is one appended utterance. Index equals the entry's
// position in the transcript and is never reassigned.
type TranscriptEntry struct {
	Index           int         `json:"index"`
	Timestamp       time.Time   `json:"timestamp"`
	SpeakerID       string      `json:"speaker_id"`
	SpeakerName     string      `json:"speaker_name"`
	Text            string      `json:"text"`
	Type            EntryType   `json:"type"`
	AudioSource     string      `json:"audio_source"`
	IsRemote        bool        `json:"is_remote"`
	VoiceFeatures   VoiceSample `json:"voice_features"`
	QuestionID      *int        `json:"question_id,omitempty"`
	AnswersQuestion *int        `json:"answers_question,omitempty"`
	IsDecision      bool        `json:"is_decision,omitempty"`
	IsActionItem    bool        `json:"is_action_item,omitempty"`
	Assignee        string      `json:"assignee,omitempty"`
}

// Answers reports whether the entry is threaded as an answer to question q.
func (e TranscriptEntry) Answers(q int) bool {
	return e.AnswersQuestion != nil && *e.AnswersQuestion == q
}

// TranscriptEvent is published for every appended entry.
type TranscriptEvent struct {
	EventType string          `json:"eventType"`
	MeetingID string          `json:"meetingId"`
	Timestamp int64           `json:"timestamp"`
	Entry     TranscriptEntry `json:"entry"`
}

// MinutesEvent is published when a session stops.
type MinutesEvent struct {
	EventType string          `json:"eventType"`
	MeetingID string          `json:"meetingId"`
	Timestamp int64           `json:"timestamp"`
	Minutes   MinutesDocument `json:"minutes"`
}
