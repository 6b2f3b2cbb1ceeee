package models

import "time"

// CreateSessionRequest starts a new meeting session.
type CreateSessionRequest struct {
	MeetingType string `json:"meeting_type,omitempty"`
}

// CreateSessionResponse echoes the new session.
type CreateSessionResponse struct {
	MeetingID   string      `json:"meeting_id"`
	MeetingType MeetingType `json:"meeting_type"`
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Message     string      `json:"message"`
}

// AppendUtteranceRequest carries one transcribed utterance.
type AppendUtteranceRequest struct {
	Text          string         `json:"text"`
	VoiceFeatures *VoiceFeatures `json:"voice_features,omitempty"`
	AudioSource   string         `json:"audio_source,omitempty"`
	Channel       string         `json:"channel,omitempty"`
}

// AppendUtteranceResponse returns the finalized entry.
type AppendUtteranceResponse struct {
	Entry        TranscriptEntry `json:"entry"`
	SpeakerCount int             `json:"speaker_count"`
	AudioSources []string        `json:"audio_sources"`
}

// ParticipantStatus is a participant as reported by the status operation.
type ParticipantStatus struct {
	Name     string `json:"name"`
	IsRemote bool   `json:"is_remote"`
	Source   string `json:"source"`
}

// StatusResponse reports the transcript from an offset onward.
type StatusResponse struct {
	Entries             []TranscriptEntry            `json:"entries"`
	TotalCount          int                          `json:"total_count"`
	Participants        map[string]ParticipantStatus `json:"participants"`
	AudioSources        []string                     `json:"audio_sources"`
	IsActive            bool                         `json:"is_active"`
	MeetingType         MeetingType                  `json:"meeting_type"`
	UnansweredQuestions int                          `json:"unanswered_questions"`
}

// StopSessionResponse reports the final duration.
type StopSessionResponse struct {
	Status   string `json:"status"`
	Duration string `json:"duration"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Live ingest message types written back to the socket.
const (
	LivePartial = "partial"
	LiveEntry   = "entry"
	LiveError   = "error"
)

// LiveMessage is one server message on a live ingest socket.
type LiveMessage struct {
	Type         string           `json:"type"`
	Text         string           `json:"text,omitempty"`
	Entry        *TranscriptEntry `json:"entry,omitempty"`
	SpeakerCount int              `json:"speaker_count,omitempty"`
	AudioSources []string         `json:"audio_sources,omitempty"`
	Confidence   float64          `json:"confidence,omitempty"`
	Error        string           `json:"error,omitempty"`
}
