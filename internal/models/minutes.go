package models

import "time"

// ParticipantSummary is a participant line in the minutes.
type ParticipantSummary struct {
	SpeakerID    string `json:"speaker_id"`
	Name         string `json:"name"`
	Source       string `json:"source"`
	SpeakingTime int    `json:"speaking_time"`
}

// QAGroup is a question, its linked answers and its follow-up, if any.
type QAGroup struct {
	Question          TranscriptEntry   `json:"question"`
	Answers           []TranscriptEntry `json:"answers"`
	FollowUpQuestions []QAGroup         `json:"follow_up_questions"`
}

// MinutesDocument is the synthesized view of a transcript. Every entry
// appears in at most one of QAPairs, Decisions, ActionItems and
// KeyDiscussionPoints.
type MinutesDocument struct {
	Title               string               `json:"title"`
	Date                time.Time            `json:"date"`
	MeetingType         MeetingType          `json:"meeting_type"`
	Duration            string               `json:"duration"`
	Participants        []ParticipantSummary `json:"participants"`
	RemoteParticipants  []ParticipantSummary `json:"remote_participants"`
	QAPairs             []QAGroup            `json:"qa_pairs"`
	Decisions           []TranscriptEntry    `json:"decisions"`
	ActionItems         []TranscriptEntry    `json:"action_items"`
	KeyDiscussionPoints []TranscriptEntry    `json:"key_discussion_points"`
	AudioSources        []string             `json:"audio_sources"`
}
