package models

import "time"

// MeetingType selects how tolerant speaker matching is.
type MeetingType string

const (
	MeetingPhysical MeetingType = "physical"
	MeetingOnline   MeetingType = "online"
	MeetingHybrid   MeetingType = "hybrid"
)

// Remote audio sources imply a participant outside the room.
var remoteSources = map[string]bool{
	"tab_audio":    true,
	"system_audio": true,
	"screen_share": true,
}

// IsRemoteSource reports whether audio from source implies a remote participant.
func IsRemoteSource(source string) bool {
	return remoteSources[source]
}

// SpeakerProfile is the running acoustic fingerprint of one inferred participant.
type SpeakerProfile struct {
	ID          string    `json:"voice_id"`
	Name        string    `json:"name"`
	AvgPitch    float64   `json:"avg_pitch"`
	AvgPace     float64   `json:"avg_pace"`
	AvgEnergy   float64   `json:"avg_energy"`
	Samples     int       `json:"samples_count"`
	AudioSource string    `json:"audio_source"`
	Channel     string    `json:"channel"`
	IsRemote    bool      `json:"is_remote"`
	FirstSeen   time.Time `json:"first_seen"`
}

// Sample returns the profile's current averages.
func (p SpeakerProfile) Sample() VoiceSample {
	return VoiceSample{Pitch: p.AvgPitch, Pace: p.AvgPace, Energy: p.AvgEnergy}
}
