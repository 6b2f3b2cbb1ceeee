package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"voice-minutes-service/internal/models"
)

// Fixture is a recorded meeting to replay. JSON fixtures parse as YAML.
type Fixture struct {
	MeetingType string             `yaml:"meeting_type"`
	StartedAt   string             `yaml:"started_at"`
	EndedAt     string             `yaml:"ended_at"`
	Utterances  []FixtureUtterance `yaml:"utterances"`
}

// FixtureUtterance is one utterance of a fixture.
type FixtureUtterance struct {
	Text          string                `yaml:"text"`
	VoiceFeatures *models.VoiceFeatures `yaml:"voice_features"`
	AudioSource   string                `yaml:"audio_source"`
	Channel       string                `yaml:"channel"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(bytes.NewReader(b))
}

// ParseFixture decodes a fixture. Unknown fields are rejected.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}
