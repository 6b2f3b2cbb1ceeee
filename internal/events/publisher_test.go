package events

import (
	"context"
	"testing"
	"time"

	"voice-minutes-service/internal/models"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writerEntries != nil || p.writerMinutes != nil {
				t.Error("expected nil writers when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	p := New(&Config{
		Enabled:      false,
		Brokers:      []string{"localhost:9092"},
		TopicEntries: "test.entries",
		TopicMinutes: "test.minutes",
		Principal:    "test-principal",
	})

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicEntries != "test.entries" {
		t.Errorf("expected entries topic 'test.entries', got %s", p.topicEntries)
	}
	if p.topicMinutes != "test.minutes" {
		t.Errorf("expected minutes topic 'test.minutes', got %s", p.topicMinutes)
	}
}

func TestNew_EnabledCreatesWriters(t *testing.T) {
	p := New(&Config{
		Enabled:      true,
		Brokers:      []string{"localhost:9092"},
		TopicEntries: "test.entries",
		TopicMinutes: "test.minutes",
	})

	if !p.enabled {
		t.Fatal("expected publisher to be enabled")
	}
	if p.writerEntries == nil || p.writerEntries.Topic != "test.entries" {
		t.Error("expected entries writer bound to the entries topic")
	}
	if p.writerMinutes == nil || p.writerMinutes.Topic != "test.minutes" {
		t.Error("expected minutes writer bound to the minutes topic")
	}
	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing unused writers, got %v", err)
	}
}

func TestPublisher_PublishEntry_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false, TopicEntries: "test.entries"})

	entry := models.TranscriptEntry{
		Index:     0,
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		SpeakerID: "speaker_1",
		Text:      "Can we ship Friday?",
		Type:      models.EntryQuestion,
	}
	if err := p.PublishEntry(context.Background(), "meeting-1", entry); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishMinutes_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false, TopicMinutes: "test.minutes"})

	doc := models.MinutesDocument{Title: "Meeting - 2024-03-01 10:00", Duration: "1m 5s"}
	if err := p.PublishMinutes(context.Background(), "meeting-1", doc); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_Publish_InvalidJSON(t *testing.T) {
	p := New(&Config{Enabled: false})

	err := p.publish(context.Background(), nil, "test.topic", EventTranscriptEntry, "key", make(chan int))
	if err == nil {
		t.Error("expected error for unmarshalable event")
	}
}

func TestPublisher_Close_NilWriters(t *testing.T) {
	p := &Publisher{}

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing publisher with nil writers, got %v", err)
	}
}
