// Package events publishes meeting transcript and minutes events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/metrics"
)

// Event types carried in the eventType field and message header.
const (
	EventTranscriptEntry = "meeting.transcript.entry"
	EventMinutes         = "meeting.minutes"
)

// Publisher publishes meeting events to Kafka, one topic per event type.
// When Kafka is disabled it only logs.
type Publisher struct {
	writerEntries *kafka.Writer
	writerMinutes *kafka.Writer
	principal     string
	topicEntries  string
	topicMinutes  string
	enabled       bool
	metrics       *metrics.Metrics
	now           func() time.Time
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicEntries string
	TopicMinutes string
	Principal    string
	Enabled      bool
}

// New creates a Kafka event publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{metrics: m, now: time.Now}
	}

	p := &Publisher{
		principal:    cfg.Principal,
		topicEntries: cfg.TopicEntries,
		topicMinutes: cfg.TopicMinutes,
		metrics:      m,
		now:          time.Now,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	p.writerEntries = newWriter(cfg.Brokers, cfg.TopicEntries, transport)
	p.writerMinutes = newWriter(cfg.Brokers, cfg.TopicMinutes, transport)
	p.enabled = true

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicEntries", cfg.TopicEntries).
		Str("topicMinutes", cfg.TopicMinutes).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return p
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// PublishEntry publishes an appended transcript entry keyed by session id.
func (p *Publisher) PublishEntry(ctx context.Context, sessionID string, entry models.TranscriptEntry) error {
	event := models.TranscriptEvent{
		EventType: EventTranscriptEntry,
		MeetingID: sessionID,
		Timestamp: p.now().UnixMilli(),
		Entry:     entry,
	}
	return p.publish(ctx, p.writerEntries, p.topicEntries, EventTranscriptEntry, sessionID, event)
}

// PublishMinutes publishes the minutes document of a stopped session.
func (p *Publisher) PublishMinutes(ctx context.Context, sessionID string, doc models.MinutesDocument) error {
	event := models.MinutesEvent{
		EventType: EventMinutes,
		MeetingID: sessionID,
		Timestamp: p.now().UnixMilli(),
		Minutes:   doc,
	}
	return p.publish(ctx, p.writerMinutes, p.topicMinutes, EventMinutes, sessionID, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerEntries != nil {
		if e := p.writerEntries.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing entries writer")
			err = e
		}
	}
	if p.writerMinutes != nil {
		if e := p.writerMinutes.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing minutes writer")
			err = e
		}
	}
	return err
}
