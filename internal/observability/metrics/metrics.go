// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_minutes"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsCreated  *prometheus.CounterVec
	SessionsActive   prometheus.Gauge
	SessionsStopped  prometheus.Counter
	SessionDuration  prometheus.Histogram
	SpeakersResolved *prometheus.CounterVec

	// Transcript metrics
	Utterances        *prometheus.CounterVec
	QuestionsAnswered prometheus.Counter
	Decisions         prometheus.Counter
	ActionItems       prometheus.Counter

	// Minutes metrics
	MinutesSynthesized *prometheus.CounterVec

	// Request metrics
	RequestLatency *prometheus.HistogramVec
	RequestErrors  *prometheus.CounterVec

	// Live ingest metrics
	IngestStreamsActive prometheus.Gauge
	AudioBytesReceived  prometheus.Counter
	AudioFramesReceived prometheus.Counter
	TranscriptsPartial  prometheus.Counter
	TranscriptsFinal    prometheus.Counter
	UtterancesDropped   *prometheus.CounterVec
	IngestLimitExceeded *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// STT metrics
	STTErrors       *prometheus.CounterVec
	STTFinalLatency prometheus.Histogram
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of meeting sessions started",
		}, []string{"meeting_type"}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of meeting sessions that have not been stopped",
		}),
		SessionsStopped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_stopped_total",
			Help:      "Total number of meeting sessions stopped",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of stopped meeting sessions in seconds",
			Buckets:   []float64{60, 300, 900, 1800, 3600, 7200, 14400},
		}),
		SpeakersResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speakers_created_total",
			Help:      "Total number of speaker profiles created",
		}, []string{"remote"}),

		Utterances: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Total number of utterances appended, by entry type",
		}, []string{"type"}),
		QuestionsAnswered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_threaded_total",
			Help:      "Total number of utterances threaded as answers",
		}),
		Decisions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of utterances flagged as decisions",
		}),
		ActionItems: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_items_total",
			Help:      "Total number of utterances flagged as action items",
		}),

		MinutesSynthesized: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minutes_synthesized_total",
			Help:      "Total number of minutes documents produced",
		}, []string{"format"}),

		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_latency_seconds",
			Help:      "Boundary request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"transport", "operation"}),
		RequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of failed boundary requests",
		}, []string{"transport", "operation", "code"}),

		IngestStreamsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_streams_active",
			Help:      "Number of open live ingest sockets",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),
		AudioFramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_received_total",
			Help:      "Total audio frames received",
		}),
		TranscriptsPartial: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_partial_total",
			Help:      "Total number of partial transcripts received",
		}),
		TranscriptsFinal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_final_total",
			Help:      "Total number of final transcripts received",
		}),
		UtterancesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_dropped_total",
			Help:      "Total number of live utterances dropped",
		}, []string{"reason"}),
		IngestLimitExceeded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_limit_exceeded_total",
			Help:      "Total number of times per-utterance ingest limits were exceeded",
		}, []string{"limit_type"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		STTErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_errors_total",
			Help:      "Total number of STT errors",
		}, []string{"provider", "error_type"}),
		STTFinalLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stt_final_latency_seconds",
			Help:      "Time from first audio frame to final transcript",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}
}

// RecordSessionCreated records a new session.
func (m *Metrics) RecordSessionCreated(meetingType string) {
	m.SessionsCreated.WithLabelValues(meetingType).Inc()
	m.SessionsActive.Inc()
}

// RecordSessionStopped records the first stop of a session.
func (m *Metrics) RecordSessionStopped(durationSeconds float64) {
	m.SessionsActive.Dec()
	m.SessionsStopped.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordSpeakerCreated records a new speaker profile.
func (m *Metrics) RecordSpeakerCreated(remote bool) {
	label := "false"
	if remote {
		label = "true"
	}
	m.SpeakersResolved.WithLabelValues(label).Inc()
}

// RecordUtterance records an appended entry and its flags.
func (m *Metrics) RecordUtterance(entryType string, decision, actionItem bool) {
	m.Utterances.WithLabelValues(entryType).Inc()
	if entryType == "answer" {
		m.QuestionsAnswered.Inc()
	}
	if decision {
		m.Decisions.Inc()
	}
	if actionItem {
		m.ActionItems.Inc()
	}
}

// RecordMinutes records a minutes document produced in the given format.
func (m *Metrics) RecordMinutes(format string) {
	m.MinutesSynthesized.WithLabelValues(format).Inc()
}

// RecordRequest records a boundary request. code is empty on success.
func (m *Metrics) RecordRequest(transport, operation, code string, latencySeconds float64) {
	m.RequestLatency.WithLabelValues(transport, operation).Observe(latencySeconds)
	if code != "" {
		m.RequestErrors.WithLabelValues(transport, operation, code).Inc()
	}
}

// RecordIngestStart records a live ingest socket opening.
func (m *Metrics) RecordIngestStart() {
	m.IngestStreamsActive.Inc()
}

// RecordIngestEnd records a live ingest socket closing.
func (m *Metrics) RecordIngestEnd() {
	m.IngestStreamsActive.Dec()
}

// RecordAudioReceived records audio bytes and frames received.
func (m *Metrics) RecordAudioReceived(bytes int) {
	m.AudioBytesReceived.Add(float64(bytes))
	m.AudioFramesReceived.Inc()
}

// RecordPartialTranscript records a partial transcript received.
func (m *Metrics) RecordPartialTranscript() {
	m.TranscriptsPartial.Inc()
}

// RecordFinalTranscript records a final transcript received.
func (m *Metrics) RecordFinalTranscript(latencySeconds float64) {
	m.TranscriptsFinal.Inc()
	m.STTFinalLatency.Observe(latencySeconds)
}

// RecordUtteranceDropped records a live utterance being dropped.
func (m *Metrics) RecordUtteranceDropped(reason string) {
	m.UtterancesDropped.WithLabelValues(reason).Inc()
}

// RecordLimitExceeded records when an ingest limit is exceeded.
func (m *Metrics) RecordLimitExceeded(limitType string) {
	m.IngestLimitExceeded.WithLabelValues(limitType).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordSTTError records an STT error.
func (m *Metrics) RecordSTTError(provider, errorType string) {
	m.STTErrors.WithLabelValues(provider, errorType).Inc()
}
