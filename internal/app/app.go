// Package app wires the configuration, the meeting service and its
// collaborators into one process-wide Application shared by the transports.
package app

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"voice-minutes-service/internal/config"
	"voice-minutes-service/internal/events"
	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/logging"
	"voice-minutes-service/internal/schema"
	"voice-minutes-service/internal/service/audio"
	"voice-minutes-service/internal/service/meeting"
	"voice-minutes-service/internal/service/stt"
	"voice-minutes-service/internal/service/stt/google"
	"voice-minutes-service/internal/service/stt/mock"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Meetings    *meeting.Service
	Validator   *schema.Validator
	STT         stt.Factory
	STTProvider string
	Limits      audio.Limits

	publisher *events.Publisher
	ready     atomic.Bool
}

// New constructs an Application from the provided configuration.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}

	v, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("compile request schemas: %w", err)
	}
	a.Validator = v

	factory, err := newSTTFactory(cfg.STT)
	if err != nil {
		return nil, err
	}
	a.STT = factory
	a.STTProvider = cfg.STT.Provider

	a.Limits = audio.Limits{
		MaxAudioBytes: int64(cfg.IngestLimits.MaxAudioBytes),
		MaxDuration:   cfg.IngestLimits.MaxDuration,
		MaxPartials:   cfg.IngestLimits.MaxPartials,
	}

	a.publisher = events.New(&events.Config{
		Brokers:      cfg.Kafka.Brokers,
		TopicEntries: cfg.Kafka.TopicEntries,
		TopicMinutes: cfg.Kafka.TopicMinutes,
		Principal:    cfg.Kafka.Principal,
		Enabled:      cfg.Kafka.Enabled,
	})

	a.Meetings = meeting.NewService(a.publisher, meeting.Defaults{
		MeetingType: models.MeetingType(cfg.Session.DefaultMeetingType),
		AudioSource: cfg.Session.DefaultAudioSource,
		Channel:     cfg.Session.DefaultChannel,
	})

	a.Logger.Info().
		Str("principal", cfg.Service.Principal).
		Str("sttProvider", cfg.STT.Provider).
		Bool("kafkaEnabled", cfg.Kafka.Enabled).
		Msg("Voice minutes application created")
	return a, nil
}

func newSTTFactory(cfg config.STTConfig) (stt.Factory, error) {
	switch cfg.Provider {
	case "", "mock":
		return mock.NewFactory(), nil
	case "google":
		return google.NewFactory(google.Config{
			LanguageCode:   cfg.LanguageCode,
			SampleRateHz:   cfg.SampleRateHz,
			InterimResults: cfg.InterimResults,
			AudioEncoding:  cfg.AudioEncoding,
		}), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.Provider)
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.ready.Store(true)

	a.Logger.Info().
		Str("method", "Start").
		Time("startupTime", a.StartupTime).
		Msg("Voice minutes service starting")
	return nil
}

// Ready reports whether the application is serving traffic.
func (a *Application) Ready() bool {
	return a.ready.Load()
}

// Shutdown stops accepting traffic and flushes the event publisher.
func (a *Application) Shutdown() {
	a.ready.Store(false)
	a.Logger.Info().Str("method", "Shutdown").Msg("Voice minutes service shutting down")

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
}
