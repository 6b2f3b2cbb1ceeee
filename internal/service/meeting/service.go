// Package meeting implements the boundary operations over the session
// registry: create, append, status, stop and minutes. It applies request
// defaults, records metrics, logs and publishes events; the transports only
// decode and encode.
package meeting

import (
	"context"
	"fmt"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/logging"
	"voice-minutes-service/internal/observability/metrics"
	"voice-minutes-service/internal/service/minutes"
	"voice-minutes-service/internal/service/session"
	"voice-minutes-service/internal/service/speaker"
)

// StatusStarted and StatusStopped are the status strings of create and stop.
const (
	StatusStarted = "started"
	StatusStopped = "stopped"
)

// Publisher receives meeting events.
type Publisher interface {
	PublishEntry(ctx context.Context, sessionID string, entry models.TranscriptEntry) error
	PublishMinutes(ctx context.Context, sessionID string, doc models.MinutesDocument) error
}

// Defaults fill fields a request leaves empty.
type Defaults struct {
	MeetingType models.MeetingType
	AudioSource string
	Channel     string
}

// DefaultDefaults returns the built-in request defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		MeetingType: models.MeetingPhysical,
		AudioSource: "microphone",
		Channel:     "mono",
	}
}

// Service is the meeting application service.
type Service struct {
	registry  *session.Registry
	publisher Publisher
	metrics   *metrics.Metrics
	defaults  Defaults
}

// NewService creates a service. A nil publisher disables events.
func NewService(publisher Publisher, defaults Defaults, opts ...session.Option) *Service {
	m := metrics.DefaultMetrics
	opts = append(opts, session.WithSpeakerOptions(speaker.WithOnCreate(func(p models.SpeakerProfile) {
		m.RecordSpeakerCreated(p.IsRemote)
	})))

	d := DefaultDefaults()
	if defaults.MeetingType != "" {
		d.MeetingType = defaults.MeetingType
	}
	if defaults.AudioSource != "" {
		d.AudioSource = defaults.AudioSource
	}
	if defaults.Channel != "" {
		d.Channel = defaults.Channel
	}

	return &Service{
		registry:  session.NewRegistry(opts...),
		publisher: publisher,
		metrics:   m,
		defaults:  d,
	}
}

// Defaults returns the request defaults in effect.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// CreateSession starts a new meeting.
func (s *Service) CreateSession(ctx context.Context, req models.CreateSessionRequest) (models.CreateSessionResponse, error) {
	t := models.MeetingType(req.MeetingType)
	if t == "" {
		t = s.defaults.MeetingType
	}

	sess := s.registry.Create(t)
	s.metrics.RecordSessionCreated(string(t))

	logger := logging.WithSession(sess.ID())
	logger.Info().
		Str("meetingType", string(t)).
		Msg("Meeting session started")

	return models.CreateSessionResponse{
		MeetingID:   sess.ID(),
		MeetingType: t,
		Status:      StatusStarted,
		Timestamp:   sess.StartedAt(),
		Message:     session.SetupMessage(t),
	}, nil
}

// AppendUtterance appends one utterance to a session.
func (s *Service) AppendUtterance(ctx context.Context, sessionID string, req models.AppendUtteranceRequest) (models.AppendUtteranceResponse, error) {
	var features models.VoiceFeatures
	if req.VoiceFeatures != nil {
		features = *req.VoiceFeatures
	}
	if req.Channel != "" {
		features.Channel = req.Channel
	}
	if features.Channel == "" {
		features.Channel = s.defaults.Channel
	}
	source := req.AudioSource
	if source == "" {
		source = s.defaults.AudioSource
	}

	appended, err := s.registry.Append(sessionID, req.Text, features, source)
	if err != nil {
		return models.AppendUtteranceResponse{}, err
	}
	entry := appended.Entry

	s.metrics.RecordUtterance(string(entry.Type), entry.IsDecision, entry.IsActionItem)
	logger := logging.WithUtterance(sessionID, entry.Index)
	logger.Debug().
		Str("speakerId", entry.SpeakerID).
		Str("type", string(entry.Type)).
		Bool("decision", entry.IsDecision).
		Bool("actionItem", entry.IsActionItem).
		Msg("Utterance appended")

	s.publishEntry(ctx, sessionID, entry)

	return models.AppendUtteranceResponse{
		Entry:        entry,
		SpeakerCount: appended.SpeakerCount,
		AudioSources: appended.AudioSources,
	}, nil
}

// Status reports a session's transcript from since onward. A negative
// offset is rejected with ErrInvalidInput.
func (s *Service) Status(ctx context.Context, sessionID string, since int) (models.StatusResponse, error) {
	if since < 0 {
		return models.StatusResponse{}, fmt.Errorf("%w: since must not be negative", session.ErrInvalidInput)
	}
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.StatusResponse{}, err
	}
	return sess.Status(since), nil
}

// Stop ends a session. The first stop publishes the minutes document;
// later stops return the same duration.
func (s *Service) Stop(ctx context.Context, sessionID string) (models.StopSessionResponse, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.StopSessionResponse{}, err
	}

	duration, ended := sess.End()
	if ended {
		sn := sess.Snapshot()
		if sn.EndedAt != nil {
			s.metrics.RecordSessionStopped(sn.EndedAt.Sub(sn.StartedAt).Seconds())
		}
		logger := logging.WithSession(sessionID)
		logger.Info().
			Str("duration", duration).
			Int("entries", len(sn.Entries)).
			Int("speakers", len(sn.Speakers)).
			Msg("Meeting session stopped")

		doc := minutes.Synthesize(sn)
		s.metrics.RecordMinutes("event")
		if s.publisher != nil {
			if err := s.publisher.PublishMinutes(ctx, sessionID, doc); err != nil {
				logger.Error().Err(err).Msg("Failed to publish minutes")
			}
		}
	}

	return models.StopSessionResponse{Status: StatusStopped, Duration: duration}, nil
}

// Minutes synthesizes the minutes document of a session.
func (s *Service) Minutes(ctx context.Context, sessionID string) (models.MinutesDocument, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.MinutesDocument{}, err
	}
	s.metrics.RecordMinutes("json")
	return minutes.Synthesize(sess.Snapshot()), nil
}

// RenderedMinutes is a downloadable minutes document.
type RenderedMinutes struct {
	Filename string
	Charset  minutes.Charset
	Body     []byte
}

// MinutesText renders the minutes document of a session as text.
func (s *Service) MinutesText(ctx context.Context, sessionID string, charset minutes.Charset) (RenderedMinutes, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return RenderedMinutes{}, err
	}

	sn := sess.Snapshot()
	doc := minutes.Synthesize(sn)
	r := minutes.NewRenderer(minutes.WithCharset(charset))
	body := r.RenderBytes(doc)
	s.metrics.RecordMinutes("text")

	return RenderedMinutes{
		Filename: minutes.Filename(sn.MeetingType, sn.ID),
		Charset:  charset,
		Body:     body,
	}, nil
}

func (s *Service) publishEntry(ctx context.Context, sessionID string, entry models.TranscriptEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntry(ctx, sessionID, entry); err != nil {
		logger := logging.WithUtterance(sessionID, entry.Index)
		logger.Error().Err(err).Msg("Failed to publish transcript entry")
	}
}

// Session returns the live session, for transports that stream into it.
func (s *Service) Session(sessionID string) (*session.Session, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return sess, nil
}
