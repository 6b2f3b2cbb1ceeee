// Package audio bridges a live audio stream to a meeting session: audio goes
// to an STT adapter, partial transcripts go back to the client, and each
// final transcript is appended to the session as one utterance.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/logging"
	"voice-minutes-service/internal/observability/metrics"
	"voice-minutes-service/internal/service/stt"
)

// ErrLimitExceeded is returned by SendAudio when the utterance in progress
// was dropped for exceeding a limit.
var ErrLimitExceeded = errors.New("utterance limit exceeded")

// Limits bound a single utterance.
type Limits struct {
	MaxAudioBytes int64
	MaxDuration   time.Duration
	MaxPartials   int
}

// DefaultLimits returns the default per-utterance limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes: 5 * 1024 * 1024, // ~5 minutes at 8kHz 16-bit mono
		MaxDuration:   5 * time.Minute,
		MaxPartials:   500,
	}
}

// Appender appends a finalized utterance to a session.
type Appender interface {
	AppendUtterance(ctx context.Context, sessionID string, req models.AppendUtteranceRequest) (models.AppendUtteranceResponse, error)
}

// Sink receives what the handler sends back to the client.
type Sink interface {
	Partial(text string)
	Entry(resp models.AppendUtteranceResponse, confidence float64)
	Error(err error)
}

// Control is the capture context sent by the client between audio frames.
type Control struct {
	VoiceFeatures *models.VoiceFeatures `json:"voice_features,omitempty"`
	AudioSource   string                `json:"audio_source,omitempty"`
	Channel       string                `json:"channel,omitempty"`
}

// Handler manages one live ingest stream. It implements stt.Callback.
type Handler struct {
	adapter   stt.Adapter
	appender  Appender
	sink      Sink
	sessionID string
	provider  string
	limits    Limits
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu         sync.Mutex
	ctx        context.Context
	control    Control
	state      UtteranceState
	started    time.Time // first audio frame of the utterance
	audioBytes int64
	partials   int
	utterances int
	appended   int
}

// NewHandler creates a handler with default limits.
func NewHandler(adapter stt.Adapter, appender Appender, sink Sink, sessionID, provider string) *Handler {
	return NewHandlerWithLimits(adapter, appender, sink, sessionID, provider, DefaultLimits())
}

// NewHandlerWithLimits creates a handler with custom limits.
func NewHandlerWithLimits(adapter stt.Adapter, appender Appender, sink Sink, sessionID, provider string, limits Limits) *Handler {
	return &Handler{
		adapter:   adapter,
		appender:  appender,
		sink:      sink,
		sessionID: sessionID,
		provider:  provider,
		limits:    limits,
		metrics:   metrics.DefaultMetrics,
		logger:    logging.WithIngest(sessionID, provider),
		ctx:       context.Background(),
		state:     StateOpen,
	}
}

// Start begins the STT session. ctx bounds the appends made for finals.
func (h *Handler) Start(ctx context.Context) error {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()

	h.metrics.RecordIngestStart()
	return h.adapter.Start(ctx, h)
}

// SetControl replaces the capture context used for subsequent finals.
func (h *Handler) SetControl(c Control) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.control = c
}

// SendAudio forwards audio to the adapter. Audio for a dropped utterance is
// discarded until the provider reports the end of that utterance.
func (h *Handler) SendAudio(ctx context.Context, audio []byte) error {
	h.mu.Lock()
	if h.state == StateDropped {
		h.mu.Unlock()
		return nil
	}
	if h.started.IsZero() {
		h.started = time.Now()
	}
	h.audioBytes += int64(len(audio))
	bytes, elapsed := h.audioBytes, time.Since(h.started)
	h.mu.Unlock()

	h.metrics.RecordAudioReceived(len(audio))

	if h.limits.MaxAudioBytes > 0 && bytes > h.limits.MaxAudioBytes {
		h.metrics.RecordLimitExceeded("audio_bytes")
		h.Drop(fmt.Sprintf("max audio bytes exceeded: %d > %d", bytes, h.limits.MaxAudioBytes))
		return fmt.Errorf("%w: audio bytes", ErrLimitExceeded)
	}
	if h.limits.MaxDuration > 0 && elapsed > h.limits.MaxDuration {
		h.metrics.RecordLimitExceeded("duration")
		h.Drop(fmt.Sprintf("max duration exceeded: %v > %v", elapsed, h.limits.MaxDuration))
		return fmt.Errorf("%w: duration", ErrLimitExceeded)
	}

	return h.adapter.SendAudio(ctx, audio)
}

// Close ends the STT session. Finals flushed by the adapter are still appended.
func (h *Handler) Close() error {
	err := h.adapter.Close()
	h.metrics.RecordIngestEnd()

	h.mu.Lock()
	h.logger.Info().
		Int("utterances", h.utterances).
		Int("appended", h.appended).
		Msg("Live ingest closed")
	h.mu.Unlock()
	return err
}

// State returns the state of the utterance in progress.
func (h *Handler) State() UtteranceState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Appended returns how many finals were appended to the session.
func (h *Handler) Appended() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.appended
}

// UtteranceCount returns how many utterance boundaries were seen.
func (h *Handler) UtteranceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.utterances
}

// Drop abandons the utterance in progress. It returns false if the utterance
// was already finalized or dropped.
func (h *Handler) Drop(reason string) bool {
	h.mu.Lock()
	prev := h.state
	if prev.IsTerminal() {
		h.mu.Unlock()
		return false
	}
	h.state = StateDropped
	h.mu.Unlock()

	h.metrics.RecordUtteranceDropped(dropLabel(reason))
	h.logger.Warn().
		Str("previousState", prev.String()).
		Str("reason", reason).
		Msg("Utterance dropped")
	return true
}

func dropLabel(reason string) string {
	switch {
	case strings.HasPrefix(reason, "max"):
		return "limit"
	case strings.HasPrefix(reason, "stt"):
		return "stt_error"
	default:
		return "other"
	}
}

// --- stt.Callback implementation ---

// OnPartial forwards an interim transcript while the utterance is open.
func (h *Handler) OnPartial(text string) {
	h.mu.Lock()
	if h.state != StateOpen {
		h.mu.Unlock()
		return
	}
	h.partials++
	count := h.partials
	h.mu.Unlock()

	h.metrics.RecordPartialTranscript()
	if h.limits.MaxPartials > 0 && count > h.limits.MaxPartials {
		h.metrics.RecordLimitExceeded("partials")
		h.Drop(fmt.Sprintf("max partials exceeded: %d > %d", count, h.limits.MaxPartials))
		return
	}
	h.sink.Partial(text)
}

// OnFinal appends the final transcript to the session, once per utterance.
func (h *Handler) OnFinal(text string, confidence float64) {
	h.mu.Lock()
	if h.state != StateOpen {
		state := h.state
		h.mu.Unlock()
		h.logger.Debug().Str("state", state.String()).Msg("Final ignored")
		return
	}
	h.state = StateFinalized
	ctx, control, started := h.ctx, h.control, h.started
	h.mu.Unlock()

	if !started.IsZero() {
		h.metrics.RecordFinalTranscript(time.Since(started).Seconds())
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	resp, err := h.appender.AppendUtterance(ctx, h.sessionID, models.AppendUtteranceRequest{
		Text:          text,
		VoiceFeatures: control.VoiceFeatures,
		AudioSource:   control.AudioSource,
		Channel:       control.Channel,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to append final transcript")
		h.sink.Error(err)
		return
	}

	h.mu.Lock()
	h.appended++
	h.mu.Unlock()
	h.sink.Entry(resp, confidence)
}

// OnEndOfUtterance resets the per-utterance counters for the next utterance.
func (h *Handler) OnEndOfUtterance() {
	h.mu.Lock()
	prev := h.state
	bytes, partials := h.audioBytes, h.partials
	h.utterances++
	h.state = StateOpen
	h.started = time.Time{}
	h.audioBytes = 0
	h.partials = 0
	n := h.utterances
	h.mu.Unlock()

	h.logger.Debug().
		Int("utterance", n).
		Str("state", prev.String()).
		Int64("audioBytes", bytes).
		Int("partials", partials).
		Msg("End of utterance")
}

// OnError drops the utterance in progress. No final is appended for it.
func (h *Handler) OnError(err error) {
	h.metrics.RecordSTTError(h.provider, "stream")
	h.Drop("stt error: " + err.Error())
	h.sink.Error(err)
}
