package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/logging"
	"voice-minutes-service/internal/schema"
	"voice-minutes-service/internal/service/audio"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// live streams audio into a session. Binary frames carry PCM audio; text
// frames carry JSON capture control applied to subsequent finals.
func (h *handlers) live(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.meetings.Session(sessionID); err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("sessionId", sessionID).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := logging.WithIngest(sessionID, h.app.STTProvider)
	sink := &wsSink{conn: conn, logger: logger}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	adapter, err := h.app.STT(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create STT adapter")
		sink.Error(err)
		return
	}

	handler := audio.NewHandlerWithLimits(adapter, h.meetings, sink, sessionID, h.app.STTProvider, h.app.Limits)
	if err := handler.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start STT session")
		sink.Error(err)
		return
	}
	defer handler.Close()

	logger.Info().Msg("Live ingest started")

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("Live ingest read ended")
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := handler.SendAudio(ctx, data); err != nil {
				sink.Error(err)
				if !errors.Is(err, audio.ErrLimitExceeded) {
					return
				}
			}
		case websocket.TextMessage:
			var c audio.Control
			if err := h.validator.Decode(schema.LiveControl, data, &c); err != nil {
				sink.Error(err)
				continue
			}
			handler.SetControl(c)
		}
	}
}

// wsSink writes ingest results back to the socket. Callbacks arrive from
// the STT goroutine, so writes are serialized.
type wsSink struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger zerolog.Logger
}

func (s *wsSink) Partial(text string) {
	s.send(models.LiveMessage{Type: models.LivePartial, Text: text})
}

func (s *wsSink) Entry(resp models.AppendUtteranceResponse, confidence float64) {
	entry := resp.Entry
	s.send(models.LiveMessage{
		Type:         models.LiveEntry,
		Entry:        &entry,
		SpeakerCount: resp.SpeakerCount,
		AudioSources: resp.AudioSources,
		Confidence:   confidence,
	})
}

func (s *wsSink) Error(err error) {
	s.send(models.LiveMessage{Type: models.LiveError, Error: err.Error()})
}

func (s *wsSink) send(msg models.LiveMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug().Err(err).Str("type", msg.Type).Msg("Failed to write live message")
	}
}
