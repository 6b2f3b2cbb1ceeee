package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"voice-minutes-service/internal/app"
	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/logging"
	"voice-minutes-service/internal/schema"
	"voice-minutes-service/internal/service/meeting"
	"voice-minutes-service/internal/service/minutes"
	"voice-minutes-service/internal/service/session"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	app       *app.Application
	meetings  *meeting.Service
	validator *schema.Validator
	logger    zerolog.Logger
}

func newHandlers(application *app.Application) *handlers {
	return &handlers{
		app:       application,
		meetings:  application.Meetings,
		validator: application.Validator,
		logger:    logging.WithComponent("http"),
	}
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := h.decode(w, r, schema.CreateSession, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.meetings.CreateSession(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) appendUtterance(w http.ResponseWriter, r *http.Request) {
	var req models.AppendUtteranceRequest
	if err := h.decode(w, r, schema.AppendUtterance, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.meetings.AppendUtterance(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: since must be an integer", session.ErrInvalidInput))
			return
		}
		since = n
	}

	resp, err := h.meetings.Status(r.Context(), chi.URLParam(r, "sessionID"), since)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	resp, err := h.meetings.Stop(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) minutes(w http.ResponseWriter, r *http.Request) {
	doc, err := h.meetings.Minutes(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handlers) minutesText(w http.ResponseWriter, r *http.Request) {
	charset := minutes.ParseCharset(r.URL.Query().Get("charset"))
	doc, err := h.meetings.MinutesText(r.Context(), chi.URLParam(r, "sessionID"), charset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset="+doc.Charset.String())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// decode validates the request body against the schema of kind and
// unmarshals it into dst.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, kind string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", session.ErrInvalidInput, err)
	}
	return h.validator.Decode(kind, body, dst)
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, code, models.ErrorResponse{Error: err.Error()})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
