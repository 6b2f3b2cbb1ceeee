package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"voice-minutes-service/internal/models"
)

// Registry maps session ids to sessions. The registry lock only guards the
// map; each session carries its own lock, so appends to different sessions
// proceed concurrently.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     []Option
	newID    func() string
}

// NewRegistry creates an empty registry. Options apply to every session.
func NewRegistry(opts ...Option) *Registry {
	o := newOptions(opts)
	newID := o.newID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		newID:    newID,
	}
}

// Create starts a new session and registers it.
func (r *Registry) Create(meetingType models.MeetingType) *Session {
	s := New(r.newID(), meetingType, r.opts...)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Append validates the text and appends an utterance to the session.
func (r *Registry) Append(id, text string, features models.VoiceFeatures, audioSource string) (Appended, error) {
	s, err := r.Get(id)
	if err != nil {
		return Appended{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Appended{}, fmt.Errorf("%w: no text provided", ErrInvalidInput)
	}
	return s.Append(text, features, audioSource), nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
