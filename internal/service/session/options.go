package session

import (
	"time"

	"voice-minutes-service/internal/service/classify"
	"voice-minutes-service/internal/service/speaker"
)

// Option configures sessions.
type Option func(*options)

type options struct {
	now         func() time.Time
	newID       func() string
	classifier  *classify.Classifier
	speakerOpts []speaker.Option
}

func newOptions(opts []Option) *options {
	o := &options{
		now:        time.Now,
		classifier: classify.Default,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.speakerOpts = append([]speaker.Option{speaker.WithClock(o.now)}, o.speakerOpts...)
	return o
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDFunc sets the session id generator used by the registry.
func WithIDFunc(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithClassifier replaces the default rule table.
func WithClassifier(c *classify.Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithSpeakerOptions passes options through to each speaker directory.
func WithSpeakerOptions(opts ...speaker.Option) Option {
	return func(o *options) {
		o.speakerOpts = append(o.speakerOpts, opts...)
	}
}
