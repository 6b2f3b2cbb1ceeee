// Package mock provides a mock STT adapter for running live ingest without
// cloud credentials. It walks a script of meeting utterances: one partial per
// audio frame, then exactly one final followed by an end-of-utterance, then
// the next utterance. Callbacks are delivered in order from one goroutine.
package mock

import (
	"context"
	"sync"
	"time"

	"voice-minutes-service/internal/service/stt"
)

// SimulatedUtterance is one scripted utterance.
type SimulatedUtterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterances is a short meeting exchange.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"What's the", "What's the status", "What's the status of the"},
		Final:      "What's the status of the billing migration?",
		Confidence: 0.94,
	},
	{
		Partials:   []string{"We're", "We're about", "We're about halfway"},
		Final:      "We're about halfway through the backfill",
		Confidence: 0.91,
	},
	{
		Partials:   []string{"We decided", "We decided to"},
		Final:      "We decided to freeze schema changes until it lands",
		Confidence: 0.96,
	},
	{
		Partials:   []string{"I'll send", "I'll send the"},
		Final:      "I'll send the rollout plan by Friday",
		Confidence: 0.97,
	},
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithUtterances replaces the script.
func WithUtterances(u []SimulatedUtterance) Option {
	return func(a *Adapter) {
		if len(u) > 0 {
			a.script = u
		}
	}
}

// WithDelays sets the simulated processing delays for partials and finals.
func WithDelays(partial, final time.Duration) Option {
	return func(a *Adapter) {
		a.partialDelay = partial
		a.finalDelay = final
	}
}

type event struct {
	delay time.Duration
	fn    func(stt.Callback)
}

// Adapter implements stt.Adapter with scripted responses.
type Adapter struct {
	mu            sync.Mutex
	cb            stt.Callback
	script        []SimulatedUtterance
	current       int // index into script
	partialIndex  int // next partial of the current utterance
	audioReceived int
	closed        bool
	partialDelay  time.Duration
	finalDelay    time.Duration

	queue chan event
	done  chan struct{}
}

// New creates a mock adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		script:       DefaultUtterances,
		partialDelay: 50 * time.Millisecond,
		finalDelay:   100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFactory returns an stt.Factory producing mock adapters.
func NewFactory(opts ...Option) stt.Factory {
	return func(context.Context) (stt.Adapter, error) {
		return New(opts...), nil
	}
}

// Start begins a mock transcription session.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cb != nil || a.closed {
		return nil
	}
	a.cb = cb
	a.queue = make(chan event, 64)
	a.done = make(chan struct{})
	go a.run(cb)
	return nil
}

func (a *Adapter) run(cb stt.Callback) {
	defer close(a.done)
	for ev := range a.queue {
		if ev.delay > 0 {
			time.Sleep(ev.delay)
		}
		ev.fn(cb)
	}
}

// SendAudio advances the script by one step per frame.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil {
		return nil
	}
	a.audioReceived++

	utt := a.script[a.current%len(a.script)]
	if a.partialIndex < len(utt.Partials) {
		text := utt.Partials[a.partialIndex]
		a.partialIndex++
		a.queue <- event{a.partialDelay, func(cb stt.Callback) { cb.OnPartial(text) }}
		return nil
	}

	a.queue <- event{a.finalDelay, finalEvent(utt)}
	a.current++
	a.partialIndex = 0
	return nil
}

func finalEvent(utt SimulatedUtterance) func(stt.Callback) {
	return func(cb stt.Callback) {
		cb.OnFinal(utt.Final, utt.Confidence)
		cb.OnEndOfUtterance()
	}
}

// AudioReceived returns the number of frames received.
func (a *Adapter) AudioReceived() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.audioReceived
}

// Close ends the session after delivering queued callbacks. An utterance
// with partials already sent gets its final first.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	if a.queue == nil {
		a.mu.Unlock()
		return nil
	}
	if a.partialIndex > 0 {
		a.queue <- event{0, finalEvent(a.script[a.current%len(a.script)])}
	}
	close(a.queue)
	done := a.done
	a.mu.Unlock()

	<-done
	return nil
}
