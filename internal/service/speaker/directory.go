// Package speaker attributes utterances to participants by online
// nearest-neighbour matching over acoustic summaries.
//
// Each call scans every profile in the directory, scores it against the
// incoming sample and either refines the closest profile or opens a new one:
//
//	score = 0.5·|Δpitch| + 0.3·|Δpace|/10 + 0.2·|Δenergy|/50
//
// A profile matches when its score is strictly below the threshold of the
// meeting type. Profiles are never removed.
package speaker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"voice-minutes-service/internal/models"
)

// Alpha is the exponential smoothing weight given to a new sample.
const Alpha = 0.3

// Match thresholds per meeting type. Hybrid capture is noisier.
const (
	DefaultThreshold = 20.0
	HybridThreshold  = 25.0
)

// ThresholdFor returns the match threshold for a meeting type.
func ThresholdFor(t models.MeetingType) float64 {
	if t == models.MeetingHybrid {
		return HybridThreshold
	}
	return DefaultThreshold
}

// Score is the weighted acoustic distance between a profile and a sample.
func Score(p models.VoiceSample, s models.VoiceSample) float64 {
	pitch := math.Abs(p.Pitch - s.Pitch)
	pace := math.Abs(p.Pace-s.Pace) / 10
	energy := math.Abs(p.Energy-s.Energy) / 50
	return pitch*0.5 + pace*0.3 + energy*0.2
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock overrides the clock used for profile creation times.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDFunc overrides speaker id generation.
func WithIDFunc(fn func() string) Option {
	return func(d *Directory) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// WithOnCreate registers a callback invoked with each new profile.
func WithOnCreate(fn func(models.SpeakerProfile)) Option {
	return func(d *Directory) {
		d.onCreate = fn
	}
}

// Directory holds the speaker profiles of one session.
// It is not safe for concurrent use; the owning session serializes access.
type Directory struct {
	threshold float64
	profiles  []*models.SpeakerProfile
	byID      map[string]*models.SpeakerProfile
	counter   int
	now       func() time.Time
	newID     func() string
	onCreate  func(models.SpeakerProfile)
}

// New creates an empty directory for a meeting type.
func New(meetingType models.MeetingType, opts ...Option) *Directory {
	d := &Directory{
		threshold: ThresholdFor(meetingType),
		byID:      make(map[string]*models.SpeakerProfile),
		now:       time.Now,
		newID:     newSpeakerID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func newSpeakerID() string {
	return "speaker_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Resolve attributes a feature vector to a speaker and returns its id.
// The matched profile's pitch and pace are smoothed toward the sample.
// It never fails: absent features fall back to priors.
func (d *Directory) Resolve(features models.VoiceFeatures, audioSource string) string {
	sample := features.Sample()

	var best *models.SpeakerProfile
	bestScore := math.Inf(1)
	for _, p := range d.profiles {
		if s := Score(p.Sample(), sample); s < bestScore {
			best, bestScore = p, s
		}
	}

	if best != nil && bestScore < d.threshold {
		best.AvgPitch = Alpha*sample.Pitch + (1-Alpha)*best.AvgPitch
		best.AvgPace = Alpha*sample.Pace + (1-Alpha)*best.AvgPace
		best.Samples++
		return best.ID
	}

	return d.create(sample, features.Channel, audioSource).ID
}

func (d *Directory) create(sample models.VoiceSample, channel, audioSource string) *models.SpeakerProfile {
	d.counter++
	remote := models.IsRemoteSource(audioSource)
	name := fmt.Sprintf("Participant %d", d.counter)
	if remote {
		name += " (Remote)"
	}

	p := &models.SpeakerProfile{
		ID:          d.newID(),
		Name:        name,
		AvgPitch:    sample.Pitch,
		AvgPace:     sample.Pace,
		AvgEnergy:   sample.Energy,
		Samples:     1,
		AudioSource: audioSource,
		Channel:     channel,
		IsRemote:    remote,
		FirstSeen:   d.now().UTC(),
	}
	d.profiles = append(d.profiles, p)
	d.byID[p.ID] = p
	if d.onCreate != nil {
		d.onCreate(*p)
	}
	return p
}

// Profile returns a copy of the profile with the given id.
func (d *Directory) Profile(id string) (models.SpeakerProfile, bool) {
	p, ok := d.byID[id]
	if !ok {
		return models.SpeakerProfile{}, false
	}
	return *p, true
}

// Profiles returns copies of all profiles in creation order.
func (d *Directory) Profiles() []models.SpeakerProfile {
	out := make([]models.SpeakerProfile, len(d.profiles))
	for i, p := range d.profiles {
		out[i] = *p
	}
	return out
}

// Len returns the number of known speakers.
func (d *Directory) Len() int {
	return len(d.profiles)
}
