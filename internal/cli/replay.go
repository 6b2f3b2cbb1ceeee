package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/service/meeting"
	"voice-minutes-service/internal/service/minutes"
	"voice-minutes-service/internal/service/session"
)

// DefaultInterval separates consecutive fixture utterances.
const DefaultInterval = 30 * time.Second

// replayClock is a settable clock for deterministic timestamps.
type replayClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *replayClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *replayClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Replay feeds the fixture through a fresh session and returns its minutes.
// Utterances are stamped interval apart from started_at (or now). When the
// fixture carries started_at or ended_at, the duration is formatted from
// those strings.
func Replay(ctx context.Context, f *Fixture, interval time.Duration) (models.MinutesDocument, error) {
	start := time.Now().UTC()
	if t, err := session.ParseTimestamp(f.StartedAt); err == nil {
		start = t
	}
	clock := &replayClock{t: start}

	svc := meeting.NewService(nil, meeting.Defaults{}, session.WithClock(clock.Now))
	created, err := svc.CreateSession(ctx, models.CreateSessionRequest{MeetingType: f.MeetingType})
	if err != nil {
		return models.MinutesDocument{}, err
	}

	for i, u := range f.Utterances {
		clock.Set(start.Add(time.Duration(i) * interval))
		_, err := svc.AppendUtterance(ctx, created.MeetingID, models.AppendUtteranceRequest{
			Text:          u.Text,
			VoiceFeatures: u.VoiceFeatures,
			AudioSource:   u.AudioSource,
			Channel:       u.Channel,
		})
		if err != nil {
			return models.MinutesDocument{}, fmt.Errorf("utterance %d: %w", i, err)
		}
	}

	end := start.Add(time.Duration(len(f.Utterances)) * interval)
	if t, err := session.ParseTimestamp(f.EndedAt); err == nil && !t.Before(start) {
		end = t
	}
	clock.Set(end)
	if _, err := svc.Stop(ctx, created.MeetingID); err != nil {
		return models.MinutesDocument{}, err
	}

	doc, err := svc.Minutes(ctx, created.MeetingID)
	if err != nil {
		return models.MinutesDocument{}, err
	}
	if f.StartedAt != "" || f.EndedAt != "" {
		doc.Duration = session.FormatDurationStrings(f.StartedAt, f.EndedAt)
	}
	return doc, nil
}

// NewReplayCmd creates the replay command.
func NewReplayCmd() *cobra.Command {
	var (
		format   string
		charset  string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay <fixture>",
		Short: "Replay a recorded meeting and print its minutes",
		Long:  "Feeds the utterances of a YAML or JSON fixture through a fresh meeting session and prints the synthesized minutes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}

			f, err := LoadFixture(args[0])
			if err != nil {
				return err
			}
			doc, err := Replay(cmd.Context(), f, interval)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			r := minutes.NewRenderer(minutes.WithCharset(minutes.ParseCharset(charset)))
			return r.Render(out, doc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&charset, "charset", "utf-8", "Text output charset: utf-8 or latin1")
	cmd.Flags().DurationVar(&interval, "interval", DefaultInterval, "Time between consecutive utterances")

	return cmd
}
