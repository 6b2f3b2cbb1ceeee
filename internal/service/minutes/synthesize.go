// Package minutes turns a transcript snapshot into a structured minutes
// document and renders that document as plain text.
package minutes

import (
	"unicode/utf8"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/service/session"
)

// DiscussionMinRunes is the length a residual statement must exceed to be
// kept as a key discussion point.
const DiscussionMinRunes = 50

// Synthesize builds the minutes document for a snapshot. It is a pure
// function of the snapshot: calling it twice on the same snapshot yields
// identical documents.
//
// Every question lands in exactly one Q&A group, either its own or nested as
// a follow-up of an earlier question by the same speaker. Entries consumed by
// a group are not bucketed again; the rest go to decisions, action items or
// key discussion points, in that order of precedence.
func Synthesize(sn session.Snapshot) models.MinutesDocument {
	doc := models.MinutesDocument{
		Title:               sn.Title,
		Date:                sn.StartedAt,
		MeetingType:         sn.MeetingType,
		Duration:            sn.Duration(),
		Participants:        []models.ParticipantSummary{},
		RemoteParticipants:  []models.ParticipantSummary{},
		QAPairs:             []models.QAGroup{},
		Decisions:           []models.TranscriptEntry{},
		ActionItems:         []models.TranscriptEntry{},
		KeyDiscussionPoints: []models.TranscriptEntry{},
		AudioSources:        append([]string{}, sn.AudioSources...),
	}

	spoken := make(map[string]int, len(sn.Speakers))
	for _, e := range sn.Entries {
		spoken[e.SpeakerID]++
	}
	for _, p := range sn.Speakers {
		ps := models.ParticipantSummary{
			SpeakerID:    p.ID,
			Name:         p.Name,
			Source:       p.AudioSource,
			SpeakingTime: spoken[p.ID],
		}
		if p.IsRemote {
			doc.RemoteParticipants = append(doc.RemoteParticipants, ps)
		} else {
			doc.Participants = append(doc.Participants, ps)
		}
	}

	g := &grouper{entries: sn.Entries, used: make([]bool, len(sn.Entries))}
	for i, e := range sn.Entries {
		if e.Type == models.EntryQuestion && !g.used[i] {
			doc.QAPairs = append(doc.QAPairs, g.group(i))
		}
	}

	for i, e := range sn.Entries {
		if g.used[i] {
			continue
		}
		switch {
		case e.IsDecision:
			doc.Decisions = append(doc.Decisions, e)
		case e.IsActionItem:
			if e.Assignee == "" {
				e.Assignee = e.SpeakerName
			}
			doc.ActionItems = append(doc.ActionItems, e)
		case e.Type == models.EntryStatement && utf8.RuneCountInString(e.Text) > DiscussionMinRunes:
			doc.KeyDiscussionPoints = append(doc.KeyDiscussionPoints, e)
		}
	}
	return doc
}

type grouper struct {
	entries []models.TranscriptEntry
	used    []bool
}

// group opens the Q&A group for the question at qi and scans forward. Linked
// answers are collected past unrelated statements. The scan ends at the next
// question; that question becomes a nested follow-up when it comes from the
// same speaker and is not the final entry.
func (g *grouper) group(qi int) models.QAGroup {
	q := g.entries[qi]
	g.used[qi] = true
	qa := models.QAGroup{
		Question:          q,
		Answers:           []models.TranscriptEntry{},
		FollowUpQuestions: []models.QAGroup{},
	}

	last := len(g.entries) - 1
	for j := qi + 1; j <= last; j++ {
		e := g.entries[j]
		if e.Type == models.EntryQuestion {
			if e.SpeakerID == q.SpeakerID && j < last && !g.used[j] {
				qa.FollowUpQuestions = append(qa.FollowUpQuestions, g.group(j))
			}
			break
		}
		if e.Answers(q.Index) && !g.used[j] {
			qa.Answers = append(qa.Answers, e)
			g.used[j] = true
		}
	}
	return qa
}
