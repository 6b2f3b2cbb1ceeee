package minutes

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"voice-minutes-service/internal/models"
)

// Charset selects the byte encoding of rendered documents.
type Charset int

const (
	CharsetUTF8 Charset = iota
	CharsetLatin1
)

// ParseCharset maps a query value to a Charset. Unknown values render UTF-8.
func ParseCharset(s string) Charset {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latin1", "latin-1", "iso-8859-1":
		return CharsetLatin1
	default:
		return CharsetUTF8
	}
}

// String returns the MIME charset name.
func (c Charset) String() string {
	if c == CharsetLatin1 {
		return "iso-8859-1"
	}
	return "utf-8"
}

// Rendering limits.
const (
	MaxDiscussionPoints = 15
	DiscussionRunes     = 80
)

// Renderer lays out a minutes document as plain text.
type Renderer struct {
	charset   Charset
	maxPoints int
	truncate  int
	title     cases.Caser
	upper     cases.Caser
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithCharset sets the output encoding.
func WithCharset(c Charset) RenderOption {
	return func(r *Renderer) {
		r.charset = c
	}
}

// WithDiscussionLimit caps the number of discussion points and the runes
// shown per point.
func WithDiscussionLimit(points, runes int) RenderOption {
	return func(r *Renderer) {
		if points > 0 {
			r.maxPoints = points
		}
		if runes > 0 {
			r.truncate = runes
		}
	}
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{
		charset:   CharsetUTF8,
		maxPoints: MaxDiscussionPoints,
		truncate:  DiscussionRunes,
		title:     cases.Title(language.English),
		upper:     cases.Upper(language.English),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Charset returns the output encoding.
func (r *Renderer) Charset() Charset {
	return r.charset
}

// Render writes the document to w.
func (r *Renderer) Render(w io.Writer, doc models.MinutesDocument) error {
	var b bytes.Buffer
	r.layout(&b, doc)

	out := b.Bytes()
	if r.charset == CharsetLatin1 {
		out = EncodeLatin1(b.String())
	}
	_, err := w.Write(out)
	return err
}

// RenderBytes returns the rendered document.
func (r *Renderer) RenderBytes(doc models.MinutesDocument) []byte {
	var b bytes.Buffer
	_ = r.Render(&b, doc)
	return b.Bytes()
}

func (r *Renderer) layout(b *bytes.Buffer, doc models.MinutesDocument) {
	b.WriteString("MEETING MINUTES\n")
	fmt.Fprintf(b, "%s\n", doc.Title)
	fmt.Fprintf(b, "%s | %s MEETING\n", doc.Date.Format("January 02, 2006 at 15:04"), r.upper.String(string(doc.MeetingType)))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("Meeting Information\n")
	fmt.Fprintf(b, "Duration: %s\n", doc.Duration)
	fmt.Fprintf(b, "Audio Sources: %s\n\n", strings.Join(doc.AudioSources, ", "))

	b.WriteString("PARTICIPANTS\n")
	if len(doc.Participants) > 0 {
		b.WriteString("In-Person:\n")
		for _, p := range doc.Participants {
			fmt.Fprintf(b, "  - %s (%d contributions)\n", p.Name, p.SpeakingTime)
		}
	}
	if len(doc.RemoteParticipants) > 0 {
		b.WriteString("Remote:\n")
		for _, p := range doc.RemoteParticipants {
			fmt.Fprintf(b, "  - %s via %s\n", p.Name, r.SourceName(p.Source))
		}
	}
	b.WriteString("\n")

	if len(doc.QAPairs) > 0 {
		b.WriteString("QUESTIONS & ANSWERS\n")
		for i, qa := range doc.QAPairs {
			fmt.Fprintf(b, "Q%d. [%s] %s:\n", i+1, clock(qa.Question), qa.Question.SpeakerName)
			r.group(b, qa, "    ")
			b.WriteString("\n")
		}
	}

	if len(doc.Decisions) > 0 {
		b.WriteString("KEY DECISIONS\n")
		for _, d := range doc.Decisions {
			fmt.Fprintf(b, "- [%s] %s\n", clock(d), d.Text)
		}
		b.WriteString("\n")
	}

	if len(doc.ActionItems) > 0 {
		b.WriteString("ACTION ITEMS\n")
		for _, a := range doc.ActionItems {
			fmt.Fprintf(b, "- [%s] %s: %s\n", clock(a), assignee(a), a.Text)
		}
		b.WriteString("\n")
	}

	if len(doc.KeyDiscussionPoints) > 0 {
		b.WriteString("KEY DISCUSSION POINTS\n")
		points := doc.KeyDiscussionPoints
		if len(points) > r.maxPoints {
			points = points[:r.maxPoints]
		}
		for _, e := range points {
			fmt.Fprintf(b, "[%s] %s: %s\n", clock(e), e.SpeakerName, Truncate(e.Text, r.truncate))
		}
		b.WriteString("\n")
	}

	b.WriteString("Generated by VoiceMinutes\n")
}

// group writes a question's text, its answers and nested follow-ups.
func (r *Renderer) group(b *bytes.Buffer, qa models.QAGroup, indent string) {
	fmt.Fprintf(b, "%s%s%s\n", indent, qa.Question.Text, marks(qa.Question))
	for _, a := range qa.Answers {
		fmt.Fprintf(b, "%sA. [%s] %s:\n", indent, clock(a), a.SpeakerName)
		fmt.Fprintf(b, "%s   %s%s\n", indent, a.Text, marks(a))
	}
	for _, f := range qa.FollowUpQuestions {
		fmt.Fprintf(b, "%sFollow-up. [%s] %s:\n", indent, clock(f.Question), f.Question.SpeakerName)
		r.group(b, f, indent+"    ")
	}
}

// SourceName turns an audio source id such as "tab_audio" into "Tab Audio".
func (r *Renderer) SourceName(source string) string {
	return r.title.String(strings.ReplaceAll(source, "_", " "))
}

// marks annotates threaded entries that also carry decision or action flags.
func marks(e models.TranscriptEntry) string {
	var m string
	if e.IsDecision {
		m += " [DECISION]"
	}
	if e.IsActionItem {
		m += " [ACTION: " + assignee(e) + "]"
	}
	return m
}

func assignee(e models.TranscriptEntry) string {
	if e.Assignee != "" {
		return e.Assignee
	}
	if e.SpeakerName != "" {
		return e.SpeakerName
	}
	return "Unassigned"
}

func clock(e models.TranscriptEntry) string {
	return e.Timestamp.Format("15:04")
}

// Truncate shortens text to n runes, appending "..." when it was cut.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}

// EncodeLatin1 encodes s as ISO-8859-1, substituting '?' for every rune the
// charset cannot represent.
func EncodeLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if c, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, c)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// Filename returns the download name for a rendered document.
func Filename(meetingType models.MeetingType, meetingID string) string {
	id := meetingID
	if len(id) > 8 {
		id = id[:8]
	}
	t := strings.ReplaceAll(string(meetingType), "/", "-")
	return fmt.Sprintf("meeting_minutes_%s_%s.txt", t, id)
}
