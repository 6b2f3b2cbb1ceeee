package grpcapi

import (
	"context"
	"net"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"voice-minutes-service/internal/observability"
	"voice-minutes-service/internal/observability/metrics"
	"voice-minutes-service/internal/schema"
	"voice-minutes-service/internal/service/meeting"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	g := grpc.NewServer(grpc.UnaryInterceptor(observability.UnaryServerInterceptor(metrics.DefaultMetrics)))
	Register(g, meeting.NewService(nil, meeting.Defaults{}), schema.MustNew())
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { cc.Close() })
	return NewClient(cc)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func createMeeting(t *testing.T, c *Client, meetingType string) string {
	t.Helper()
	out, err := c.CreateSession(context.Background(), mustStruct(t, map[string]any{"meeting_type": meetingType}))
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	id := out.GetFields()["meeting_id"].GetStringValue()
	if id == "" {
		t.Fatal("expected a meeting id")
	}
	return id
}

func TestServer_MeetingFlow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	id := createMeeting(t, c, "hybrid")

	utterances := []map[string]any{
		{"text": "What is the rollout date?", "voice_features": map[string]any{"avg_pitch": 100.0, "words_per_minute": 120.0, "energy": 5000.0}},
		{"text": "Yes, next Tuesday.", "voice_features": map[string]any{"avg_pitch": 220.0, "words_per_minute": 150.0, "energy": 3000.0}},
	}
	for i, u := range utterances {
		u["meeting_id"] = id
		out, err := c.AppendUtterance(ctx, mustStruct(t, u))
		if err != nil {
			t.Fatalf("AppendUtterance %d: %v", i, err)
		}
		entry := out.GetFields()["entry"].GetStructValue()
		if got := int(entry.GetFields()["index"].GetNumberValue()); got != i {
			t.Errorf("append %d: got index %d", i, got)
		}
	}

	st, err := c.GetStatus(ctx, mustStruct(t, map[string]any{"meeting_id": id, "since": 1}))
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if n := len(st.GetFields()["entries"].GetListValue().GetValues()); n != 1 {
		t.Errorf("expected 1 entry since offset 1, got %d", n)
	}
	if total := st.GetFields()["total_count"].GetNumberValue(); total != 2 {
		t.Errorf("expected total_count 2, got %v", total)
	}

	stopped, err := c.StopSession(ctx, mustStruct(t, map[string]any{"meeting_id": id}))
	if err != nil {
		t.Fatalf("StopSession: %v", err)
	}
	if s := stopped.GetFields()["status"].GetStringValue(); s != "stopped" {
		t.Errorf("expected stopped, got %q", s)
	}

	doc, err := c.GetMinutes(ctx, mustStruct(t, map[string]any{"meeting_id": id}))
	if err != nil {
		t.Fatalf("GetMinutes: %v", err)
	}
	pairs := doc.GetFields()["qa_pairs"].GetListValue().GetValues()
	if len(pairs) != 1 {
		t.Fatalf("expected one Q&A group, got %d", len(pairs))
	}
	answers := pairs[0].GetStructValue().GetFields()["answers"].GetListValue().GetValues()
	if len(answers) != 1 {
		t.Errorf("expected one answer, got %d", len(answers))
	}

	text, err := c.GetMinutes(ctx, mustStruct(t, map[string]any{"meeting_id": id, "format": "text"}))
	if err != nil {
		t.Fatalf("GetMinutes text: %v", err)
	}
	if !strings.HasPrefix(text.GetFields()["filename"].GetStringValue(), "meeting_minutes_hybrid_") {
		t.Errorf("unexpected filename %q", text.GetFields()["filename"].GetStringValue())
	}
	if !strings.Contains(text.GetFields()["text"].GetStringValue(), "QUESTIONS & ANSWERS") {
		t.Error("expected rendered minutes text")
	}
}

func TestServer_ErrorCodes(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	id := createMeeting(t, c, "physical")

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"append unknown session", func() error {
			_, err := c.AppendUtterance(ctx, mustStruct(t, map[string]any{"meeting_id": "nope", "text": "hi"}))
			return err
		}, codes.NotFound},
		{"append without meeting id", func() error {
			_, err := c.AppendUtterance(ctx, mustStruct(t, map[string]any{"text": "hi"}))
			return err
		}, codes.InvalidArgument},
		{"append without text", func() error {
			_, err := c.AppendUtterance(ctx, mustStruct(t, map[string]any{"meeting_id": id}))
			return err
		}, codes.InvalidArgument},
		{"append blank text", func() error {
			_, err := c.AppendUtterance(ctx, mustStruct(t, map[string]any{"meeting_id": id, "text": "  "}))
			return err
		}, codes.InvalidArgument},
		{"create with wrong field type", func() error {
			_, err := c.CreateSession(ctx, mustStruct(t, map[string]any{"meeting_type": 4}))
			return err
		}, codes.InvalidArgument},
		{"status with string offset", func() error {
			_, err := c.GetStatus(ctx, mustStruct(t, map[string]any{"meeting_id": id, "since": "one"}))
			return err
		}, codes.InvalidArgument},
		{"status with negative offset", func() error {
			_, err := c.GetStatus(ctx, mustStruct(t, map[string]any{"meeting_id": id, "since": -1}))
			return err
		}, codes.InvalidArgument},
		{"stop unknown session", func() error {
			_, err := c.StopSession(ctx, mustStruct(t, map[string]any{"meeting_id": "nope"}))
			return err
		}, codes.NotFound},
		{"minutes unknown session", func() error {
			_, err := c.GetMinutes(ctx, mustStruct(t, map[string]any{"meeting_id": "nope"}))
			return err
		}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if got := status.Code(err); got != tt.code {
				t.Errorf("expected %s, got %s (%v)", tt.code, got, err)
			}
		})
	}
}

func TestServer_DirectCallWithoutTransport(t *testing.T) {
	s := NewServer(meeting.NewService(nil, meeting.Defaults{}), schema.MustNew())

	out, err := s.CreateSession(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if got := out.GetFields()["meeting_type"].GetStringValue(); got != "physical" {
		t.Errorf("expected default meeting type, got %q", got)
	}
}
