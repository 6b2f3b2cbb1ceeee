// Package grpcapi exposes the meeting operations as the gRPC service
// minutes.v1.MeetingService. Messages are google.protobuf.Struct values
// carrying the same JSON shapes as the HTTP API.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/observability/logging"
	"voice-minutes-service/internal/schema"
	"voice-minutes-service/internal/service/meeting"
	"voice-minutes-service/internal/service/minutes"
	"voice-minutes-service/internal/service/session"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "minutes.v1.MeetingService"

// MeetingServiceServer is the server API for MeetingService.
type MeetingServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AppendUtterance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMinutes(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(MeetingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MeetingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MeetingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for MeetingService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MeetingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: unaryHandler("CreateSession", MeetingServiceServer.CreateSession)},
		{MethodName: "AppendUtterance", Handler: unaryHandler("AppendUtterance", MeetingServiceServer.AppendUtterance)},
		{MethodName: "GetStatus", Handler: unaryHandler("GetStatus", MeetingServiceServer.GetStatus)},
		{MethodName: "StopSession", Handler: unaryHandler("StopSession", MeetingServiceServer.StopSession)},
		{MethodName: "GetMinutes", Handler: unaryHandler("GetMinutes", MeetingServiceServer.GetMinutes)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "minutes/v1/meeting.proto",
}

// Server implements MeetingServiceServer over the meeting service.
type Server struct {
	meetings  *meeting.Service
	validator *schema.Validator
	logger    zerolog.Logger
}

// NewServer creates a gRPC meeting server.
func NewServer(meetings *meeting.Service, validator *schema.Validator) *Server {
	return &Server{
		meetings:  meetings,
		validator: validator,
		logger:    logging.WithComponent("grpc"),
	}
}

// Register registers the meeting service on g.
func Register(g *grpc.Server, meetings *meeting.Service, validator *schema.Validator) {
	g.RegisterService(&ServiceDesc, NewServer(meetings, validator))
}

// CreateSession starts a meeting. Request: {"meeting_type"}.
func (s *Server) CreateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req models.CreateSessionRequest
	if err := s.decode(schema.CreateSession, in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	resp, err := s.meetings.CreateSession(ctx, req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.encode(resp)
}

// AppendUtterance appends one utterance. Request: {"meeting_id", "text",
// "voice_features", "audio_source", "channel"}.
func (s *Server) AppendUtterance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := meetingID(in)
	if err != nil {
		return nil, s.toStatus(err)
	}
	var req models.AppendUtteranceRequest
	if err := s.decode(schema.AppendUtterance, in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	resp, err := s.meetings.AppendUtterance(ctx, id, req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.encode(resp)
}

// GetStatus reports the transcript. Request: {"meeting_id", "since"}.
func (s *Server) GetStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := meetingID(in)
	if err != nil {
		return nil, s.toStatus(err)
	}
	since := 0
	if v, ok := in.GetFields()["since"]; ok {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, s.toStatus(fmt.Errorf("%w: since must be a number", session.ErrInvalidInput))
		}
		since = int(n.NumberValue)
	}
	resp, err := s.meetings.Status(ctx, id, since)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.encode(resp)
}

// StopSession stops a meeting. Request: {"meeting_id"}.
func (s *Server) StopSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := meetingID(in)
	if err != nil {
		return nil, s.toStatus(err)
	}
	resp, err := s.meetings.Stop(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.encode(resp)
}

// GetMinutes returns the minutes document. Request: {"meeting_id",
// "format"}; format "text" returns {"filename", "text"} instead.
func (s *Server) GetMinutes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := meetingID(in)
	if err != nil {
		return nil, s.toStatus(err)
	}

	if in.GetFields()["format"].GetStringValue() == "text" {
		doc, err := s.meetings.MinutesText(ctx, id, minutes.CharsetUTF8)
		if err != nil {
			return nil, s.toStatus(err)
		}
		return s.encode(map[string]string{
			"filename": doc.Filename,
			"text":     string(doc.Body),
		})
	}

	doc, err := s.meetings.Minutes(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.encode(doc)
}

func meetingID(in *structpb.Struct) (string, error) {
	id := in.GetFields()["meeting_id"].GetStringValue()
	if id == "" {
		return "", fmt.Errorf("%w: meeting_id is required", session.ErrInvalidInput)
	}
	return id, nil
}

// decode validates the struct as JSON against the schema of kind and
// unmarshals it into dst.
func (s *Server) decode(kind string, in *structpb.Struct, dst any) error {
	body, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return s.validator.Decode(kind, body, dst)
}

func (s *Server) encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Request failed")
		return status.Error(codes.Internal, err.Error())
	}
}
