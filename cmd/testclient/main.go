package main

import (
	"context"
	"flag"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	grpcapi "voice-minutes-service/internal/api/grpc"
)

// A short scripted exchange between two voices.
var script = []map[string]any{
	{"text": "What's the status of the billing migration?", "voice_features": voice(105, 125, 5200)},
	{"text": "We're about halfway through the backfill.", "voice_features": voice(210, 150, 3100)},
	{"text": "We decided to freeze schema changes until it lands.", "voice_features": voice(105, 125, 5200)},
	{"text": "I'll send the rollout plan by Friday.", "voice_features": voice(210, 150, 3100), "audio_source": "tab_audio"},
}

func voice(pitch, pace, energy float64) map[string]any {
	return map[string]any{"avg_pitch": pitch, "words_per_minute": pace, "energy": energy}
}

func main() {
	serverAddr := flag.String("server", "localhost:50051", "gRPC server address")
	meetingType := flag.String("type", "hybrid", "Meeting type")
	flag.Parse()

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Println("Connected to server")

	client := grpcapi.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := client.CreateSession(ctx, mustStruct(map[string]any{"meeting_type": *meetingType}))
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	id := created.GetFields()["meeting_id"].GetStringValue()
	log.Printf("Session started: meetingId=%s", id)

	for _, u := range script {
		u["meeting_id"] = id
		out, err := client.AppendUtterance(ctx, mustStruct(u))
		if err != nil {
			log.Fatalf("failed to append utterance: %v", err)
		}
		entry := out.GetFields()["entry"].GetStructValue().GetFields()
		log.Printf("Appended: %s [%s] %s",
			entry["speaker_name"].GetStringValue(),
			entry["type"].GetStringValue(),
			entry["text"].GetStringValue())
	}

	stopped, err := client.StopSession(ctx, mustStruct(map[string]any{"meeting_id": id}))
	if err != nil {
		log.Fatalf("failed to stop session: %v", err)
	}
	log.Printf("Session stopped: duration=%s", stopped.GetFields()["duration"].GetStringValue())

	doc, err := client.GetMinutes(ctx, mustStruct(map[string]any{"meeting_id": id}))
	if err != nil {
		log.Fatalf("failed to get minutes: %v", err)
	}
	b, _ := protojson.MarshalOptions{Multiline: true}.Marshal(doc)
	log.Printf("Minutes:\n%s", b)
}

func mustStruct(m map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(m)
	if err != nil {
		log.Fatalf("invalid request: %v", err)
	}
	return s
}
