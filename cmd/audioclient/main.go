package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"voice-minutes-service/internal/models"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Stream audio in chunks to simulate real-time streaming
// At 8kHz 16-bit mono = 16000 bytes/second
// 100ms chunks = 1600 bytes
const chunkSize = 1600
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "testdata/sample-8khz.wav", "Path to WAV file (8kHz 16-bit mono)")
	serverAddr := flag.String("server", "http://localhost:8080", "HTTP server base URL")
	sessionID := flag.String("session", "", "Meeting id (a new session is created when empty)")
	meetingType := flag.String("type", "physical", "Meeting type for a new session")
	source := flag.String("source", "microphone", "Audio source reported to the server")
	pitch := flag.Float64("pitch", 0, "Average pitch of the speaker (0 to omit)")
	flag.Parse()

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	// Read and validate WAV header
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if sampleRate != 8000 {
		log.Printf("Warning: Sample rate is %d Hz, expected 8000 Hz", sampleRate)
	}

	id := *sessionID
	if id == "" {
		id = createSession(*serverAddr, *meetingType)
	}

	wsURL, err := url.Parse(*serverAddr)
	if err != nil {
		log.Fatalf("Invalid server URL: %v", err)
	}
	wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)
	wsURL.Path = "/v1/sessions/" + id + "/live"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to %s", wsURL)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg models.LiveMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Type {
			case models.LivePartial:
				log.Printf("partial: %s", msg.Text)
			case models.LiveEntry:
				log.Printf("entry #%d %s [%s]: %s", msg.Entry.Index, msg.Entry.SpeakerName, msg.Entry.Type, msg.Entry.Text)
			case models.LiveError:
				log.Printf("error: %s", msg.Error)
			}
		}
	}()

	control := map[string]any{"audio_source": *source}
	if *pitch > 0 {
		control["voice_features"] = models.VoiceFeatures{AvgPitch: pitch}
	}
	if err := conn.WriteJSON(control); err != nil {
		log.Fatalf("Failed to send control frame: %v", err)
	}

	// Stream audio in chunks
	audioChunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(audioChunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		totalBytes += int64(n)

		if err := conn.WriteMessage(websocket.BinaryMessage, audioChunk[:n]); err != nil {
			log.Fatalf("Failed to send frame: %v", err)
		}

		if chunkNum%10 == 0 {
			log.Printf("Sent chunk %d (%d bytes total)", chunkNum, totalBytes)
		}

		// Simulate real-time streaming
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}

	log.Printf("Finished streaming: %d chunks, %d bytes in %v", chunkNum, totalBytes, time.Since(startTime))
	log.Println("Closing socket, waiting for final transcripts...")

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}

	log.Printf("Stream completed: meetingId=%s", id)
}

func createSession(base, meetingType string) string {
	body := strings.NewReader(`{"meeting_type":"` + meetingType + `"}`)
	resp, err := http.Post(base+"/v1/sessions", "application/json", body)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer resp.Body.Close()

	var created models.CreateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || resp.StatusCode != http.StatusOK {
		log.Fatalf("Failed to create session: status=%d err=%v", resp.StatusCode, err)
	}
	log.Printf("Session started: meetingId=%s (%s)", created.MeetingID, created.Message)
	return created.MeetingID
}
