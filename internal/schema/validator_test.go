package schema

import (
	"errors"
	"testing"

	"voice-minutes-service/internal/models"
	"voice-minutes-service/internal/service/session"
)

func TestValidator_Validate(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		kind    string
		body    string
		wantErr bool
	}{
		{"create empty body", CreateSession, "", false},
		{"create with type", CreateSession, `{"meeting_type":"hybrid"}`, false},
		{"create unknown type echoed", CreateSession, `{"meeting_type":"webinar"}`, false},
		{"create wrong type", CreateSession, `{"meeting_type":3}`, true},
		{"create not an object", CreateSession, `[]`, true},
		{"append minimal", AppendUtterance, `{"text":"hello"}`, false},
		{"append full", AppendUtterance, `{"text":"hello","voice_features":{"avg_pitch":110,"words_per_minute":130,"energy":4000},"audio_source":"tab_audio","channel":"stereo"}`, false},
		{"append missing text", AppendUtterance, `{"audio_source":"microphone"}`, true},
		{"append empty body", AppendUtterance, ``, true},
		{"append text not string", AppendUtterance, `{"text":42}`, true},
		{"append negative pitch", AppendUtterance, `{"text":"hi","voice_features":{"avg_pitch":-1}}`, true},
		{"append features not object", AppendUtterance, `{"text":"hi","voice_features":"loud"}`, true},
		{"malformed json", AppendUtterance, `{"text":`, true},
		{"control features only", LiveControl, `{"voice_features":{"avg_pitch":180}}`, false},
		{"control source switch", LiveControl, `{"audio_source":"tab_audio"}`, false},
		{"control negative energy", LiveControl, `{"voice_features":{"energy":-5}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.kind, []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, session.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestValidator_UnknownKind(t *testing.T) {
	v := MustNew()

	err := v.Validate("nope", []byte(`{}`))
	if err == nil || errors.Is(err, session.ErrInvalidInput) {
		t.Errorf("expected a non-input error for an unknown kind, got %v", err)
	}
}

func TestValidator_Decode(t *testing.T) {
	v := MustNew()

	var req models.AppendUtteranceRequest
	err := v.Decode(AppendUtterance, []byte(`{"text":"hi","voice_features":{"avg_pitch":150}}`), &req)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.Text != "hi" || req.VoiceFeatures == nil || *req.VoiceFeatures.AvgPitch != 150 {
		t.Errorf("unexpected request %+v", req)
	}
	if req.VoiceFeatures.WordsPerMinute != nil {
		t.Error("absent features should stay nil")
	}

	var create models.CreateSessionRequest
	if err := v.Decode(CreateSession, nil, &create); err != nil {
		t.Fatalf("Decode empty: %v", err)
	}
	if create.MeetingType != "" {
		t.Errorf("expected empty meeting type, got %q", create.MeetingType)
	}
}
