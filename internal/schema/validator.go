// Package schema validates boundary request bodies against JSON Schemas
// before they are decoded into request models.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"voice-minutes-service/internal/service/session"
)

// Request kinds with a registered schema.
const (
	CreateSession   = "create_session"
	AppendUtterance = "append_utterance"
	LiveControl     = "live_control"
)

func float64Ptr(v float64) *float64 { return &v }

var voiceFeaturesSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"avg_pitch":        {Type: "number", Minimum: float64Ptr(0)},
		"words_per_minute": {Type: "number", Minimum: float64Ptr(0)},
		"energy":           {Type: "number", Minimum: float64Ptr(0)},
		"channel":          {Type: "string"},
	},
}

var schemas = map[string]*jsonschema.Schema{
	CreateSession: {
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meeting_type": {Type: "string"},
		},
	},
	AppendUtterance: {
		Type:     "object",
		Required: []string{"text"},
		Properties: map[string]*jsonschema.Schema{
			"text":           {Type: "string"},
			"voice_features": voiceFeaturesSchema,
			"audio_source":   {Type: "string"},
			"channel":        {Type: "string"},
		},
	},
	LiveControl: {
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"voice_features": voiceFeaturesSchema,
			"audio_source":   {Type: "string"},
			"channel":        {Type: "string"},
		},
	},
}

// Validator holds the resolved request schemas.
type Validator struct {
	resolved map[string]*jsonschema.Resolved
}

// New resolves every request schema.
func New() (*Validator, error) {
	v := &Validator{resolved: make(map[string]*jsonschema.Resolved, len(schemas))}
	for name, s := range schemas {
		rs, err := s.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve %s schema: %w", name, err)
		}
		v.resolved[name] = rs
	}
	return v, nil
}

// MustNew is New that panics on error.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a raw JSON body against the schema of kind. An empty body
// is treated as an empty object. Failures wrap session.ErrInvalidInput.
func (v *Validator) Validate(kind string, body []byte) error {
	rs, ok := v.resolved[kind]
	if !ok {
		return fmt.Errorf("no schema registered for %q", kind)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	var instance any
	if err := json.Unmarshal(body, &instance); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", session.ErrInvalidInput, err)
	}
	if err := rs.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return nil
}

// Decode validates body and unmarshals it into dst.
func (v *Validator) Decode(kind string, body []byte, dst any) error {
	if err := v.Validate(kind, body); err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return nil
}
