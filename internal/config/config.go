// Package config loads service configuration from an optional TOML file and
// environment variables. Environment variables win over the file; invalid
// values fall back to the current setting.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileEnv names the environment variable holding the optional TOML file path.
const FileEnv = "MINUTES_CONFIG_FILE"

// Config is the complete service configuration.
type Config struct {
	Service       ServiceConfig       `toml:"service"`
	Session       SessionConfig       `toml:"session"`
	STT           STTConfig           `toml:"stt"`
	IngestLimits  IngestLimitsConfig  `toml:"ingest_limits"`
	Kafka         KafkaConfig         `toml:"kafka"`
	Observability ObservabilityConfig `toml:"observability"`
}

// ServiceConfig holds identity and listener ports.
type ServiceConfig struct {
	Principal   string `toml:"principal"`
	HTTPPort    string `toml:"http_port"`
	GRPCPort    string `toml:"grpc_port"`
	MetricsPort string `toml:"metrics_port"`
}

// SessionConfig holds defaults applied to requests that omit them.
type SessionConfig struct {
	DefaultMeetingType string `toml:"default_meeting_type"`
	DefaultAudioSource string `toml:"default_audio_source"`
	DefaultChannel     string `toml:"default_channel"`
}

// STTConfig configures the live ingest speech-to-text provider.
type STTConfig struct {
	Provider       string `toml:"provider"` // mock, google
	LanguageCode   string `toml:"language_code"`
	SampleRateHz   int    `toml:"sample_rate_hz"`
	InterimResults bool   `toml:"interim_results"`
	AudioEncoding  string `toml:"audio_encoding"`
}

// IngestLimitsConfig bounds a single live utterance.
type IngestLimitsConfig struct {
	MaxAudioBytes int           `toml:"max_audio_bytes"`
	MaxDuration   time.Duration `toml:"max_duration"`
	MaxPartials   int           `toml:"max_partials"`
}

// KafkaConfig configures event publishing.
type KafkaConfig struct {
	Enabled      bool     `toml:"enabled"`
	Brokers      []string `toml:"brokers"`
	TopicEntries string   `toml:"topic_entries"`
	TopicMinutes string   `toml:"topic_minutes"`
	Principal    string   `toml:"principal"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Principal:   "svc-voice-minutes",
			HTTPPort:    "8080",
			GRPCPort:    "50051",
			MetricsPort: "9090",
		},
		Session: SessionConfig{
			DefaultMeetingType: "physical",
			DefaultAudioSource: "microphone",
			DefaultChannel:     "mono",
		},
		STT: STTConfig{
			Provider:       "mock",
			LanguageCode:   "en-US",
			SampleRateHz:   8000,
			InterimResults: true,
			AudioEncoding:  "LINEAR16",
		},
		IngestLimits: IngestLimitsConfig{
			MaxAudioBytes: 5 * 1024 * 1024,
			MaxDuration:   5 * time.Minute,
			MaxPartials:   500,
		},
		Kafka: KafkaConfig{
			TopicEntries: "meeting.transcript.entry",
			TopicMinutes: "meeting.minutes",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Load builds the configuration from defaults, the file named by
// MINUTES_CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Service.Principal = envOrDefault("SERVICE_PRINCIPAL", c.Service.Principal)
	c.Service.HTTPPort = envOrDefault("HTTP_PORT", c.Service.HTTPPort)
	c.Service.GRPCPort = envOrDefault("GRPC_PORT", c.Service.GRPCPort)
	c.Service.MetricsPort = envOrDefault("METRICS_PORT", c.Service.MetricsPort)

	c.Session.DefaultMeetingType = envOrDefault("SESSION_DEFAULT_MEETING_TYPE", c.Session.DefaultMeetingType)
	c.Session.DefaultAudioSource = envOrDefault("SESSION_DEFAULT_AUDIO_SOURCE", c.Session.DefaultAudioSource)
	c.Session.DefaultChannel = envOrDefault("SESSION_DEFAULT_CHANNEL", c.Session.DefaultChannel)

	c.STT.Provider = envOrDefault("STT_PROVIDER", c.STT.Provider)
	c.STT.LanguageCode = envOrDefault("STT_LANGUAGE_CODE", c.STT.LanguageCode)
	c.STT.SampleRateHz = envOrDefaultInt("STT_SAMPLE_RATE_HZ", c.STT.SampleRateHz)
	c.STT.InterimResults = envOrDefaultBool("STT_INTERIM_RESULTS", c.STT.InterimResults)
	c.STT.AudioEncoding = envOrDefault("STT_AUDIO_ENCODING", c.STT.AudioEncoding)

	c.IngestLimits.MaxAudioBytes = envOrDefaultInt("INGEST_MAX_AUDIO_BYTES", c.IngestLimits.MaxAudioBytes)
	c.IngestLimits.MaxDuration = envOrDefaultDuration("INGEST_MAX_DURATION", c.IngestLimits.MaxDuration)
	c.IngestLimits.MaxPartials = envOrDefaultInt("INGEST_MAX_PARTIALS", c.IngestLimits.MaxPartials)

	c.Kafka.Enabled = envOrDefaultBool("KAFKA_ENABLED", c.Kafka.Enabled)
	c.Kafka.Brokers = envOrDefaultList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.TopicEntries = envOrDefault("KAFKA_TOPIC_ENTRIES", c.Kafka.TopicEntries)
	c.Kafka.TopicMinutes = envOrDefault("KAFKA_TOPIC_MINUTES", c.Kafka.TopicMinutes)
	c.Kafka.Principal = envOrDefault("KAFKA_PRINCIPAL", c.Kafka.Principal)

	c.Observability.LogLevel = envOrDefault("LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = envOrDefault("LOG_FORMAT", c.Observability.LogFormat)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.STT.Provider {
	case "mock", "google":
	default:
		errs = append(errs, fmt.Errorf("stt.provider: unknown provider %q", c.STT.Provider))
	}
	if c.Service.HTTPPort == "" || c.Service.GRPCPort == "" {
		errs = append(errs, errors.New("service: http and grpc ports are required"))
	}
	if c.IngestLimits.MaxAudioBytes <= 0 || c.IngestLimits.MaxDuration <= 0 || c.IngestLimits.MaxPartials <= 0 {
		errs = append(errs, errors.New("ingest_limits: limits must be positive"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka: enabled without brokers"))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
