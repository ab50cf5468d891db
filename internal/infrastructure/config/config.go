package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	GRPC      GRPCConfig      `toml:"grpc"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Session   SessionConfig   `toml:"session"`
	Sound     SoundConfig     `toml:"sound"`
	Chat      ChatConfig      `toml:"chat"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      string   `envconfig:"PORT" default:"8000" toml:"port"`
	Host      string   `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
	StaticDir string   `envconfig:"STATIC_DIR" default:"" toml:"static_dir"`
	Timezone  string   `envconfig:"TZ_NAME" default:"Local" toml:"timezone"`
	Origins   []string `envconfig:"CORS_ORIGINS" default:"*" toml:"cors_origins"`
}

// GRPCConfig holds the gRPC health endpoint configuration.
type GRPCConfig struct {
	Port    string `envconfig:"GRPC_PORT" default:"50061" toml:"port"`
	Enabled bool   `envconfig:"GRPC_ENABLED" default:"true" toml:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
}

// SessionConfig holds the session phase timings.
type SessionConfig struct {
	BootDuration     Duration `envconfig:"BOOT_DURATION" default:"3s" toml:"boot_duration"`
	BootFade         Duration `envconfig:"BOOT_FADE" default:"500ms" toml:"boot_fade"`
	ShutdownSettle   Duration `envconfig:"SHUTDOWN_SETTLE" default:"500ms" toml:"shutdown_settle"`
	ShutdownFallback Duration `envconfig:"SHUTDOWN_FALLBACK" default:"1500ms" toml:"shutdown_fallback"`
}

// SoundConfig holds sound cue configuration.
type SoundConfig struct {
	Enabled   bool    `envconfig:"SOUND_ENABLED" default:"true" toml:"enabled"`
	Volume    float64 `envconfig:"SOUND_VOLUME" default:"1" toml:"volume"`
	QueueSize int     `envconfig:"SOUND_QUEUE" default:"64" toml:"queue_size"`
}

// ChatConfig holds the language-model chat configuration.
type ChatConfig struct {
	APIKey            string   `envconfig:"GEMINI_API_KEY" default:"" toml:"api_key"`
	Model             string   `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash" toml:"model"`
	Endpoint          string   `envconfig:"GEMINI_ENDPOINT" default:"https://generativelanguage.googleapis.com/v1beta" toml:"endpoint"`
	Timeout           Duration `envconfig:"CHAT_TIMEOUT" default:"2m" toml:"timeout"`
	RequestsPerSecond float64  `envconfig:"CHAT_RPS" default:"2" toml:"requests_per_second"`
}

// Duration is a time.Duration that decodes from strings like "1500ms" in
// both environment variables and TOML files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from the environment and then overlays the
// TOML file at path. Keys present in the file take precedence.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8000",
			Host:     "0.0.0.0",
			Timezone: "Local",
			Origins:  []string{"*"},
		},
		GRPC: GRPCConfig{
			Port:    "50061",
			Enabled: true,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Session: SessionConfig{
			BootDuration:     Duration(3 * time.Second),
			BootFade:         Duration(500 * time.Millisecond),
			ShutdownSettle:   Duration(500 * time.Millisecond),
			ShutdownFallback: Duration(1500 * time.Millisecond),
		},
		Sound: SoundConfig{
			Enabled:   true,
			Volume:    1,
			QueueSize: 64,
		},
		Chat: ChatConfig{
			Model:             "gemini-2.5-flash",
			Endpoint:          "https://generativelanguage.googleapis.com/v1beta",
			Timeout:           Duration(2 * time.Minute),
			RequestsPerSecond: 2,
		},
	}
}
