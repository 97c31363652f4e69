// Package config loads client settings from defaults, an optional YAML file
// and POKER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/planningpoker/go/internal/wsclient"
)

// Config holds client settings.
type Config struct {
	APIURL       string       `yaml:"api_url"`
	WSURL        string       `yaml:"ws_url"`
	IdentityPath string       `yaml:"identity_path"`
	StatusAddr   string       `yaml:"status_addr"`
	NATSURL      string       `yaml:"nats_url"`
	NATSSubject  string       `yaml:"nats_subject"`
	LogLevel     string       `yaml:"log_level"`
	Stream       StreamConfig `yaml:"stream"`
}

// StreamConfig tunes the room WebSocket connection.
type StreamConfig struct {
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// Default returns settings for a backend on localhost:8000.
func Default() Config {
	ws := wsclient.DefaultConfig()
	return Config{
		APIURL:       "http://localhost:8000/api",
		WSURL:        "ws://localhost:8000",
		IdentityPath: DefaultIdentityPath(),
		NATSSubject:  "poker.rooms",
		LogLevel:     "info",
		Stream: StreamConfig{
			WriteTimeout:   ws.WriteTimeout,
			ReadTimeout:    ws.ReadTimeout,
			PingInterval:   ws.PingInterval,
			MaxMessageSize: ws.MaxMessageSize,
		},
	}
}

// DefaultIdentityPath is where the participant identity is kept between runs.
func DefaultIdentityPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "planningpoker", "identity.yaml")
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	c.APIURL = getEnv("POKER_API_URL", c.APIURL)
	c.WSURL = getEnv("POKER_WS_URL", c.WSURL)
	c.IdentityPath = getEnv("POKER_IDENTITY_PATH", c.IdentityPath)
	c.StatusAddr = getEnv("POKER_STATUS_ADDR", c.StatusAddr)
	c.NATSURL = getEnv("NATS_URL", c.NATSURL)
	c.NATSSubject = getEnv("POKER_NATS_SUBJECT", c.NATSSubject)
	c.LogLevel = getEnv("POKER_LOG_LEVEL", c.LogLevel)
	c.Stream.WriteTimeout = getEnvAsDuration("POKER_WS_WRITE_TIMEOUT", c.Stream.WriteTimeout)
	c.Stream.ReadTimeout = getEnvAsDuration("POKER_WS_READ_TIMEOUT", c.Stream.ReadTimeout)
	c.Stream.PingInterval = getEnvAsDuration("POKER_WS_PING_INTERVAL", c.Stream.PingInterval)
	c.Stream.MaxMessageSize = int64(getEnvAsInt("POKER_WS_MAX_MESSAGE_SIZE", int(c.Stream.MaxMessageSize)))
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error

	if err := checkURL(c.APIURL, "http", "https"); err != nil {
		errs = append(errs, fmt.Errorf("api_url: %w", err))
	}
	if err := checkURL(c.WSURL, "ws", "wss"); err != nil {
		errs = append(errs, fmt.Errorf("ws_url: %w", err))
	}
	if c.NATSURL != "" {
		if err := checkURL(c.NATSURL, "nats", "tls"); err != nil {
			errs = append(errs, fmt.Errorf("nats_url: %w", err))
		}
		if c.NATSSubject == "" {
			errs = append(errs, errors.New("nats_subject is required when nats_url is set"))
		}
	}
	if c.IdentityPath == "" {
		errs = append(errs, errors.New("identity_path is required"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Stream.WriteTimeout <= 0 || c.Stream.ReadTimeout <= 0 || c.Stream.PingInterval <= 0 {
		errs = append(errs, errors.New("stream timeouts must be positive"))
	} else if c.Stream.PingInterval >= c.Stream.ReadTimeout {
		errs = append(errs, errors.New("stream ping_interval must be shorter than read_timeout"))
	}
	if c.Stream.MaxMessageSize <= 0 {
		errs = append(errs, errors.New("stream max_message_size must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// WSClient converts the stream settings for the WebSocket client.
func (s StreamConfig) WSClient() wsclient.Config {
	cfg := wsclient.DefaultConfig()
	cfg.WriteTimeout = s.WriteTimeout
	cfg.ReadTimeout = s.ReadTimeout
	cfg.PingInterval = s.PingInterval
	cfg.MaxMessageSize = s.MaxMessageSize
	return cfg
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %v URL", raw, schemes)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
