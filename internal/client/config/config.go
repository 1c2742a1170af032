package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Signal transports.
const (
	TransportMemory = "memory"
	TransportFile   = "file"
	TransportRedis  = "redis"
)

// Config holds runtime settings for the verde CLI.
//
// Fields:
//   - BackendURL: base URL of the hosted backend REST API.
//   - ProjectID: backend project the client talks to.
//   - DataDir: root of per-profile local state.
//   - Profile: which profile under DataDir to use; instances sharing a
//     profile share a session.
//   - SessionDuration: absolute session lifetime counted from login.
//   - SignalTransport: how logout is propagated between instances.
//   - RedisAddr: host:port of Redis when SignalTransport is "redis".
//   - RequestTimeout: per-request timeout of backend calls; 0 disables it.
type Config struct {
	BackendURL      string        `env:"BACKEND_URL"`
	ProjectID       string        `env:"PROJECT_ID"`
	DataDir         string        `env:"DATA_DIR"`
	Profile         string        `env:"PROFILE"`
	SessionDuration time.Duration `env:"SESSION_DURATION"`
	SignalTransport string        `env:"SIGNAL_TRANSPORT"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
	LogFormat       string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080"
	c.ProjectID = "hablemosverde"
	c.DataDir = defaultDataDir()
	c.Profile = "default"
	c.SessionDuration = 20 * time.Minute
	c.SignalTransport = TransportFile
	c.RedisAddr = "127.0.0.1:6379"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "hablemosverde")
	}
	return ".verde"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given), the environment and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL is required")
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("session duration must be positive, got %s", c.SessionDuration)
	}
	switch c.SignalTransport {
	case TransportMemory, TransportFile:
	case TransportRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis signal transport")
		}
	default:
		return fmt.Errorf("unknown signal transport %q", c.SignalTransport)
	}
	return nil
}
