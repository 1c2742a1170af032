package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hablemosverde/verde/internal/flagx"
	"github.com/hablemosverde/verde/internal/timex"
)

// FileConfig is a DTO used exclusively for file decoding. It relies on
// timex.Duration so files can specify intervals either as strings like "20m"
// or as integer nanoseconds (JSON only). Empty values leave the
// corresponding Config field untouched.
type FileConfig struct {
	BackendURL      string         `json:"backend_url" toml:"backend_url"`
	ProjectID       string         `json:"project_id" toml:"project_id"`
	DataDir         string         `json:"data_dir" toml:"data_dir"`
	Profile         string         `json:"profile" toml:"profile"`
	SessionDuration timex.Duration `json:"session_duration" toml:"session_duration"`
	SignalTransport string         `json:"signal_transport" toml:"signal_transport"`
	RedisAddr       string         `json:"redis_addr" toml:"redis_addr"`
	RequestTimeout  timex.Duration `json:"request_timeout" toml:"request_timeout"`
	LogLevel        string         `json:"log_level" toml:"log_level"`
	LogFormat       string         `json:"log_format" toml:"log_format"`
}

// parseFile overlays cfg with values from the file named by -c or -config.
// Files ending in .toml are decoded as TOML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.BackendURL, fc.BackendURL)
	setString(&cfg.ProjectID, fc.ProjectID)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.Profile, fc.Profile)
	setString(&cfg.SignalTransport, fc.SignalTransport)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.SessionDuration.Duration != 0 {
		cfg.SessionDuration = fc.SessionDuration.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
