// Package config loads runtime configuration for the verde CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .toml are read as TOML, anything else as JSON.
//  3. Environment variables prefixed with VERDE_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   data directory
//	-p string   profile name
//	-s string   signal transport: memory, file or redis
//
// # File schema
//
// Durations can be strings like "20m" or, in JSON, integer nanoseconds:
//
//	{
//	  "backend_url": "https://api.hablemosverde.example",
//	  "project_id": "hablemosverde",
//	  "profile": "work",
//	  "session_duration": "20m",
//	  "signal_transport": "redis",
//	  "redis_addr": "127.0.0.1:6379"
//	}
//
// The same keys are used in TOML.
package config
