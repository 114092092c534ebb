// Package config loads and validates this framework's on-disk
// configuration: transport selection, log level/path, and which
// middlewares a daemon should install.
//
// Grounded on gopkg.in/yaml.v3 usage for config loading seen in
// yunhoi129-moai-adk and go-playground/validator/v10 as a direct
// dependency of jinterlante1206-AleutianLocal; the teacher itself has no
// config file (clangd-query is flag-only), so this component is
// enriched entirely from the rest of the pack rather than adapted from
// teacher code.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TransportKind selects how a daemon accepts connections.
type TransportKind string

const (
	TransportStdio  TransportKind = "stdio"
	TransportSocket TransportKind = "socket"
)

// LogLevel mirrors serverlog.LogLevel as a config-file string so the
// config package doesn't need to import serverlog just to validate it.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

// Config is the top-level on-disk configuration shape.
type Config struct {
	Transport TransportKind `yaml:"transport" validate:"required,oneof=stdio socket"`

	// SocketPath is required when Transport is "socket" and ignored
	// otherwise.
	SocketPath string `yaml:"socketPath,omitempty" validate:"required_if=Transport socket"`

	// IdleTimeoutSeconds is the idle time after which a socket daemon
	// should close. Nothing in this module reads it: daemon.SocketOptions
	// takes its own IdleTimeout, where zero selects a 30-minute default.
	IdleTimeoutSeconds int `yaml:"idleTimeoutSeconds,omitempty" validate:"gte=0"`

	LogLevel LogLevel `yaml:"logLevel" validate:"required,oneof=debug info error"`
	LogPath  string   `yaml:"logPath" validate:"required"`

	// MaxConcurrentRequests bounds a dispatch.PoolExecutor; zero means
	// use dispatch.GoExecutor (unbounded).
	MaxConcurrentRequests int64 `yaml:"maxConcurrentRequests,omitempty" validate:"gte=0"`

	Middleware MiddlewareConfig `yaml:"middleware"`
}

// MiddlewareConfig toggles which built-in middlewares a host installs.
type MiddlewareConfig struct {
	Logging bool `yaml:"logging"`
	Tracing bool `yaml:"tracing"`
}

// Default returns a Config with stdio transport, a 30-minute (1800
// second) idle timeout, info-level logging to golangserver.log, an
// unbounded executor, and only the logging middleware enabled.
func Default() Config {
	return Config{
		Transport:             TransportStdio,
		IdleTimeoutSeconds:    1800,
		LogLevel:              LogLevelInfo,
		LogPath:               "golangserver.log",
		MaxConcurrentRequests: 0,
		Middleware: MiddlewareConfig{
			Logging: true,
			Tracing: false,
		},
	}
}

var validate = validator.New()

// Load reads and validates a YAML config file at path, starting from
// Default() so a partial file only needs to override what it changes.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}
