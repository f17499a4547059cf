package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/rewind/internal/logging"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultLogLevel      = "info"
	DefaultLogPrefix     = logging.DefaultPrefix
	DefaultMaxEntries    = 1000
	DefaultScriptTimeout = 2 * time.Second
)

// Config holds every rewind setting.
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Script  ScriptConfig  `toml:"script" yaml:"script"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// HistoryConfig configures undo history.
type HistoryConfig struct {
	// MaxEntries caps the history; 0 means unbounded.
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// ScriptConfig configures the Lua runner.
type ScriptConfig struct {
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `toml:"addr" yaml:"addr"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Prefix: DefaultLogPrefix,
		},
		History: HistoryConfig{
			MaxEntries: DefaultMaxEntries,
		},
		Script: ScriptConfig{
			Timeout: Duration(DefaultScriptTimeout),
		},
	}
}

// Load builds a configuration from defaults, the file at path (if any) and
// the process environment, then validates it. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the file at path into c. Keys absent from the file keep
// their current values. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.decode(path, data)
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			perr := &ParseError{Path: path, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Path: "log.level", Message: "unknown log level", Value: c.Log.Level}
	}
	if c.History.MaxEntries < 0 {
		return &ValidationError{Path: "history.max_entries", Message: "must not be negative", Value: c.History.MaxEntries}
	}
	if c.Script.Timeout <= 0 {
		return &ValidationError{Path: "script.timeout", Message: "must be positive", Value: c.Script.Timeout.Std()}
	}
	return nil
}
