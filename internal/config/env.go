package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "REWIND_"

// envSetters maps environment variables onto settings.
var envSetters = map[string]func(c *Config, v string) error{
	EnvPrefix + "LOG_LEVEL": func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	},
	EnvPrefix + "LOG_PREFIX": func(c *Config, v string) error {
		c.Log.Prefix = v
		return nil
	},
	EnvPrefix + "HISTORY_MAX_ENTRIES": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.History.MaxEntries = n
		return nil
	},
	EnvPrefix + "SCRIPT_TIMEOUT": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Script.Timeout = Duration(d)
		return nil
	},
	EnvPrefix + "METRICS_ADDR": func(c *Config, v string) error {
		c.Metrics.Addr = v
		return nil
	},
}

// ApplyEnv overrides settings from environment variables found by lookup,
// usually os.LookupEnv. Empty values are treated as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envSetters {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, name, v, err)
		}
	}
	return nil
}
