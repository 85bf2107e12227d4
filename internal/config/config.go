// Package config loads settings for the heaplru binary.
//
// Precedence (highest wins):
//  1. Defaults
//  2. Config file (JSON with comments and trailing commas)
//  3. Environment variables (HEAPLRU_*)
//  4. Command-line flags the user actually set
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"emperror.dev/errors"
	"github.com/caarlos0/env/v6"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// ErrInvalid wraps every validation and parse failure.
const ErrInvalid = errors.Sentinel("config: invalid")

// LogLevels lists the accepted values of Config.LogLevel.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all configuration options.
type Config struct {
	// Capacity is the cache size used by the demo and, when Capacities is
	// empty, by replay.
	Capacity int `json:"capacity" env:"HEAPLRU_CAPACITY"`

	// Capacities lists the cache sizes replay sweeps over.
	Capacities []int `json:"capacities,omitempty" env:"HEAPLRU_CAPACITIES" envSeparator:","`

	// Keys is the size of the key universe of the synthetic trace.
	Keys int `json:"keys" env:"HEAPLRU_KEYS"`

	// Accesses is the length of the synthetic trace.
	Accesses int `json:"accesses" env:"HEAPLRU_ACCESSES"`

	// Seed seeds the trace generator.
	Seed uint64 `json:"seed" env:"HEAPLRU_SEED"`

	// Prefill replays the trace once before measuring.
	Prefill bool `json:"prefill" env:"HEAPLRU_PREFILL"`

	// Workers bounds how many capacities replay runs at once; <= 0 means unbounded.
	Workers int `json:"workers" env:"HEAPLRU_WORKERS"`

	LogLevel    string `json:"log_level" env:"HEAPLRU_LOG_LEVEL"` //nolint:tagliatelle // snake_case for config file
	Development bool   `json:"development" env:"HEAPLRU_DEVELOPMENT"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Capacity: 1024,
		Keys:     16384,
		Accesses: 100000,
		Seed:     6,
		Workers:  4,
		LogLevel: "info",
	}
}

// ReplayCapacities returns Capacities, or Capacity alone when none are set.
func (c Config) ReplayCapacities() []int {
	if len(c.Capacities) == 0 {
		return []int{c.Capacity}
	}

	return slices.Clone(c.Capacities)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return errors.WithDetails(ErrInvalid, "field", "capacity", "value", c.Capacity)
	}

	for _, n := range c.Capacities {
		if n <= 0 {
			return errors.WithDetails(ErrInvalid, "field", "capacities", "value", n)
		}
	}

	if c.Keys <= 0 {
		return errors.WithDetails(ErrInvalid, "field", "keys", "value", c.Keys)
	}

	if c.Accesses <= 0 {
		return errors.WithDetails(ErrInvalid, "field", "accesses", "value", c.Accesses)
	}

	if !slices.Contains(LogLevels, c.LogLevel) {
		return errors.WithDetails(ErrInvalid, "field", "log_level", "value", c.LogLevel)
	}

	return nil
}

// Load builds the configuration from defaults, the optional file at path,
// environ (os.Environ format) and the flags registered by BindFlags.
// fs may be nil.
func Load(path string, environ []string, fs *flag.FlagSet) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.WrapWithDetails(err, "read config file", "path", path)
		}

		cfg, err = parse(data, cfg)
		if err != nil {
			return Config{}, errors.WithDetails(err, "path", path)
		}
	}

	err := env.Parse(&cfg, env.Options{Environment: toMap(environ)})
	if err != nil {
		return Config{}, fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}

	if fs != nil {
		if err := applyFlags(&cfg, fs); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// parse overlays the JSONC document data onto base.
func parse(data []byte, base Config) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid JSONC: %w", ErrInvalid, err)
	}

	if err := json.Unmarshal(standardized, &base); err != nil {
		return Config{}, fmt.Errorf("%w: invalid JSON: %w", ErrInvalid, err)
	}

	return base, nil
}

func toMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}

	return out
}
