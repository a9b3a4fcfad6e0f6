// Package config loads binary settings from command-line flags, the
// environment and optional .env files, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"go-lift-simulator/pkg/elevator"
)

// Environment keys.
const (
	KeyPort         = "PORT"
	KeyMinFloor     = "LIFT_MIN_FLOOR"
	KeyMaxFloor     = "LIFT_MAX_FLOOR"
	KeyInitialFloor = "LIFT_INITIAL_FLOOR"
	KeyLogLevel     = "LIFT_LOG_LEVEL"
	KeyLogFormat    = "LIFT_LOG_FORMAT"
	KeyTickInterval = "LIFT_TICK_INTERVAL"
)

// AppConfig is the resolved configuration of a binary.
type AppConfig struct {
	Port         string
	LogLevel     string
	LogFormat    string
	TickInterval time.Duration // pacing of the feed replay, not of the core
	Floors       elevator.Config
}

// Default returns the settings used when nothing is configured.
func Default() AppConfig {
	return AppConfig{
		Port:         "8080",
		LogLevel:     "info",
		LogFormat:    "console",
		TickInterval: 500 * time.Millisecond,
		Floors:       elevator.DefaultConfig(),
	}
}

// flagKeys maps override flag names to the environment keys they shadow.
var flagKeys = map[string]string{
	"port":          KeyPort,
	"min-floor":     KeyMinFloor,
	"max-floor":     KeyMaxFloor,
	"initial-floor": KeyInitialFloor,
	"log-level":     KeyLogLevel,
	"log-format":    KeyLogFormat,
	"tick-interval": KeyTickInterval,
}

// RegisterFlags defines one string flag per setting on fs. The values are
// parsed by FromLookup like their environment counterparts.
func RegisterFlags(fs *flag.FlagSet) {
	for name, key := range flagKeys {
		fs.String(name, "", "overrides "+key)
	}
}

// WithFlags layers the flags explicitly set on fs over lookup.
// 명령줄에서 지정한 플래그가 환경 변수보다 우선합니다.
func WithFlags(fs *flag.FlagSet, lookup func(string) (string, bool)) func(string) (string, bool) {
	set := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && f.Value.String() != "" {
			set[key] = f.Value.String()
		}
	})
	return func(key string) (string, bool) {
		if v, ok := set[key]; ok {
			return v, true
		}
		return lookup(key)
	}
}

// Load reads the given .env files (missing ones are skipped) and overlays
// the process environment, which always wins.
func Load(envFiles ...string) (AppConfig, error) {
	lookup, err := envLookup(envFiles)
	if err != nil {
		return AppConfig{}, err
	}
	return FromLookup(lookup)
}

// LoadWithFlags is Load with the flags set on fs taking precedence over
// the environment. fs must already be parsed.
func LoadWithFlags(fs *flag.FlagSet, envFiles ...string) (AppConfig, error) {
	lookup, err := envLookup(envFiles)
	if err != nil {
		return AppConfig{}, err
	}
	return FromLookup(WithFlags(fs, lookup))
}

func envLookup(envFiles []string) (func(string) (string, bool), error) {
	values := make(map[string]string)
	for _, path := range envFiles {
		fileValues, err := godotenv.Read(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range fileValues {
			if _, seen := values[k]; !seen {
				values[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}
	return lookup, nil
}

// FromLookup resolves the configuration through lookup.
func FromLookup(lookup func(string) (string, bool)) (AppConfig, error) {
	cfg := Default()

	if v, ok := lookup(KeyPort); ok && v != "" {
		cfg.Port = v
	}
	if v, ok := lookup(KeyLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(KeyLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := lookup(KeyTickInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return AppConfig{}, fmt.Errorf("%s: %w", KeyTickInterval, err)
		}
		cfg.TickInterval = d
	}

	ints := []struct {
		key string
		dst *int
	}{
		{KeyMinFloor, &cfg.Floors.MinFloor},
		{KeyMaxFloor, &cfg.Floors.MaxFloor},
		{KeyInitialFloor, &cfg.Floors.InitialFloor},
	}
	for _, f := range ints {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return AppConfig{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = n
	}

	if err := cfg.Floors.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
