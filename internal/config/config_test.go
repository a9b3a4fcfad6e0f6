package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-lift-simulator/pkg/elevator"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(mapLookup(nil))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if cfg.Floors.MinFloor != 1 || cfg.Floors.MaxFloor != 10 {
		t.Errorf("Expected 1..10 floors, got %+v", cfg.Floors)
	}
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{
		KeyPort:         "9090",
		KeyMinFloor:     "2",
		KeyMaxFloor:     "6",
		KeyInitialFloor: "4",
		KeyTickInterval: "250ms",
		KeyLogFormat:    "json",
	}))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.TickInterval != 250*time.Millisecond || cfg.LogFormat != "json" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	want := elevator.Config{MinFloor: 2, MaxFloor: 6, InitialFloor: 4}
	if cfg.Floors != want {
		t.Errorf("Expected floors %+v, got %+v", want, cfg.Floors)
	}
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := []map[string]string{
		{KeyMaxFloor: "ten"},
		{KeyTickInterval: "soon"},
		{KeyInitialFloor: "12"},
	}
	for _, env := range tests {
		if _, err := FromLookup(mapLookup(env)); err == nil {
			t.Errorf("Expected error for %v", env)
		}
	}

	_, err := FromLookup(mapLookup(map[string]string{KeyMinFloor: "0", KeyInitialFloor: "0"}))
	if !errors.Is(err, elevator.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_DotEnvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "LIFT_MAX_FLOOR=7\nLIFT_INITIAL_FLOOR=3\nPORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(KeyPort, "7100")

	cfg, err := Load(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Floors.MaxFloor != 7 || cfg.Floors.InitialFloor != 3 {
		t.Errorf("Expected floors from .env, got %+v", cfg.Floors)
	}
	if cfg.Port != "7100" {
		t.Errorf("Expected environment to win, got port %s", cfg.Port)
	}
}

func TestWithFlags_OverrideEnvironment(t *testing.T) {
	fs := flag.NewFlagSet("lift", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"-port", "9999", "-max-floor", "5", "-log-level", "debug"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	env := mapLookup(map[string]string{
		KeyPort:         "7000",
		KeyMaxFloor:     "8",
		KeyInitialFloor: "4",
		KeyLogFormat:    "json",
	})
	cfg, err := FromLookup(WithFlags(fs, env))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	if cfg.Port != "9999" || cfg.Floors.MaxFloor != 5 || cfg.LogLevel != "debug" {
		t.Errorf("Expected flags to win, got %+v", cfg)
	}
	if cfg.Floors.InitialFloor != 4 || cfg.LogFormat != "json" {
		t.Errorf("Expected unset flags to fall back to the environment, got %+v", cfg)
	}
}

func TestWithFlags_Invalid(t *testing.T) {
	fs := flag.NewFlagSet("lift", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"-min-floor", "6", "-max-floor", "3"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := FromLookup(WithFlags(fs, mapLookup(nil))); !errors.Is(err, elevator.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadWithFlags(t *testing.T) {
	t.Setenv(KeyPort, "7100")
	fs := flag.NewFlagSet("lift", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"-port", "7200"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg, err := LoadWithFlags(fs, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadWithFlags failed: %v", err)
	}
	if cfg.Port != "7200" {
		t.Errorf("Expected flag port 7200, got %s", cfg.Port)
	}
}
