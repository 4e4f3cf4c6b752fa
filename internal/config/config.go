// Package config loads server settings from the environment and batch
// scenarios from YAML files.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"

	"github.com/cwbudde/rvegen/internal/store"
)

// Server holds the HTTP server settings.
type Server struct {
	Addr    string `env:"RVEGEN_ADDR" envDefault:":8080"`
	DataDir string `env:"RVEGEN_DATA_DIR" envDefault:"./data"`
}

// LoadServer reads server settings from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Scenario is a batch of runs sharing defaults. Each run entry
// overrides only the fields it sets; a run without an explicit seed
// gets the default seed offset by its position, so every run in the
// batch is distinct yet the whole batch replays deterministically.
type Scenario struct {
	Defaults store.RunConfig   `yaml:"defaults"`
	Runs     []store.RunConfig `yaml:"runs"`
}

// LoadScenario parses and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if len(sc.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s defines no runs", path)
	}

	for i, cfg := range sc.Resolved() {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("scenario run %d: %w", i, err)
		}
	}
	return &sc, nil
}

// Resolved returns the runs with defaults merged in.
func (s *Scenario) Resolved() []store.RunConfig {
	out := make([]store.RunConfig, len(s.Runs))
	for i, run := range s.Runs {
		out[i] = mergeRun(s.Defaults, run, i)
	}
	return out
}

func mergeRun(def, run store.RunConfig, index int) store.RunConfig {
	merged := def

	if run.Lx != 0 {
		merged.Lx = run.Lx
	}
	if run.Ly != 0 {
		merged.Ly = run.Ly
	}
	if run.Circles != 0 {
		merged.Circles = run.Circles
	}
	if run.Distribution != "" {
		merged.Distribution = run.Distribution
	}
	if run.Radius != 0 {
		merged.Radius = run.Radius
	}
	if run.MinRadius != 0 {
		merged.MinRadius = run.MinRadius
	}
	if run.MaxRadius != 0 {
		merged.MaxRadius = run.MaxRadius
	}
	if run.MinInside != 0 {
		merged.MinInside = run.MinInside
	}
	if run.MeshSize != 0 {
		merged.MeshSize = run.MeshSize
	}
	if run.MaxAttempts != 0 {
		merged.MaxAttempts = run.MaxAttempts
	}
	if run.Seed != 0 {
		merged.Seed = run.Seed
	} else {
		merged.Seed = def.Seed + int64(index)
	}

	return merged
}
