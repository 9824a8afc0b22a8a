// Package config loads the solver configuration from a yaml or json file
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/BraeWebb/allocate/pkg/model"
)

type Config struct {
	Solver SolverConfig `json:"solver"`
}

type SolverConfig struct {
	MaxBacktracks    int     `json:"maxBacktracks"`
	RefinementBudget int     `json:"refinementBudget"`
	ContigWeight     float64 `json:"contigWeight"`
	PreferenceWeight float64 `json:"preferenceWeight"`
}

func Default() *Config {
	defaults := model.DefaultConfig()
	return &Config{
		Solver: SolverConfig{
			MaxBacktracks:    defaults.MaxBacktracks,
			RefinementBudget: defaults.RefinementBudget,
			ContigWeight:     defaults.ContigWeight,
			PreferenceWeight: defaults.PreferenceWeight,
		},
	}
}

// Load reads the configuration file, applying ALLOCATE_ environment
// overrides on top (ALLOCATE_SOLVER__MAXBACKTRACKS and friends).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("ALLOCATE_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "allocate_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Solver.MaxBacktracks < 0 {
		return fmt.Errorf("maxBacktracks must not be negative")
	}
	if cfg.Solver.RefinementBudget < 0 {
		return fmt.Errorf("refinementBudget must not be negative")
	}
	if cfg.Solver.ContigWeight < 0 || cfg.Solver.PreferenceWeight < 0 {
		return fmt.Errorf("soft-objective weights must not be negative")
	}
	return nil
}

// ModelConfig bridges the file configuration to the engine's configuration
// record.
func (cfg *Config) ModelConfig() model.Config {
	return model.Config{
		MaxBacktracks:    cfg.Solver.MaxBacktracks,
		RefinementBudget: cfg.Solver.RefinementBudget,
		ContigWeight:     cfg.Solver.ContigWeight,
		PreferenceWeight: cfg.Solver.PreferenceWeight,
	}
}
