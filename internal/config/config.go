// Package config provides unified configuration loading for sweep.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/sweep/internal/constants"
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/simulation"
)

// SweepConfig contains all sweep configuration settings.
type SweepConfig struct {
	// Simulation describes the room every trial cleans.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Experiment controls the agent-count sweep.
	Experiment ExperimentConfig `json:"experiment" yaml:"experiment"`

	// Logging contains settings for operational and trial logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store controls run history persistence.
	Store StoreConfig `json:"store" yaml:"store"`
}

// SimulationConfig configures the grid and tick budget.
type SimulationConfig struct {
	Rows          int     `json:"rows" yaml:"rows"`
	Cols          int     `json:"cols" yaml:"cols"`
	DirtyFraction float64 `json:"dirty_fraction" yaml:"dirty_fraction"`
	MaxTicks      int     `json:"max_ticks" yaml:"max_ticks"`
}

// ExperimentConfig configures the agent-count sweep.
type ExperimentConfig struct {
	AgentCounts []int `json:"agent_counts" yaml:"agent_counts"`
	Trials      int   `json:"trials" yaml:"trials"`
	// Seed fixes the random draws; 0 picks a fresh seed per run.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// LoggingConfig configures sweep's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug", or "trace".
	// "debug" enables trial logging to .sweep/trials.jsonl.
	// "trace" additionally logs every simulation tick.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures the run history database.
type StoreConfig struct {
	// Enabled saves every experiment to .sweep/sweep.db without --save.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns a SweepConfig with the classic 5x5 room defaults.
func Default() *SweepConfig {
	return &SweepConfig{
		Simulation: SimulationConfig{
			Rows:          constants.DefaultRows,
			Cols:          constants.DefaultCols,
			DirtyFraction: constants.DefaultDirtyFraction,
			MaxTicks:      constants.DefaultMaxTicks,
		},
		Experiment: ExperimentConfig{
			AgentCounts: constants.DefaultAgentCounts(),
			Trials:      constants.DefaultTrials,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.sweep/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.DataDirName, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.sweep/config.yaml -> environment variables
func Load() (*SweepConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *SweepConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ExperimentConfig converts the settings into an experiment configuration.
func (c *SweepConfig) ExperimentConfig() experiment.Config {
	return experiment.Config{
		Scenario:    c.Scenario(1),
		AgentCounts: append([]int(nil), c.Experiment.AgentCounts...),
		Trials:      c.Experiment.Trials,
		Seed:        c.Experiment.Seed,
	}
}

// Scenario returns the configured room with the given number of agents.
func (c *SweepConfig) Scenario(agents int) simulation.Scenario {
	return simulation.Scenario{
		Rows:          c.Simulation.Rows,
		Cols:          c.Simulation.Cols,
		DirtyFraction: c.Simulation.DirtyFraction,
		Agents:        agents,
		MaxTicks:      c.Simulation.MaxTicks,
	}
}

// ValidateExperiment checks an experiment built from this configuration or
// from command-line flags, including the trial and agent caps.
func ValidateExperiment(cfg experiment.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Trials > constants.MaxTrials {
		return fmt.Errorf("trials must be at most %d, got %d", constants.MaxTrials, cfg.Trials)
	}
	for _, n := range cfg.AgentCounts {
		if n > constants.MaxAgents {
			return fmt.Errorf("agent counts must be at most %d, got %d", constants.MaxAgents, n)
		}
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *SweepConfig) Validate() error {
	if err := ValidateExperiment(c.ExperimentConfig()); err != nil {
		return err
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies SWEEP_* environment variable overrides to the
// config. Malformed numbers are reported rather than ignored.
func applyEnvOverrides(config *SweepConfig) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"SWEEP_ROWS", &config.Simulation.Rows},
		{"SWEEP_COLS", &config.Simulation.Cols},
		{"SWEEP_MAX_TICKS", &config.Simulation.MaxTicks},
		{"SWEEP_TRIALS", &config.Experiment.Trials},
	}
	for _, e := range ints {
		if v := os.Getenv(e.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.name, err)
			}
			*e.dst = n
		}
	}

	if v := os.Getenv("SWEEP_DIRTY_FRACTION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SWEEP_DIRTY_FRACTION: %w", err)
		}
		config.Simulation.DirtyFraction = f
	}

	if v := os.Getenv("SWEEP_AGENT_COUNTS"); v != "" {
		counts, err := ParseAgentCounts(v)
		if err != nil {
			return fmt.Errorf("SWEEP_AGENT_COUNTS: %w", err)
		}
		config.Experiment.AgentCounts = counts
	}

	if v := os.Getenv("SWEEP_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SWEEP_SEED: %w", err)
		}
		config.Experiment.Seed = seed
	}

	if v := os.Getenv("SWEEP_STORE_ENABLED"); v != "" {
		config.Store.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("SWEEP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	return nil
}

// ParseAgentCounts parses a comma-separated list such as "1,2,3". A range
// "1-5" expands to every count in between.
func ParseAgentCounts(s string) ([]int, error) {
	var out []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", part, err)
			}
			b, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", part, err)
			}
			if a > b {
				return nil, fmt.Errorf("invalid range %q: start after end", part)
			}
			if b-a >= constants.MaxAgents {
				return nil, fmt.Errorf("invalid range %q: too many counts", part)
			}
			for n := a; n <= b; n++ {
				out = append(out, n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid agent count %q: %w", part, err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no agent counts in %q", s)
	}
	return out, nil
}
