package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nvandessel/sweep/internal/constants"
)

func TestDefault(t *testing.T) {
	config := Default()

	// Simulation defaults
	if config.Simulation.Rows != 5 || config.Simulation.Cols != 5 {
		t.Errorf("expected 5x5 grid, got %dx%d", config.Simulation.Rows, config.Simulation.Cols)
	}
	if config.Simulation.DirtyFraction != 0.2 {
		t.Errorf("expected DirtyFraction 0.2, got %f", config.Simulation.DirtyFraction)
	}
	if config.Simulation.MaxTicks != 100 {
		t.Errorf("expected MaxTicks 100, got %d", config.Simulation.MaxTicks)
	}

	// Experiment defaults
	if !slices.Equal(config.Experiment.AgentCounts, []int{1, 2, 3, 4, 5}) {
		t.Errorf("expected AgentCounts 1..5, got %v", config.Experiment.AgentCounts)
	}
	if config.Experiment.Trials != 10 {
		t.Errorf("expected Trials 10, got %d", config.Experiment.Trials)
	}
	if config.Experiment.Seed != 0 {
		t.Errorf("expected Seed 0, got %d", config.Experiment.Seed)
	}

	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if config.Store.Enabled {
		t.Error("expected Store.Enabled to be false by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  rows: 8
  cols: 12
  dirty_fraction: 0.5

experiment:
  agent_counts: [2, 4, 8]
  trials: 25
  seed: 42

store:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.Rows != 8 || config.Simulation.Cols != 12 {
		t.Errorf("expected 8x12 grid, got %dx%d", config.Simulation.Rows, config.Simulation.Cols)
	}
	if config.Simulation.DirtyFraction != 0.5 {
		t.Errorf("expected DirtyFraction 0.5, got %f", config.Simulation.DirtyFraction)
	}
	// Unset keys keep their defaults.
	if config.Simulation.MaxTicks != 100 {
		t.Errorf("expected MaxTicks default 100, got %d", config.Simulation.MaxTicks)
	}
	if !slices.Equal(config.Experiment.AgentCounts, []int{2, 4, 8}) {
		t.Errorf("expected AgentCounts [2 4 8], got %v", config.Experiment.AgentCounts)
	}
	if config.Experiment.Trials != 25 || config.Experiment.Seed != 42 {
		t.Errorf("expected trials 25 seed 42, got %d/%d", config.Experiment.Trials, config.Experiment.Seed)
	}
	if !config.Store.Enabled {
		t.Error("expected Store.Enabled to be true")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SWEEP_ROWS", "7")
	t.Setenv("SWEEP_COLS", "9")
	t.Setenv("SWEEP_DIRTY_FRACTION", "0.35")
	t.Setenv("SWEEP_MAX_TICKS", "250")
	t.Setenv("SWEEP_AGENT_COUNTS", "1,3-5")
	t.Setenv("SWEEP_TRIALS", "3")
	t.Setenv("SWEEP_SEED", "18446744073709551615")
	t.Setenv("SWEEP_STORE_ENABLED", "1")
	t.Setenv("SWEEP_LOG_LEVEL", "debug")

	config := Default()
	if err := applyEnvOverrides(config); err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}

	if config.Simulation.Rows != 7 || config.Simulation.Cols != 9 {
		t.Errorf("expected 7x9, got %dx%d", config.Simulation.Rows, config.Simulation.Cols)
	}
	if config.Simulation.DirtyFraction != 0.35 {
		t.Errorf("expected DirtyFraction 0.35, got %f", config.Simulation.DirtyFraction)
	}
	if config.Simulation.MaxTicks != 250 {
		t.Errorf("expected MaxTicks 250, got %d", config.Simulation.MaxTicks)
	}
	if !slices.Equal(config.Experiment.AgentCounts, []int{1, 3, 4, 5}) {
		t.Errorf("expected AgentCounts [1 3 4 5], got %v", config.Experiment.AgentCounts)
	}
	if config.Experiment.Trials != 3 {
		t.Errorf("expected Trials 3, got %d", config.Experiment.Trials)
	}
	if config.Experiment.Seed != 18446744073709551615 {
		t.Errorf("expected max uint64 seed, got %d", config.Experiment.Seed)
	}
	if !config.Store.Enabled {
		t.Error("expected Store.Enabled to be true")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestEnvOverrides_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"rows", "SWEEP_ROWS", "five"},
		{"fraction", "SWEEP_DIRTY_FRACTION", "lots"},
		{"seed", "SWEEP_SEED", "-1"},
		{"agents", "SWEEP_AGENT_COUNTS", "1,x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := applyEnvOverrides(Default())
			if err == nil {
				t.Fatal("expected error for malformed value")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error should name %s, got: %v", tt.key, err)
			}
		})
	}
}

func TestLoad_UsesHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if path != filepath.Join(home, ".sweep", "config.yaml") {
		t.Errorf("DefaultPath = %s", path)
	}

	cfg := Default()
	cfg.Experiment.Trials = 4
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("SWEEP_ROWS", "6")
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Experiment.Trials != 4 {
		t.Errorf("expected Trials 4 from file, got %d", loaded.Experiment.Trials)
	}
	if loaded.Simulation.Rows != 6 {
		t.Errorf("expected env to override rows to 6, got %d", loaded.Simulation.Rows)
	}
}

func TestLoad_NoFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.Simulation.Rows != 5 {
		t.Errorf("expected defaults, got rows %d", config.Simulation.Rows)
	}
}

func TestExperimentConfig(t *testing.T) {
	config := Default()
	config.Experiment.Seed = 9

	ec := config.ExperimentConfig()
	if ec.Trials != 10 || ec.Seed != 9 {
		t.Errorf("unexpected experiment config: %+v", ec)
	}
	if ec.Scenario.Rows != 5 || ec.Scenario.MaxTicks != 100 {
		t.Errorf("unexpected scenario: %+v", ec.Scenario)
	}

	// The returned slice must not alias the config.
	ec.AgentCounts[0] = 99
	if config.Experiment.AgentCounts[0] != 1 {
		t.Error("ExperimentConfig aliased AgentCounts")
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"zero rows", func(c *SweepConfig) { c.Simulation.Rows = 0 }},
		{"negative cols", func(c *SweepConfig) { c.Simulation.Cols = -2 }},
		{"fraction above 1", func(c *SweepConfig) { c.Simulation.DirtyFraction = 1.5 }},
		{"negative fraction", func(c *SweepConfig) { c.Simulation.DirtyFraction = -0.1 }},
		{"zero ticks", func(c *SweepConfig) { c.Simulation.MaxTicks = 0 }},
		{"no agents", func(c *SweepConfig) { c.Experiment.AgentCounts = nil }},
		{"zero agents", func(c *SweepConfig) { c.Experiment.AgentCounts = []int{1, 0} }},
		{"zero trials", func(c *SweepConfig) { c.Experiment.Trials = 0 }},
		{"too many trials", func(c *SweepConfig) { c.Experiment.Trials = 1_000_000 }},
		{"too many agents", func(c *SweepConfig) { c.Experiment.AgentCounts = []int{100_000} }},
		{"bad log level", func(c *SweepConfig) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateExperiment_Caps(t *testing.T) {
	ok := Default().ExperimentConfig()
	ok.Trials = constants.MaxTrials
	ok.AgentCounts = []int{1, constants.MaxAgents}
	if err := ValidateExperiment(ok); err != nil {
		t.Errorf("values at the caps should pass: %v", err)
	}

	trials := Default().ExperimentConfig()
	trials.Trials = constants.MaxTrials + 1
	if err := ValidateExperiment(trials); err == nil || !strings.Contains(err.Error(), "trials must be at most") {
		t.Errorf("trials over the cap: err = %v", err)
	}

	agents := Default().ExperimentConfig()
	agents.AgentCounts = []int{2, constants.MaxAgents + 1}
	if err := ValidateExperiment(agents); err == nil || !strings.Contains(err.Error(), "agent counts must be at most") {
		t.Errorf("agents over the cap: err = %v", err)
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "warn", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestParseAgentCounts(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"1,2,3", []int{1, 2, 3}, false},
		{" 4 , 2 ", []int{4, 2}, false},
		{"1-4", []int{1, 2, 3, 4}, false},
		{"2,5-6,", []int{2, 5, 6}, false},
		{"", nil, true},
		{",,", nil, true},
		{"a", nil, true},
		{"5-1", nil, true},
		{"1-100000", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAgentCounts(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseAgentCounts(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
simulation:
  rows: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
