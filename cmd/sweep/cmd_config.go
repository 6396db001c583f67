package main

import (
	"fmt"
	"strconv"

	"github.com/nvandessel/sweep/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sweep configuration",
		Long: `View and modify sweep configuration settings.

Configuration is stored in ~/.sweep/config.yaml. SWEEP_* environment
variables override the file, and command flags override both.

Examples:
  sweep config list                            # Show all settings
  sweep config get simulation.rows             # Get a specific setting
  sweep config set experiment.agent_counts 1-8 # Set a setting
  sweep config path                            # Print the config file location`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration (~/.sweep/config.yaml):")
			fmt.Fprintln(cmd.OutOrStdout())
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, err := config.DefaultPath()
			if err != nil {
				return err
			}

			// Start from the file alone so env overrides are not persisted.
			cfg := config.Default()
			if loaded, loadErr := config.LoadFromFile(path); loadErr == nil {
				cfg = loaded
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.SweepConfig, key string) (interface{}, bool) {
	switch key {
	case "simulation.rows":
		return cfg.Simulation.Rows, true
	case "simulation.cols":
		return cfg.Simulation.Cols, true
	case "simulation.dirty_fraction":
		return cfg.Simulation.DirtyFraction, true
	case "simulation.max_ticks":
		return cfg.Simulation.MaxTicks, true
	case "experiment.agent_counts":
		return cfg.Experiment.AgentCounts, true
	case "experiment.trials":
		return cfg.Experiment.Trials, true
	case "experiment.seed":
		return cfg.Experiment.Seed, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "store.enabled":
		return cfg.Store.Enabled, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.SweepConfig, key, value string) error {
	var err error
	switch key {
	case "simulation.rows":
		cfg.Simulation.Rows, err = strconv.Atoi(value)
	case "simulation.cols":
		cfg.Simulation.Cols, err = strconv.Atoi(value)
	case "simulation.dirty_fraction":
		cfg.Simulation.DirtyFraction, err = strconv.ParseFloat(value, 64)
	case "simulation.max_ticks":
		cfg.Simulation.MaxTicks, err = strconv.Atoi(value)
	case "experiment.agent_counts":
		cfg.Experiment.AgentCounts, err = config.ParseAgentCounts(value)
	case "experiment.trials":
		cfg.Experiment.Trials, err = strconv.Atoi(value)
	case "experiment.seed":
		cfg.Experiment.Seed, err = strconv.ParseUint(value, 10, 64)
	case "logging.level":
		cfg.Logging.Level = value
	case "store.enabled":
		cfg.Store.Enabled, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
