package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stepdeck configuration",
	Long: `Manage stepdeck configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (STEPDECK_*)
3. Config file (~/.stepdeck/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWith(viper.GetViper())
		if err != nil {
			return err
		}
		if file := viper.ConfigFileUsed(); file != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", file)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}
		return writeConfig(cmd.OutOrStdout(), showable(cfg))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}
		path, err := initConfigFile(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// showable hides the API key.
func showable(cfg config.Config) config.Config {
	if cfg.APIKey != "" {
		cfg.APIKey = "********"
	}
	return cfg
}

func writeConfig(w io.Writer, cfg config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// initConfigFile writes the defaults to dir/config.yaml. An existing file is
// never overwritten.
func initConfigFile(dir string) (path string, err error) {
	path = filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	fmt.Fprintf(f, "# stepdeck configuration\n")
	fmt.Fprintf(f, "#\n")
	fmt.Fprintf(f, "# Environment variables (STEPDECK_*) and flags take precedence.\n")
	fmt.Fprintf(f, "# Themes: %v\n\n", theme.Names())
	if err := writeConfig(f, config.Default()); err != nil {
		return "", err
	}
	return path, nil
}
