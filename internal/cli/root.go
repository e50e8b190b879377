// Package cli wires the stepdeck commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/stepdeck/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stepdeck",
	Short: "Present markdown as slides, one block at a time",
	Long: `stepdeck turns a markdown document into a slide deck and reveals each
slide progressively: headings, paragraphs, list items, code blocks, images
and tables appear one at a time as you advance.

Slides are separated by horizontal rules (---). Documents may also be plain
text, CSV, HTML, PDF or DOCX, local or fetched over HTTP.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stepdeck %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.stepdeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// initConfig points viper at the config file. Environment variables are
// applied by config.LoadWith.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stepdeck"), nil
}

// loadConfig merges defaults, config file and environment, then the flags
// cmd sets explicitly, and validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadWith(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags overlays the presentation flags a command defines and the user
// changed.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("theme") {
		cfg.Theme, err = flags.GetString("theme")
		if err != nil {
			return err
		}
	}
	if flags.Changed("font-size") {
		cfg.FontSize, err = flags.GetInt("font-size")
		if err != nil {
			return err
		}
	}
	if flags.Changed("style") {
		cfg.GlamourStyle, err = flags.GetString("style")
		if err != nil {
			return err
		}
	}
	if flags.Changed("port") {
		cfg.Port, err = flags.GetString("port")
		if err != nil {
			return err
		}
	}
	return nil
}
