package main

import (
	"fmt"
	"os"

	"github.com/aretw0/historyviewer/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "historyviewer",
	Short: "History viewer for versioned records",
	Long:  `historyviewer lists the versions of a record, shows a single version and diffs two versions field by field.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log lifecycle events at debug level")
}

// loadConfig reads the --config file, applying --dir when given.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("dir"); f != nil && f.Changed {
		cfg.VersionsDir = f.Value.String()
	}
	return cfg, nil
}
