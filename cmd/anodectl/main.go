// Package main provides the anodectl CLI: compute per-node weights from job
// history and publish them into the cluster's live configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anodelabs/anode-agent/pkg/config"
	"github.com/anodelabs/anode-agent/pkg/logger"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "anodectl",
	Short: "derive and deploy per-node storage weights from job history",
	Long: "anodectl computes a normalized per-datanode weight distribution from\n" +
		"job-execution history and publishes it to the cluster: the weight artifact\n" +
		"goes to shared storage and the site configuration gets the artifact\n" +
		"location plus an inline node:weight list.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config overlay")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	json := cfg.LogJSON || logJSON

	return cfg, logger.New(logger.ParseLevel(level), json), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
