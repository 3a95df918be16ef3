// Package config provides environment-based configuration for the agent,
// with an optional YAML overlay file for cluster-specific settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the agent.
type Config struct {
	// Cluster configuration
	Cluster ClusterConfig `yaml:"cluster"`

	// Run-history database. Empty disables persistence (in-memory only).
	DatabaseDSN string `yaml:"database_dsn"`

	// Status API server configuration
	APIHost string `yaml:"api_host"`
	APIPort int    `yaml:"api_port"`

	// Graceful shutdown timeout for the status server
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// ClusterConfig holds settings for talking to the storage cluster.
type ClusterConfig struct {
	// DFSBinary is the cluster CLI used for file and admin operations.
	DFSBinary string `yaml:"dfs_binary"`
	// HistoryPath is the remote directory holding job-history documents.
	HistoryPath string `yaml:"history_path"`
	// SitePath is the local path of the cluster's site configuration file.
	SitePath string `yaml:"site_path"`
	// WeightsDestDir is the remote directory weight artifacts are published to.
	WeightsDestDir string `yaml:"weights_dest_dir"`
	// WeightsFileProperty names the site property holding the artifact location.
	WeightsFileProperty string `yaml:"weights_file_property"`
	// InlineWeightsProperty names the site property holding node:weight pairs.
	InlineWeightsProperty string `yaml:"inline_weights_property"`
	// CommandTimeout bounds each cluster CLI invocation.
	CommandTimeout Duration `yaml:"command_timeout"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Cluster: ClusterConfig{
			DFSBinary:             getEnv("ANODE_DFS_BINARY", "hdfs"),
			HistoryPath:           getEnv("ANODE_HISTORY_PATH", "/user/hadoop/jobhistory"),
			SitePath:              getEnv("ANODE_SITE_PATH", "/etc/hadoop/conf/hdfs-site.xml"),
			WeightsDestDir:        getEnv("ANODE_WEIGHTS_DEST_DIR", "/user/hadoop/anode/weights"),
			WeightsFileProperty:   getEnv("ANODE_WEIGHTS_FILE_PROPERTY", "dfs.anode.weights.file"),
			InlineWeightsProperty: getEnv("ANODE_INLINE_WEIGHTS_PROPERTY", "dfs.datanode.data.dir.weight"),
			CommandTimeout:        Duration(getDurationEnv("ANODE_COMMAND_TIMEOUT", 2*time.Minute)),
		},
		DatabaseDSN:     getEnv("DATABASE_URL", ""),
		APIHost:         getEnv("ANODE_API_HOST", "0.0.0.0"),
		APIPort:         getIntEnv("ANODE_API_PORT", 8080),
		ShutdownTimeout: Duration(getDurationEnv("ANODE_SHUTDOWN_TIMEOUT", 30*time.Second)),
		LogLevel:        getEnv("ANODE_LOG_LEVEL", "info"),
		LogJSON:         getBoolEnv("ANODE_LOG_JSON", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithFile reads configuration from environment variables, then applies
// the YAML overlay at path on top. The overlay only overrides fields it sets.
func LoadWithFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Cluster.DFSBinary == "" {
		return fmt.Errorf("cluster dfs_binary is required")
	}
	if c.Cluster.WeightsFileProperty == "" {
		return fmt.Errorf("cluster weights_file_property is required")
	}
	if c.Cluster.InlineWeightsProperty == "" {
		return fmt.Errorf("cluster inline_weights_property is required")
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be in 1..65535, got %d", c.APIPort)
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns the environment variable as an int or a default.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getBoolEnv returns the environment variable as a bool or a default.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv returns the environment variable as a duration or a default.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
