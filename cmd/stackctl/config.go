package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all stackctl configuration.
type Config struct {
	EnvFile  string         `mapstructure:"env_file"`
	Compose  ComposeConfig  `mapstructure:"compose"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Database DatabaseConfig `mapstructure:"database"`
	Health   HealthConfig   `mapstructure:"health"`
	Log      LogConfig      `mapstructure:"log"`
}

// ComposeConfig locates the container runtime and the topology files.
type ComposeConfig struct {
	Command  string `mapstructure:"command"`   // e.g. "docker compose"
	DevFile  string `mapstructure:"dev_file"`  // development topology
	ProdFile string `mapstructure:"prod_file"` // production topology
}

// CommandParts splits the compose command into binary and leading args.
func (c ComposeConfig) CommandParts() []string {
	return strings.Fields(c.Command)
}

// BackendConfig locates the backend project and its package manager.
type BackendConfig struct {
	Dir     string `mapstructure:"dir"`
	Tool    string `mapstructure:"tool"`
	Service string `mapstructure:"service"`
}

// DatabaseConfig names the database service and client tooling.
type DatabaseConfig struct {
	Service  string `mapstructure:"service"`
	Client   string `mapstructure:"client"`
	DumpTool string `mapstructure:"dump_tool"`
	AuthDB   string `mapstructure:"auth_db"`
	DumpDir  string `mapstructure:"dump_dir"`
}

// HealthConfig configures the reachability probes.
type HealthConfig struct {
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("env_file", ".env")
	v.SetDefault("compose.command", "docker compose")
	v.SetDefault("compose.dev_file", "docker-compose.yml")
	v.SetDefault("compose.prod_file", "docker-compose.prod.yml")
	v.SetDefault("backend.dir", "backend")
	v.SetDefault("backend.tool", "npm")
	v.SetDefault("backend.service", "backend")
	v.SetDefault("database.service", "mongo")
	v.SetDefault("database.client", "mongosh")
	v.SetDefault("database.dump_tool", "mongodump")
	v.SetDefault("database.auth_db", "admin")
	v.SetDefault("database.dump_dir", "/backups")
	v.SetDefault("health.host", "localhost")
	v.SetDefault("health.timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if the file exists and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("STACKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Compose.CommandParts()) == 0 {
		return nil, fmt.Errorf("compose.command must not be empty")
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Diagnostics go to stderr so relayed tool output owns stdout.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
