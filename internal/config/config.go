// Package config loads cadence settings from XDG config paths, a
// project-level override file, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all settings for a cadence invocation.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Output    OutputConfig    `mapstructure:"output"`
	Log       LogConfig       `mapstructure:"log"`
}

// WorkspaceConfig holds workspace location and identity settings.
type WorkspaceConfig struct {
	// Dir overrides workspace discovery; empty means search upward for
	// a .cadence directory.
	Dir     string `mapstructure:"dir"`
	ActorID string `mapstructure:"actor_id"`
}

// OutputConfig holds rendering settings for command output.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Pretty bool   `mapstructure:"pretty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration with the following precedence (highest to
// lowest):
//  1. Environment variables (CADENCE_*)
//  2. Project config (.cadence.yaml in the current directory or a parent)
//  3. User config (~/.config/cadence/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if project := findProjectConfig(); project != "" {
		pv := viper.New()
		pv.SetConfigFile(project)
		if err := pv.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("CADENCE")
	v.AutomaticEnv()
	v.BindEnv("workspace.dir", "CADENCE_DIR")
	v.BindEnv("workspace.actor_id", "CADENCE_ACTOR")
	v.BindEnv("log.level", "CADENCE_LOG_LEVEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Workspace.Dir = os.ExpandEnv(cfg.Workspace.Dir)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Workspace.Dir = os.ExpandEnv(cfg.Workspace.Dir)
	return cfg, nil
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{ActorID: defaultActor()},
		Output:    OutputConfig{Format: "json", Pretty: true},
		Log:       LogConfig{Level: "warn"},
	}
}

// NewLogger builds the process logger from the log settings. Logs go
// to stderr (or the configured file) so stdout stays machine-readable.
func NewLogger(lc LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", lc.Level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	if lc.File != "" {
		zc.OutputPaths = []string{lc.File}
	}
	return zc.Build()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workspace.dir", "")
	v.SetDefault("workspace.actor_id", defaultActor())
	v.SetDefault("output.format", "json")
	v.SetDefault("output.pretty", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cadence"
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cadence")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "cadence")
	}
	return filepath.Join(home, ".config", "cadence")
}

// findProjectConfig searches for .cadence.yaml in the current directory
// and its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(cwd, ".cadence.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return ""
		}
		cwd = parent
	}
}
