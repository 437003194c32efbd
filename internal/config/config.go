package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	SourceDir      string        `mapstructure:"source_dir"`
	DestDir        string        `mapstructure:"dest_dir"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	MinAge         time.Duration `mapstructure:"min_age"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	IgnoreList     []string      `mapstructure:"ignore_list"`
	DaemonPort     int           `mapstructure:"daemon_port"`
	DBPath         string        `mapstructure:"db_path"`
	LogFile        string        `mapstructure:"log_file"`
	EventLog       bool          `mapstructure:"event_log"`
}

var Default = Config{
	SettleDelay:    100 * time.Millisecond,
	SweepInterval:  30 * time.Second,
	MinAge:         5 * time.Second,
	MaxAttempts:    3,
	RetryBaseDelay: time.Second,
	IgnoreList:     []string{".DS_Store", "Thumbs.db", "desktop.ini", "*.tmp", "*.swp", "~$*"},
	DaemonPort:     9101,
	EventLog:       true,
}

// Dir returns the per-user configuration directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".filemover")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}

	return configDir, nil
}

func Load() (*Config, error) {
	configDir, err := Dir()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configDir)
}

// LoadFrom reads config.yaml in configDir, then FILEMOVER_* environment
// variables. Missing keys fall back to Default.
func LoadFrom(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("source_dir", filepath.Join(configDir, "in"))
	v.SetDefault("dest_dir", filepath.Join(configDir, "out"))
	v.SetDefault("settle_delay", Default.SettleDelay)
	v.SetDefault("sweep_interval", Default.SweepInterval)
	v.SetDefault("min_age", Default.MinAge)
	v.SetDefault("max_attempts", Default.MaxAttempts)
	v.SetDefault("retry_base_delay", Default.RetryBaseDelay)
	v.SetDefault("ignore_list", Default.IgnoreList)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("db_path", filepath.Join(configDir, "filemover.db"))
	v.SetDefault("log_file", "")
	v.SetDefault("event_log", Default.EventLog)

	v.SetEnvPrefix("FILEMOVER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize makes both directories absolute and validates the result.
func (c *Config) Normalize() error {
	if c.SourceDir == "" || c.DestDir == "" {
		return errors.New("source_dir and dest_dir are required")
	}

	src, err := filepath.Abs(c.SourceDir)
	if err != nil {
		return fmt.Errorf("invalid source dir: %w", err)
	}
	dst, err := filepath.Abs(c.DestDir)
	if err != nil {
		return fmt.Errorf("invalid dest dir: %w", err)
	}

	c.SourceDir = filepath.Clean(src)
	c.DestDir = filepath.Clean(dst)

	return c.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.SourceDir == "" || c.DestDir == "":
		return errors.New("source_dir and dest_dir are required")
	case c.SourceDir == c.DestDir:
		return fmt.Errorf("source_dir and dest_dir must differ: %s", c.SourceDir)
	case c.SettleDelay < 0:
		return fmt.Errorf("settle_delay must not be negative: %s", c.SettleDelay)
	case c.SweepInterval <= 0:
		return fmt.Errorf("sweep_interval must be positive: %s", c.SweepInterval)
	case c.MinAge < 0:
		return fmt.Errorf("min_age must not be negative: %s", c.MinAge)
	case c.MaxAttempts < 1:
		return fmt.Errorf("max_attempts must be at least 1: %d", c.MaxAttempts)
	case c.RetryBaseDelay < 0:
		return fmt.Errorf("retry_base_delay must not be negative: %s", c.RetryBaseDelay)
	}

	return nil
}
