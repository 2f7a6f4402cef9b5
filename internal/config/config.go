// Package config holds the settings shared by every command, read through
// viper from flags, STACKCHECK_* variables and the optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/losb/stackcheck/internal/environment"
	"github.com/losb/stackcheck/internal/export"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "STACKCHECK"

const (
	KeyRequiredEnv   = "required_env"
	KeyEnvExample    = "env_example"
	KeyScanSources   = "scan_sources"
	KeyStrict        = "strict"
	KeyFormat        = "format"
	KeyLogLevel      = "log_level"
	KeyNoColor       = "no_color"
	KeyProbeTimeout  = "probe.timeout"
	KeyProbeInterval = "probe.interval"
	KeyProbeSSLMode  = "probe.sslmode"
)

var sslModes = map[string]bool{
	"disable": true, "allow": true, "prefer": true,
	"require": true, "verify-ca": true, "verify-full": true,
}

type Config struct {
	RequiredEnv []string    `mapstructure:"required_env"`
	EnvExample  string      `mapstructure:"env_example"`
	ScanSources bool        `mapstructure:"scan_sources"`
	Strict      bool        `mapstructure:"strict"`
	Format      string      `mapstructure:"format"`
	LogLevel    string      `mapstructure:"log_level"`
	NoColor     bool        `mapstructure:"no_color"`
	Probe       ProbeConfig `mapstructure:"probe"`
}

type ProbeConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Interval time.Duration `mapstructure:"interval"`
	SSLMode  string        `mapstructure:"sslmode"`
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRequiredEnv, environment.DefaultRequired)
	v.SetDefault(KeyEnvExample, ".env.example")
	v.SetDefault(KeyScanSources, true)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyFormat, "json")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyProbeTimeout, 30*time.Second)
	v.SetDefault(KeyProbeInterval, 500*time.Millisecond)
	v.SetDefault(KeyProbeSSLMode, "disable")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load decodes and checks the settings in v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// A comma-separated STACKCHECK_REQUIRED_ENV arrives as one element.
	if len(cfg.RequiredEnv) == 1 && strings.Contains(cfg.RequiredEnv[0], ",") {
		cfg.RequiredEnv = strings.Split(cfg.RequiredEnv[0], ",")
	}
	for i, name := range cfg.RequiredEnv {
		cfg.RequiredEnv[i] = strings.TrimSpace(name)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	if _, err := export.ForFormat(cfg.Format); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyFormat, err)
	}
	if !sslModes[cfg.Probe.SSLMode] {
		return nil, fmt.Errorf("invalid %s %q", KeyProbeSSLMode, cfg.Probe.SSLMode)
	}
	if cfg.Probe.Timeout <= 0 || cfg.Probe.Interval <= 0 {
		return nil, fmt.Errorf("probe timeout and interval must be positive")
	}
	return &cfg, nil
}

// Level returns the configured logrus level.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}
