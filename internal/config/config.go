// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true,
}

// Config is the top-level static configuration. The YAML file uses
// `acparse:` as root key; env vars use the ACPARSE_ prefix, e.g.
// ACPARSE_TRANSPORT_SERVER_PORT.
type Config struct {
	Transport TransportConfig `mapstructure:"transport"`
	Fragment  FragmentConfig  `mapstructure:"fragment"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// TransportConfig controls how direction is classified on UDP datagrams.
type TransportConfig struct {
	ServerPort uint16 `mapstructure:"server_port"`
}

// FragmentConfig bounds the fragment assembler's in-flight state.
type FragmentConfig struct {
	MaxGroups  int `mapstructure:"max_groups"`
	GroupTTLMs int `mapstructure:"group_ttl_ms"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"` // "json" | "text"
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig controls optional rotated file output, alongside stderr.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type configRoot struct {
	ACParse Config `mapstructure:"acparse"`
}

// Load reads configuration from path, if given, then applies environment
// overrides and defaults. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// No explicit env prefix — the "acparse." key prefix naturally maps to
	// ACPARSE_ in env vars via the key replacer, e.g. key
	// "acparse.log.level" -> env "ACPARSE_LOG_LEVEL".
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg := root.ACParse

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c Config) validate() error {
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Fragment.MaxGroups <= 0 {
		return fmt.Errorf("fragment.max_groups must be positive, got %d", c.Fragment.MaxGroups)
	}
	if c.Fragment.GroupTTLMs <= 0 {
		return fmt.Errorf("fragment.group_ttl_ms must be positive, got %d", c.Fragment.GroupTTLMs)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("acparse.transport.server_port", 9000)

	v.SetDefault("acparse.fragment.max_groups", 4096)
	v.SetDefault("acparse.fragment.group_ttl_ms", 30000)

	v.SetDefault("acparse.log.level", "info")
	v.SetDefault("acparse.log.format", "text")
	v.SetDefault("acparse.log.file.enabled", false)
	v.SetDefault("acparse.log.file.path", "./acparse.log")
	v.SetDefault("acparse.log.file.max_size_mb", 100)
	v.SetDefault("acparse.log.file.max_age_days", 30)
	v.SetDefault("acparse.log.file.max_backups", 5)

	v.SetDefault("acparse.metrics.enabled", false)
	v.SetDefault("acparse.metrics.addr", ":9464")
}
