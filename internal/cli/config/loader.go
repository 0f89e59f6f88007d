package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile finds the config file to use.
// Priority: explicit path > statmill.yaml > statmill.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("statmill.yaml"); err == nil {
		return "statmill.yaml"
	}
	if _, err := os.Stat("statmill.yml"); err == nil {
		return "statmill.yml"
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"separator": DefaultSeparator,
		"last_only": false,
		"start":     0,
		"stop":      0,
		"step":      DefaultStep,
		"parallel":  false,
		"verbose":   false,
		"output":    DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (STATMILL_ prefix)
	// Transform: STATMILL_LAST_ONLY -> last_only
	if err := k.Load(env.Provider("STATMILL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "STATMILL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

func validate(cfg *Config) error {
	if cfg.Start < 0 {
		return fmt.Errorf("start must be non-negative, got %d", cfg.Start)
	}
	if cfg.Stop < 0 {
		return fmt.Errorf("stop must be non-negative, got %d", cfg.Stop)
	}
	if cfg.Step < 1 {
		return fmt.Errorf("step must be at least 1, got %d", cfg.Step)
	}
	switch cfg.Output {
	case "text", "table":
	default:
		return fmt.Errorf("unknown output format %q (want text or table)", cfg.Output)
	}
	for i, q := range cfg.Queries {
		if strings.TrimSpace(q.Formula) == "" {
			return fmt.Errorf("query %d: empty formula", i)
		}
	}
	return nil
}
