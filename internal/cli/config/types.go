// Package config provides configuration management for the statmill CLI.
//
// Configuration is merged from defaults, an optional statmill.yaml file,
// STATMILL_ environment variables, and command-line flags, in increasing
// order of precedence.
package config

// QueryConfig declares one named formula in the config file.
type QueryConfig struct {
	Label   string `koanf:"label"`
	Formula string `koanf:"formula"`
}

// DashboardConfig holds settings for the live dashboard server.
type DashboardConfig struct {
	Port int `koanf:"port"`
}

// Config holds all CLI configuration options.
type Config struct {
	Queries   []QueryConfig    `koanf:"queries"`
	Separator string           `koanf:"separator"`
	LastOnly  bool             `koanf:"last_only"`
	Start     int              `koanf:"start"`
	Stop      int              `koanf:"stop"`
	Step      int              `koanf:"step"`
	Parallel  bool             `koanf:"parallel"`
	Verbose   bool             `koanf:"verbose"`
	Output    string           `koanf:"output"`
	Dashboard *DashboardConfig `koanf:"dashboard"`
}

// GetDashboard returns the dashboard config with defaults applied.
func (c *Config) GetDashboard() *DashboardConfig {
	if c.Dashboard == nil {
		return &DashboardConfig{Port: DefaultDashboardPort}
	}
	d := c.Dashboard
	if d.Port == 0 {
		d.Port = DefaultDashboardPort
	}
	return d
}

// Default configuration values.
const (
	DefaultSeparator     = ":"
	DefaultStep          = 1
	DefaultOutput        = "text" // text | table
	DefaultDashboardPort = 8723
)
