package config

import "time"

// SourceConfig describes where the system map dataset comes from
type SourceConfig struct {
	// URL is an http(s) URL or a local file path
	URL      string        `yaml:"url" validate:"required"`
	DumpPath string        `yaml:"dumpPath"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	// RefreshInterval of zero loads the dataset once
	RefreshInterval time.Duration `yaml:"refreshInterval" validate:"gte=0"`
}

// StateConfig describes where visited stations are saved
type StateConfig struct {
	Backend string `yaml:"backend" validate:"oneof=json sqlite"`
	Path    string `yaml:"path" validate:"required"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lt=65536"`
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Source SourceConfig `yaml:"source"`
	State  StateConfig  `yaml:"state"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}
