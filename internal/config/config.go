package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Events   EventsConfig   `mapstructure:"events" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains the database settings. The database is optional;
// an empty URL disables it.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// Event backends.
const (
	BackendHTTP   = "http"
	BackendNATS   = "nats"
	BackendMemory = "memory"
)

// EventsConfig selects and configures the event sender.
type EventsConfig struct {
	Backend       string        `mapstructure:"backend" validate:"required,oneof=http nats memory"`
	BaseURL       string        `mapstructure:"base_url" validate:"required_if=Backend http,omitempty,url"`
	EventKey      string        `mapstructure:"event_key" validate:"required_if=Backend http"`
	NATSURL       string        `mapstructure:"nats_url" validate:"required_if=Backend nats,omitempty,url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true,omitempty,startswith=/"`
}
