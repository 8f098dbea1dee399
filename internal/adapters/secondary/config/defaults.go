package config

import (
	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// Built-in settings, the lowest configuration layer
const (
	DefaultTemplate = "standard"
	DefaultHost     = "localhost"
	DefaultPort     = 3010
	DefaultMinDPI   = 100.0
	DefaultLogLevel = "info"

	// LocalFileName is the per-directory config file read next to documents
	LocalFileName = "powerbook.toml"
)

// Defaults returns a fresh copy of the built-in configuration. Environment
// overrides are applied separately by ConfigMerger.ApplyEnvVars.
func Defaults() *entities.Config {
	return &entities.Config{
		Session: entities.SessionConfig{
			WarnLowDPI:  true,
			MinDPI:      DefaultMinDPI,
			IndentWidth: entities.DefaultIndentWidth,
		},
		Template: entities.TemplateConfig{Name: DefaultTemplate},
		Server: entities.ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
			CORSOrigins:     []string{"http://localhost:3010", "http://127.0.0.1:3010"},
		},
		Watcher: entities.WatcherConfig{
			IntervalMs:   200,
			DebounceMs:   500,
			MaxRetries:   3,
			RetryDelayMs: 100,
		},
		Logging: entities.LoggingConfig{Level: DefaultLogLevel},
	}
}
