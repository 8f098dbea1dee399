package config

import (
	"log/slog"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// ConfigMerger layers configurations: defaults, then files, then the
// environment, then command-line flags
type ConfigMerger struct {
	lookup func(string) (string, bool)
	logger *slog.Logger
}

// NewConfigMerger creates a merger that reads overrides from the process
// environment
func NewConfigMerger(logger *slog.Logger) *ConfigMerger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigMerger{
		lookup: osLookup,
		logger: logger.With("adapter", "config"),
	}
}

// Defaults returns the built-in configuration
func (m *ConfigMerger) Defaults() *entities.Config {
	return Defaults()
}

// Merge overlays configs left to right; nil entries are skipped. With no
// arguments it returns the defaults.
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 || configs[0] == nil {
		configs = append([]*entities.Config{Defaults()}, configs...)
	}

	result := deepCopy(configs[0])
	for _, cfg := range configs[1:] {
		if cfg != nil {
			m.mergeInto(result, cfg)
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if tmpl, ok := flags["template"].(string); ok && tmpl != "" {
		result.Template.Name = tmpl
	}

	if autosave, ok := flags["autosave"].(bool); ok {
		result.Session.AutoSave = autosave
	}

	if minDPI, ok := flags["min-dpi"].(float64); ok && minDPI > 0 {
		result.Session.MinDPI = minDPI
	}

	if author, ok := flags["author"].(string); ok && author != "" {
		result.Metadata.Author = author
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
	}

	return result
}

// ApplyEnvVars applies POWERBOOK_* overrides. Unparseable values are
// logged and ignored.
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)
	for _, key := range applyEnv(result, m.lookup) {
		m.logger.Warn("Ignoring invalid environment override", "variable", key)
	}
	return result
}

// mergeInto merges source configuration into target configuration. TOML
// cannot tell false from unset, so booleans only propagate when true.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Session config
	if source.Session.AutoSave {
		target.Session.AutoSave = true
	}
	if source.Session.WarnLowDPI {
		target.Session.WarnLowDPI = true
	}
	if source.Session.MinDPI != 0 {
		target.Session.MinDPI = source.Session.MinDPI
	}
	if source.Session.IndentWidth != 0 {
		target.Session.IndentWidth = source.Session.IndentWidth
	}
	if source.Session.TempDir != "" {
		target.Session.TempDir = source.Session.TempDir
	}

	if source.Template.Name != "" {
		target.Template.Name = source.Template.Name
	}

	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	// Watcher config
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}
	if source.Watcher.MaxRetries != 0 {
		target.Watcher.MaxRetries = source.Watcher.MaxRetries
	}
	if source.Watcher.RetryDelayMs != 0 {
		target.Watcher.RetryDelayMs = source.Watcher.RetryDelayMs
	}

	// Metadata config
	if source.Metadata.Author != "" {
		target.Metadata.Author = source.Metadata.Author
	}
	if source.Metadata.Company != "" {
		target.Metadata.Company = source.Metadata.Company
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}
	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
