package entities

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Session  SessionConfig  `toml:"session"`
	Template TemplateConfig `toml:"template"`
	Server   ServerConfig   `toml:"server"`
	Watcher  WatcherConfig  `toml:"watcher"`
	Metadata Metadata       `toml:"metadata"`
	Logging  LoggingConfig  `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := c.Template.Validate(); err != nil {
		return fmt.Errorf("template config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// SessionConfig controls how a document session builds and persists slides.
// It is fixed when the session is constructed.
type SessionConfig struct {
	AutoSave    bool    `toml:"autosave"`     // rewrite the document after every mutating operation
	WarnLowDPI  bool    `toml:"warn_low_dpi"` // report figures below MinDPI
	MinDPI      float64 `toml:"min_dpi"`
	IndentWidth int     `toml:"indent_width"` // whitespace characters per outline level
	TempDir     string  `toml:"temp_dir"`     // directory for rendered figures; empty uses the OS default
}

// Validate validates session configuration
func (s SessionConfig) Validate() error {
	if s.MinDPI < 0 {
		return errors.New("min dpi must be non-negative")
	}

	if s.IndentWidth < 0 {
		return errors.New("indent width must be non-negative")
	}

	if s.TempDir != "" {
		if info, err := os.Stat(s.TempDir); err != nil || !info.IsDir() {
			return fmt.Errorf("temp dir does not exist: %s", s.TempDir)
		}
	}

	return nil
}

// GetMinDPI returns the DPI warning threshold with default
func (s SessionConfig) GetMinDPI() float64 {
	if s.MinDPI <= 0 {
		return 100
	}
	return s.MinDPI
}

// GetIndentWidth returns the outline indent width with default
func (s SessionConfig) GetIndentWidth() int {
	if s.IndentWidth <= 0 {
		return DefaultIndentWidth
	}
	return s.IndentWidth
}

// TemplateConfig selects the layout template for new documents
type TemplateConfig struct {
	Name string `toml:"name"`
}

// Validate validates template configuration
func (t TemplateConfig) Validate() error {
	if _, err := TemplateByName(t.Name); err != nil {
		return err
	}
	return nil
}

// ServerConfig configures the live preview server. Timeouts are in seconds.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"` // "development" (default) accepts any WebSocket origin
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate checks the server settings without touching the network
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}
	if s.Host != "" && !validHost(s.Host) {
		return fmt.Errorf("invalid host: %q", s.Host)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return errors.New("timeouts must be non-negative")
	}
	switch s.Environment {
	case "", "development", "production":
	default:
		return fmt.Errorf("unknown environment %q", s.Environment)
	}

	for _, origin := range s.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}
	return nil
}

// validHost accepts IP literals and RFC 1123 host names
func validHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				return false
			}
		}
	}
	return true
}

// validateOrigin accepts "*", a "*.domain" pattern or a bare
// http(s)://host[:port]
func validateOrigin(origin string) error {
	if origin == "*" || (strings.HasPrefix(origin, "*.") && validHost(origin[2:])) {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CORS origin %q: must be http(s)://host[:port]", origin)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid CORS origin %q: must not carry a path", origin)
	}
	return nil
}

func (s ServerConfig) GetReadTimeout() time.Duration {
	return seconds(s.ReadTimeout, 30)
}

func (s ServerConfig) GetWriteTimeout() time.Duration {
	return seconds(s.WriteTimeout, 30)
}

func (s ServerConfig) GetShutdownTimeout() time.Duration {
	return seconds(s.ShutdownTimeout, 5)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// GetCORSOrigins returns the configured origins, or the preview server's
// own address when none are set
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) > 0 {
		return s.CORSOrigins
	}
	port := strconv.Itoa(s.Port)
	if s.Port == 0 {
		port = "3010"
	}
	origins := []string{"http://" + net.JoinHostPort("localhost", port), "http://" + net.JoinHostPort("127.0.0.1", port)}
	if s.Host != "" && s.Host != "localhost" && s.Host != "127.0.0.1" {
		origins = append(origins, "http://"+net.JoinHostPort(s.Host, port))
	}
	return origins
}

// IsDevelopment reports whether origin checks are relaxed
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// WatcherConfig tunes how serve polls the deck source and its images.
// All values are milliseconds except MaxRetries.
type WatcherConfig struct {
	IntervalMs   int `toml:"interval_ms"`
	DebounceMs   int `toml:"debounce_ms"`
	MaxRetries   int `toml:"max_retries"` // extra attempts when a watched file is briefly missing
	RetryDelayMs int `toml:"retry_delay_ms"`
}

func (w WatcherConfig) Validate() error {
	if w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}
	if w.DebounceMs < 0 || w.MaxRetries < 0 || w.RetryDelayMs < 0 {
		return errors.New("debounce, retries and retry delay must be non-negative")
	}
	return nil
}

func (w WatcherConfig) GetInterval() time.Duration {
	return millis(w.IntervalMs, 200)
}

func (w WatcherConfig) GetDebounce() time.Duration {
	return millis(w.DebounceMs, 500)
}

func (w WatcherConfig) GetRetryDelay() time.Duration {
	return millis(w.RetryDelayMs, 100)
}

func millis(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Millisecond
}

// Metadata contains document property defaults
type Metadata struct {
	Author  string `toml:"author"`
	Company string `toml:"company"`
}

// LogLevel is a slog level name
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig controls the CLI's slog handler
type LoggingConfig struct {
	Level      string `toml:"level"`
	Verbose    bool   `toml:"verbose"` // forces debug
	JSONFormat bool   `toml:"json_format"`
	File       string `toml:"file"` // absolute path; logs go to stderr when empty
}

func (l LoggingConfig) Validate() error {
	switch LogLevel(strings.ToLower(l.Level)) {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", l.Level)
	}

	if l.File == "" {
		return nil
	}
	if !filepath.IsAbs(l.File) {
		return errors.New("log file path must be absolute")
	}
	if info, err := os.Stat(filepath.Dir(l.File)); err != nil || !info.IsDir() {
		return fmt.Errorf("log file directory does not exist: %s", filepath.Dir(l.File))
	}
	return nil
}

// GetLevel resolves the effective level; Verbose wins over Level
func (l LoggingConfig) GetLevel() LogLevel {
	switch {
	case l.Verbose:
		return LogLevelDebug
	case l.Level == "":
		return LogLevelInfo
	default:
		return LogLevel(strings.ToLower(l.Level))
	}
}
