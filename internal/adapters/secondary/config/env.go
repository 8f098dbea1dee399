package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// envPrefix namespaces every environment override
const envPrefix = "POWERBOOK_"

// envOverride maps one POWERBOOK_* variable onto the configuration
type envOverride struct {
	key   string
	apply func(cfg *entities.Config, value string) error
}

var envOverrides = []envOverride{
	{"AUTOSAVE", boolField(func(c *entities.Config) *bool { return &c.Session.AutoSave })},
	{"WARN_LOW_DPI", boolField(func(c *entities.Config) *bool { return &c.Session.WarnLowDPI })},
	{"MIN_DPI", func(c *entities.Config, v string) error {
		dpi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if dpi <= 0 {
			return fmt.Errorf("must be positive, got %v", dpi)
		}
		c.Session.MinDPI = dpi
		return nil
	}},
	{"TEMP_DIR", stringField(func(c *entities.Config) *string { return &c.Session.TempDir })},
	{"TEMPLATE", stringField(func(c *entities.Config) *string { return &c.Template.Name })},
	{"HOST", stringField(func(c *entities.Config) *string { return &c.Server.Host })},
	{"PORT", positiveInt(func(c *entities.Config) *int { return &c.Server.Port })},
	{"READ_TIMEOUT", positiveInt(func(c *entities.Config) *int { return &c.Server.ReadTimeout })},
	{"WRITE_TIMEOUT", positiveInt(func(c *entities.Config) *int { return &c.Server.WriteTimeout })},
	{"SHUTDOWN_TIMEOUT", positiveInt(func(c *entities.Config) *int { return &c.Server.ShutdownTimeout })},
	{"CORS_ORIGINS", func(c *entities.Config, v string) error {
		var origins []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		if len(origins) == 0 {
			return fmt.Errorf("no origins in %q", v)
		}
		c.Server.CORSOrigins = origins
		return nil
	}},
	{"WATCH_INTERVAL", positiveInt(func(c *entities.Config) *int { return &c.Watcher.IntervalMs })},
	{"WATCH_DEBOUNCE", func(c *entities.Config, v string) error {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if ms < 0 {
			return fmt.Errorf("must not be negative, got %d", ms)
		}
		c.Watcher.DebounceMs = ms
		return nil
	}},
	{"AUTHOR", stringField(func(c *entities.Config) *string { return &c.Metadata.Author })},
	{"COMPANY", stringField(func(c *entities.Config) *string { return &c.Metadata.Company })},
	{"LOG_LEVEL", stringField(func(c *entities.Config) *string { return &c.Logging.Level })},
	{"LOG_VERBOSE", boolField(func(c *entities.Config) *bool { return &c.Logging.Verbose })},
	{"LOG_JSON", boolField(func(c *entities.Config) *bool { return &c.Logging.JSONFormat })},
	{"LOG_FILE", stringField(func(c *entities.Config) *string { return &c.Logging.File })},
}

// applyEnv sets every override present in lookup. Values that fail to parse
// are skipped and reported by key.
func applyEnv(cfg *entities.Config, lookup func(string) (string, bool)) []string {
	var rejected []string
	for _, o := range envOverrides {
		value, ok := lookup(envPrefix + o.key)
		if !ok || value == "" {
			continue
		}
		if err := o.apply(cfg, value); err != nil {
			rejected = append(rejected, envPrefix+o.key)
		}
	}
	return rejected
}

func stringField(field func(*entities.Config) *string) func(*entities.Config, string) error {
	return func(c *entities.Config, v string) error {
		*field(c) = v
		return nil
	}
}

func boolField(field func(*entities.Config) *bool) func(*entities.Config, string) error {
	return func(c *entities.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func positiveInt(field func(*entities.Config) *int) func(*entities.Config, string) error {
	return func(c *entities.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("must be positive, got %d", n)
		}
		*field(c) = n
		return nil
	}
}

// osLookup reads the process environment
var osLookup = os.LookupEnv
