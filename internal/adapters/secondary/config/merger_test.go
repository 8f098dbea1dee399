package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

func TestConfigMerger_Merge(t *testing.T) {
	merger := NewConfigMerger(nil)

	t.Run("merge with no configs returns defaults", func(t *testing.T) {
		result := merger.Merge()
		require.NotNil(t, result)
		assert.Equal(t, "standard", result.Template.Name)
		assert.True(t, result.Session.WarnLowDPI)
	})

	t.Run("merge multiple configs with precedence", func(t *testing.T) {
		defaults := Defaults()
		global := &entities.Config{
			Template: entities.TemplateConfig{Name: "widescreen"},
			Metadata: entities.Metadata{Author: "Global", Company: "Acme"},
			Session:  entities.SessionConfig{MinDPI: 150},
		}
		local := &entities.Config{
			Metadata: entities.Metadata{Author: "Local"},
			Session:  entities.SessionConfig{AutoSave: true},
			Server:   entities.ServerConfig{Port: 9000, CORSOrigins: []string{"http://example.com"}},
		}

		result := merger.Merge(defaults, global, local)

		assert.Equal(t, "widescreen", result.Template.Name)
		assert.Equal(t, "Local", result.Metadata.Author)
		assert.Equal(t, "Acme", result.Metadata.Company)
		assert.Equal(t, 150.0, result.Session.MinDPI)
		assert.True(t, result.Session.AutoSave)
		// unset booleans do not switch defaults off
		assert.True(t, result.Session.WarnLowDPI)
		assert.Equal(t, 9000, result.Server.Port)
		assert.Equal(t, "localhost", result.Server.Host)
		assert.Equal(t, []string{"http://example.com"}, result.Server.CORSOrigins)
		assert.Equal(t, 200, result.Watcher.IntervalMs)
	})

	t.Run("merge handles nil configs", func(t *testing.T) {
		result := merger.Merge(Defaults(), nil)
		assert.Equal(t, "standard", result.Template.Name)
	})
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	merger := NewConfigMerger(nil)
	base := Defaults()

	t.Run("apply CLI flag overrides", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{
			"port":     4000,
			"host":     "0.0.0.0",
			"template": "widescreen",
			"autosave": true,
			"min-dpi":  200.0,
			"author":   "Flag",
			"verbose":  true,
		})

		assert.Equal(t, 4000, result.Server.Port)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, "widescreen", result.Template.Name)
		assert.True(t, result.Session.AutoSave)
		assert.Equal(t, 200.0, result.Session.MinDPI)
		assert.Equal(t, "Flag", result.Metadata.Author)
		assert.True(t, result.Logging.Verbose)

		// base is untouched
		assert.Equal(t, "standard", base.Template.Name)
	})

	t.Run("ignore invalid and wrong type flags", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{
			"port":     -1,
			"template": 42,
			"min-dpi":  "high",
		})
		assert.Equal(t, base.Server.Port, result.Server.Port)
		assert.Equal(t, "standard", result.Template.Name)
		assert.Equal(t, base.Session.MinDPI, result.Session.MinDPI)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger(nil)

	t.Run("apply environment variable overrides", func(t *testing.T) {
		t.Setenv("POWERBOOK_AUTOSAVE", "true")
		t.Setenv("POWERBOOK_WARN_LOW_DPI", "false")
		t.Setenv("POWERBOOK_MIN_DPI", "72")
		t.Setenv("POWERBOOK_TEMPLATE", "widescreen")
		t.Setenv("POWERBOOK_PORT", "5000")
		t.Setenv("POWERBOOK_AUTHOR", "Env")
		t.Setenv("POWERBOOK_WATCH_INTERVAL", "400")

		result := merger.ApplyEnvVars(Defaults())

		assert.True(t, result.Session.AutoSave)
		assert.False(t, result.Session.WarnLowDPI)
		assert.Equal(t, 72.0, result.Session.MinDPI)
		assert.Equal(t, "widescreen", result.Template.Name)
		assert.Equal(t, 5000, result.Server.Port)
		assert.Equal(t, "Env", result.Metadata.Author)
		assert.Equal(t, 400, result.Watcher.IntervalMs)
	})

	t.Run("ignore invalid environment values", func(t *testing.T) {
		t.Setenv("POWERBOOK_PORT", "not-a-port")
		t.Setenv("POWERBOOK_MIN_DPI", "-3")
		t.Setenv("POWERBOOK_AUTOSAVE", "maybe")

		base := &entities.Config{Server: entities.ServerConfig{Port: 3010}, Session: entities.SessionConfig{MinDPI: 100}}
		result := merger.ApplyEnvVars(base)

		assert.Equal(t, 3010, result.Server.Port)
		assert.Equal(t, 100.0, result.Session.MinDPI)
		assert.False(t, result.Session.AutoSave)
	})
}

func TestDeepCopy(t *testing.T) {
	t.Run("creates independent slices", func(t *testing.T) {
		src := Defaults()
		dst := deepCopy(src)
		dst.Server.CORSOrigins[0] = "changed"
		dst.Metadata.Author = "changed"

		assert.NotEqual(t, "changed", src.Server.CORSOrigins[0])
		assert.Empty(t, src.Metadata.Author)
	})

	t.Run("handles nil config", func(t *testing.T) {
		assert.Nil(t, deepCopy(nil))
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"POWERBOOK_CORS_ORIGINS":   " http://a.test , ,http://b.test",
		"POWERBOOK_LOG_JSON":       "1",
		"POWERBOOK_WATCH_DEBOUNCE": "0",
		"POWERBOOK_PORT":           "0",
		"POWERBOOK_WARN_LOW_DPI":   "nope",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Defaults()
	rejected := applyEnv(cfg, lookup)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Logging.JSONFormat)
	assert.Equal(t, 0, cfg.Watcher.DebounceMs)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.True(t, cfg.Session.WarnLowDPI)
	assert.ElementsMatch(t, []string{"POWERBOOK_PORT", "POWERBOOK_WARN_LOW_DPI"}, rejected)
}

func TestConfigMerger_Defaults(t *testing.T) {
	merger := NewConfigMerger(nil)
	a, b := merger.Defaults(), merger.Defaults()
	a.Server.CORSOrigins[0] = "changed"
	assert.NotEqual(t, a.Server.CORSOrigins[0], b.Server.CORSOrigins[0])
	assert.Equal(t, DefaultTemplate, b.Template.Name)
}
