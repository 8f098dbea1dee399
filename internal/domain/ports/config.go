package ports

import (
	"context"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// ConfigLoader reads and writes TOML config files. Files may be partial:
// unset fields stay zero so lower layers show through when merged.
type ConfigLoader interface {
	// LoadGlobal reads the per-user file, writing the defaults there first
	// if it does not exist yet
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal reads powerbook.toml from dir; a missing file yields nil, nil
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// WriteDefaults writes the built-in configuration to path
	WriteDefaults(ctx context.Context, path string) error

	GlobalPath() string
	LocalPath(dir string) string
}

// ConfigMerger combines configuration layers
type ConfigMerger interface {
	Defaults() *entities.Config

	// Merge overlays configs left to right
	Merge(configs ...*entities.Config) *entities.Config

	ApplyEnvVars(config *entities.Config) *entities.Config
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config
}

// ConfigSource describes one layer that took part in a resolved configuration
type ConfigSource struct {
	Layer string `json:"layer"`
	Path  string `json:"path,omitempty"`
}

// ResolvedConfig is an effective configuration and the layers behind it
type ResolvedConfig struct {
	Config  *entities.Config
	Sources []ConfigSource
}

// ConfigService resolves the configuration used for documents in a directory
type ConfigService interface {
	LoadConfig(ctx context.Context, dir string, flags map[string]interface{}) (*entities.Config, error)
	Resolve(ctx context.Context, dir string, flags map[string]interface{}) (*ResolvedConfig, error)

	// InitLocal writes a default powerbook.toml into dir and returns its path
	InitLocal(ctx context.Context, dir string, overwrite bool) (string, error)
}
