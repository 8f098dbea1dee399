package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// ErrConfigExists is returned by InitLocal when the file is already there
var ErrConfigExists = errors.New("config file already exists")

// Configuration layer names, lowest precedence first
const (
	LayerDefaults = "defaults"
	LayerGlobal   = "global"
	LayerLocal    = "local"
	LayerEnv      = "environment"
	LayerFlags    = "flags"
)

// ConfigService resolves settings for documents in a directory from the
// built-in defaults, the global file, a local powerbook.toml, POWERBOOK_*
// variables and command-line flags, in that order
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
	fs     ports.FileSystem
	logger *slog.Logger
}

// NewConfigService creates a configuration service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger, fs ports.FileSystem, logger *slog.Logger) *ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigService{
		loader: loader,
		merger: merger,
		fs:     fs,
		logger: logger.With("service", "config"),
	}
}

// LoadConfig returns the effective configuration for dir
func (s *ConfigService) LoadConfig(ctx context.Context, dir string, flags map[string]interface{}) (*entities.Config, error) {
	resolved, err := s.Resolve(ctx, dir, flags)
	if err != nil {
		return nil, err
	}
	return resolved.Config, nil
}

// Resolve returns the effective configuration for dir along with the
// layers that contributed to it
func (s *ConfigService) Resolve(ctx context.Context, dir string, flags map[string]interface{}) (*ports.ResolvedConfig, error) {
	layers := []*entities.Config{s.merger.Defaults()}
	sources := []ports.ConfigSource{{Layer: LayerDefaults}}

	global, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if global != nil {
		layers = append(layers, global)
		sources = append(sources, ports.ConfigSource{Layer: LayerGlobal, Path: s.loader.GlobalPath()})
	}

	local, err := s.loader.LoadLocal(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if local != nil {
		layers = append(layers, local)
		sources = append(sources, ports.ConfigSource{Layer: LayerLocal, Path: s.loader.LocalPath(dir)})
	}

	cfg := s.merger.ApplyEnvVars(s.merger.Merge(layers...))
	sources = append(sources, ports.ConfigSource{Layer: LayerEnv})
	if len(flags) > 0 {
		cfg = s.merger.ApplyFlags(cfg, flags)
		sources = append(sources, ports.ConfigSource{Layer: LayerFlags})
	}

	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}

	s.logger.Debug("Configuration resolved",
		slog.String("dir", dir),
		slog.Int("layers", len(sources)),
		slog.String("template", cfg.Template.Name),
	)
	return &ports.ResolvedConfig{Config: cfg, Sources: sources}, nil
}

// InitLocal writes the defaults to dir's powerbook.toml. An existing file is
// only replaced when overwrite is set.
func (s *ConfigService) InitLocal(ctx context.Context, dir string, overwrite bool) (string, error) {
	path := s.loader.LocalPath(dir)
	if !overwrite && s.fs.Exists(path) {
		return path, fmt.Errorf("%s: %w", path, ErrConfigExists)
	}
	if err := s.loader.WriteDefaults(ctx, path); err != nil {
		return path, err
	}
	s.logger.Info("Wrote local configuration", slog.String("path", path))
	return path, nil
}

var _ ports.ConfigService = (*ConfigService)(nil)
