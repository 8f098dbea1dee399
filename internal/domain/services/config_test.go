package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) WriteDefaults(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockConfigLoader) GlobalPath() string {
	return "/home/ada/.config/powerbook/config.toml"
}

func (m *MockConfigLoader) LocalPath(dir string) string {
	return filepath.Join(dir, "powerbook.toml")
}

// layerMerger overlays template names and ports so tests can see which
// layer won without a real merger
type layerMerger struct {
	flagged bool
}

func (m *layerMerger) Defaults() *entities.Config {
	return validConfig("standard", 3010)
}

func (m *layerMerger) Merge(configs ...*entities.Config) *entities.Config {
	out := *configs[0]
	for _, c := range configs[1:] {
		if c.Template.Name != "" {
			out.Template.Name = c.Template.Name
		}
		if c.Server.Port != 0 {
			out.Server.Port = c.Server.Port
		}
	}
	return &out
}

func (m *layerMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	return config
}

func (m *layerMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	m.flagged = true
	out := *config
	if port, ok := flags["port"].(int); ok {
		out.Server.Port = port
	}
	return &out
}

func validConfig(template string, port int) *entities.Config {
	return &entities.Config{
		Server:   entities.ServerConfig{Host: "localhost", Port: port},
		Template: entities.TemplateConfig{Name: template},
		Watcher:  entities.WatcherConfig{IntervalMs: 200},
		Session:  entities.SessionConfig{WarnLowDPI: true, MinDPI: 100, IndentWidth: 4},
		Logging:  entities.LoggingConfig{Level: "info"},
	}
}

func TestConfigService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("layers defaults, global, local and flags", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{Template: entities.TemplateConfig{Name: "widescreen"}}, nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(&entities.Config{Server: entities.ServerConfig{Port: 5000}}, nil)
		merger := &layerMerger{}

		service := NewConfigService(loader, merger, ports.NewRealFileSystem(), nil)
		resolved, err := service.Resolve(ctx, "/decks", map[string]interface{}{"port": 6000})
		require.NoError(t, err)

		assert.Equal(t, "widescreen", resolved.Config.Template.Name)
		assert.Equal(t, 6000, resolved.Config.Server.Port)
		assert.Equal(t, []ports.ConfigSource{
			{Layer: LayerDefaults},
			{Layer: LayerGlobal, Path: "/home/ada/.config/powerbook/config.toml"},
			{Layer: LayerLocal, Path: filepath.Join("/decks", "powerbook.toml")},
			{Layer: LayerEnv},
			{Layer: LayerFlags},
		}, resolved.Sources)
		loader.AssertExpectations(t)
	})

	t.Run("missing local file and no flags", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(nil, nil)
		merger := &layerMerger{}

		service := NewConfigService(loader, merger, ports.NewRealFileSystem(), nil)
		resolved, err := service.Resolve(ctx, "/decks", nil)
		require.NoError(t, err)

		assert.False(t, merger.flagged)
		assert.Equal(t, "standard", resolved.Config.Template.Name)
		layers := make([]string, len(resolved.Sources))
		for i, src := range resolved.Sources {
			layers[i] = src.Layer
		}
		assert.Equal(t, []string{LayerDefaults, LayerGlobal, LayerEnv}, layers)
	})

	t.Run("global load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("permission denied"))

		_, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).Resolve(ctx, "/decks", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("local load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(nil, errors.New("bad toml"))

		_, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).Resolve(ctx, "/decks", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("invalid result", func(t *testing.T) {
		loader := &MockConfigLoader{}
		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadLocal", mock.Anything, "/decks").Return(nil, nil)

		_, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).
			Resolve(ctx, "/decks", map[string]interface{}{"port": 70000})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})
}

func TestConfigService_LoadConfig(t *testing.T) {
	loader := &MockConfigLoader{}
	loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
	loader.On("LoadLocal", mock.Anything, ".").Return(&entities.Config{Template: entities.TemplateConfig{Name: "16:9"}}, nil)

	cfg, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).LoadConfig(context.Background(), ".", nil)
	require.NoError(t, err)
	assert.Equal(t, "16:9", cfg.Template.Name)
}

func TestConfigService_InitLocal(t *testing.T) {
	ctx := context.Background()

	t.Run("writes defaults", func(t *testing.T) {
		dir := t.TempDir()
		loader := &MockConfigLoader{}
		loader.On("WriteDefaults", mock.Anything, filepath.Join(dir, "powerbook.toml")).Return(nil)

		path, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).InitLocal(ctx, dir, false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "powerbook.toml"), path)
		loader.AssertExpectations(t)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "powerbook.toml"), []byte("[template]\n"), 0o644))
		loader := &MockConfigLoader{}

		_, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).InitLocal(ctx, dir, false)
		assert.ErrorIs(t, err, ErrConfigExists)
		loader.AssertNotCalled(t, "WriteDefaults", mock.Anything, mock.Anything)
	})

	t.Run("overwrites when asked", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "powerbook.toml"), []byte("[template]\n"), 0o644))
		loader := &MockConfigLoader{}
		loader.On("WriteDefaults", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := NewConfigService(loader, &layerMerger{}, ports.NewRealFileSystem(), nil).InitLocal(ctx, dir, true)
		assert.EqualError(t, err, "disk full")
	})
}
