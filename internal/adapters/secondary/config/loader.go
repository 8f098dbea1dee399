package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

const fileHeader = `# powerbook configuration
#
# Values here override the built-in defaults. A powerbook.toml next to a
# document overrides the global file; POWERBOOK_* environment variables and
# command-line flags override both.

`

// TOMLLoader reads the global config file and per-directory powerbook.toml
// files
type TOMLLoader struct {
	globalPath string
	localName  string
}

// NewTOMLLoader creates a loader for ~/.config/powerbook/config.toml
func NewTOMLLoader() *TOMLLoader {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return NewTOMLLoaderAt(filepath.Join(dir, "powerbook", "config.toml"))
}

// NewTOMLLoaderAt creates a loader with an explicit global file
func NewTOMLLoaderAt(globalPath string) *TOMLLoader {
	return &TOMLLoader{
		globalPath: globalPath,
		localName:  LocalFileName,
	}
}

// LoadGlobal reads the global file, writing the defaults on first use
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if _, err := os.Stat(l.globalPath); os.IsNotExist(err) {
		if err := l.WriteDefaults(ctx, l.globalPath); err != nil {
			return nil, fmt.Errorf("creating defaults: %w", err)
		}
	}
	return l.read(l.globalPath)
}

// LoadLocal reads dir's powerbook.toml; it returns nil, nil when there is none
func (l *TOMLLoader) LoadLocal(_ context.Context, dir string) (*entities.Config, error) {
	path := l.LocalPath(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return l.read(path)
}

// WriteDefaults writes the built-in configuration to path, creating parent
// directories as needed
func (l *TOMLLoader) WriteDefaults(_ context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := toml.NewEncoder(&buf)
	enc.Indent = "  "
	if err := enc.Encode(Defaults()); err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (l *TOMLLoader) GlobalPath() string {
	return l.globalPath
}

func (l *TOMLLoader) LocalPath(dir string) string {
	return filepath.Join(dir, l.localName)
}

// read decodes one file. Unknown keys are rejected so typos surface instead
// of silently falling back to defaults. The partial file is validated as it
// would apply over the defaults.
func (l *TOMLLoader) read(path string) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - global or local config path
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg entities.Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("invalid config in %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := (&ConfigMerger{}).Merge(Defaults(), &cfg).Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return &cfg, nil
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)
