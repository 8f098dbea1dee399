package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/powerbook/internal/adapters/secondary/config"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/imaging"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/parser"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/pptx"
	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
	"github.com/fredcamaral/powerbook/internal/domain/services"
)

// app holds the adapters shared by every command
type app struct {
	config  *entities.Config
	sources []ports.ConfigSource
	logger  *slog.Logger
	fs      ports.FileSystem
	store   ports.DocumentStore
	builder *services.SlideBuilder
	closer  io.Closer
}

// newConfigService wires the TOML loader, honouring --config
func newConfigService(cmd *cobra.Command, fs ports.FileSystem) *services.ConfigService {
	loader := config.NewTOMLLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = config.NewTOMLLoaderAt(path)
	}
	return services.NewConfigService(loader, config.NewConfigMerger(nil), fs, nil)
}

// newApp loads configuration for workDir and wires the adapters
func newApp(cmd *cobra.Command, workDir string) (*app, error) {
	fs := ports.NewRealFileSystem()

	resolved, err := newConfigService(cmd, fs).Resolve(cmd.Context(), workDir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg := resolved.Config

	logger, closer, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	for _, src := range resolved.Sources {
		logger.Debug("Configuration layer", slog.String("layer", src.Layer), slog.String("path", src.Path))
	}

	inspector := imaging.NewInspector()

	return &app{
		config:  cfg,
		sources: resolved.Sources,
		logger:  logger,
		fs:      fs,
		store:   pptx.NewStore(fs, inspector, logger),
		builder: services.NewSlideBuilder(fs, inspector, services.BuilderOptionsFrom(cfg.Session), logger),
		closer:  closer,
	}, nil
}

// Close releases the log file, if any
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// sessionOptions derives session options from configuration
func (a *app) sessionOptions(path string) (services.SessionOptions, error) {
	tmpl, err := entities.TemplateByName(a.config.Template.Name)
	if err != nil {
		return services.SessionOptions{}, err
	}
	return services.SessionOptions{
		Path:     path,
		AutoSave: a.config.Session.AutoSave,
		Template: tmpl,
		Metadata: a.config.Metadata,
	}, nil
}

// openSession opens or creates the document at path
func (a *app) openSession(ctx context.Context, path string, overwrite bool) (*services.Session, error) {
	opts, err := a.sessionOptions(path)
	if err != nil {
		return nil, err
	}
	opts.Overwrite = overwrite
	return services.NewSession(ctx, a.store, a.fs, a.builder, opts, a.logger)
}

// composer returns a deck composer over the shared adapters
func (a *app) composer() *services.DeckComposer {
	return services.NewDeckComposer(parser.NewDeckParser(a.logger), a.store, a.fs, a.builder, a.logger)
}

// commit saves the session unless autosave already did
func (a *app) commit(ctx context.Context, session *services.Session, report *entities.Report) error {
	if report != nil && report.Saved {
		return nil
	}
	return session.Save(ctx, "")
}

// collectFlags gathers the flags that override configuration. Only flags
// the user set are returned.
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, get func(string) (interface{}, error)) {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			return
		}
		if v, err := get(name); err == nil {
			flags[name] = v
		}
	}

	set("port", func(n string) (interface{}, error) { return cmd.Flags().GetInt(n) })
	set("host", func(n string) (interface{}, error) { return cmd.Flags().GetString(n) })
	set("template", func(n string) (interface{}, error) { return cmd.Flags().GetString(n) })
	set("autosave", func(n string) (interface{}, error) { return cmd.Flags().GetBool(n) })
	set("min-dpi", func(n string) (interface{}, error) { return cmd.Flags().GetFloat64(n) })
	set("author", func(n string) (interface{}, error) { return cmd.Flags().GetString(n) })
	set("verbose", func(n string) (interface{}, error) { return cmd.Flags().GetBool(n) })

	return flags
}

// newLogger builds the process logger from logging configuration. Output
// goes to the configured file, or to w when none is set.
func newLogger(cfg entities.LoggingConfig, w io.Writer) (*slog.Logger, io.Closer, error) {
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 - path from validated config
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = f
	}

	opts := &slog.HandlerOptions{Level: slogLevel(cfg.GetLevel())}
	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// documentDir returns the directory local configuration is read from
func documentDir(path string) string {
	return filepath.Dir(path)
}

// printReport writes a one-line summary of a report plus its diagnostics
func printReport(w io.Writer, action string, report *entities.Report) {
	if report == nil {
		return
	}
	saved := ""
	if report.Saved {
		saved = " (saved)"
	}
	fmt.Fprintf(w, "%s slide %d%s\n", action, report.SlideIndex+1, saved)
	for _, d := range report.Diagnostics {
		fmt.Fprintf(w, "  %s: %s\n", strings.ToUpper(string(d.Severity)), d.Message)
	}
}
