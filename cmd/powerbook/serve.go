package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	httpserver "github.com/fredcamaral/powerbook/internal/adapters/primary/http"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/browser"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/powerbook/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/services"
)

var serveOpen bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <deck.md>",
	Short: "Preview a markdown deck source in the browser",
	Long: `Start a local HTTP server that previews a markdown deck source. The
deck is rebuilt in memory whenever the source or one of its images changes,
and connected browsers reload automatically. No document is written.

Example:
  powerbook serve talk.md
  powerbook serve talk.md --port 8080 --open`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().StringP("template", "t", "", "Template when the source names none (overrides config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the preview in a browser")
}

// validateServeConfig checks the settings serve needs beyond config validation
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}
	if config.Server.Host == "" || strings.ContainsAny(config.Server.Host, " !") {
		return fmt.Errorf("invalid host: %q", config.Server.Host)
	}
	return nil
}

// serverURL is the address printed and opened for the preview
func serverURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func runServe(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	a, err := newApp(cmd, documentDir(sourcePath))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := validateServeConfig(a.config); err != nil {
		return err
	}
	if !a.fs.Exists(sourcePath) {
		return fmt.Errorf("deck source not found: %s", sourcePath)
	}

	opts, err := a.sessionOptions("")
	if err != nil {
		return err
	}

	deckRenderer, err := renderer.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	monitor := monitoring.NewMonitor()
	server := httpserver.NewServer(deckRenderer, &a.config.Server, a.logger)
	server.SetMetrics(monitor)
	fileWatcher := watcher.NewPollingWatcher(a.fs, a.config.Watcher, a.logger)
	liveReload := services.NewLiveReloadService(a.composer(), fileWatcher, server, a.fs, opts, a.logger)
	liveReload.SetRecorder(monitor)

	ctx := cmd.Context()
	host, port := a.config.Server.Host, a.config.Server.Port
	if err := server.Start(ctx, port, host); err != nil {
		return err
	}
	defer shutdown(server, fileWatcher, liveReload, a)

	if err := liveReload.Start(ctx, sourcePath); err != nil {
		return err
	}

	url := serverURL(host, port)
	fmt.Fprintf(cmd.OutOrStdout(), "Previewing %s at %s (Ctrl+C to stop)\n", sourcePath, url)
	if serveOpen {
		if err := browser.NewLauncher(a.logger).Launch(url, false); err != nil {
			a.logger.Warn("Failed to open browser", slog.String("error", err.Error()))
		}
	}

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
	return nil
}

func shutdown(server *httpserver.Server, fileWatcher *watcher.PollingWatcher, liveReload *services.LiveReloadService, a *app) {
	if err := liveReload.Stop(); err != nil {
		a.logger.Error("Stopping live reload", slog.String("error", err.Error()))
	}
	if err := fileWatcher.Stop(); err != nil {
		a.logger.Error("Stopping watcher", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownTimeout())
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		a.logger.Error("Stopping server", slog.String("error", err.Error()))
	}
}
