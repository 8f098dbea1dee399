package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.Version=... -X main.BuildDate=..."
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "powerbook",
	Short: "Build PowerPoint decks from outlines, images and figures",
	Long: `powerbook creates and edits .pptx documents. Slides are added from
indented text outlines, image files and rendered charts; whole decks can be
built from a markdown source and previewed live in the browser.`,
	Version:       version(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}} (built " + BuildDate + ")\n")

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.StringP("config", "c", "", "Global config file (default: ~/.config/powerbook/config.toml)")
}

// version falls back to the module version for go install builds
func version() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "powerbook:", err)
		os.Exit(1)
	}
}
