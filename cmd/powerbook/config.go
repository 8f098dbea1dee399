package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/powerbook/internal/domain/ports"
	"github.com/fredcamaral/powerbook/internal/domain/services"
)

var configForce bool

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage powerbook configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a powerbook.toml with the default settings",
	Long: `Write a local powerbook.toml holding the default settings to dir (the
current directory by default). Settings in it override the global config for
documents in that directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show [dir]",
	Short: "Print the effective configuration for a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func dirArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	service := newConfigService(cmd, ports.NewRealFileSystem())
	path, err := service.InitLocal(cmd.Context(), dirArg(args), configForce)
	if errors.Is(err, services.ErrConfigExists) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	for _, src := range a.sources {
		if src.Path != "" {
			fmt.Fprintf(out, "# %s: %s\n", src.Layer, src.Path)
		} else {
			fmt.Fprintf(out, "# %s\n", src.Layer)
		}
	}
	fmt.Fprintln(out)

	enc := toml.NewEncoder(out)
	enc.Indent = "  "
	return enc.Encode(a.config)
}
