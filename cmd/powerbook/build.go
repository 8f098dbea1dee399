package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var buildOutput string

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <deck.md>",
	Short: "Build a .pptx document from a markdown deck source",
	Long: `Build reads a markdown deck source and writes a new .pptx document.
Any existing document at the output path is replaced.

Example:
  powerbook build talk.md
  powerbook build talk.md -o out/talk.pptx --template widescreen`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output path (default: source name with .pptx)")
	buildCmd.Flags().StringP("template", "t", "", "Template for the document (overrides config)")
	buildCmd.Flags().String("author", "", "Document author (overrides config)")
	buildCmd.Flags().Float64("min-dpi", 0, "Warn about figures below this DPI (overrides config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	a, err := newApp(cmd, documentDir(sourcePath))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	output := buildOutput
	if output == "" {
		output = defaultOutputPath(sourcePath)
	}

	opts, err := a.sessionOptions(output)
	if err != nil {
		return err
	}
	// The session is saved once at the end
	opts.AutoSave = false

	ctx := cmd.Context()
	session, reports, err := a.composer().Build(ctx, sourcePath, opts)
	if err != nil {
		return fmt.Errorf("building %s: %w", sourcePath, err)
	}
	if err := session.Save(ctx, ""); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	warnings := 0
	for _, report := range reports {
		for _, d := range report.Warnings() {
			warnings++
			fmt.Fprintf(out, "slide %d: %s\n", report.SlideIndex+1, d.Message)
		}
	}
	fmt.Fprintf(out, "Wrote %s (%d slides, %d warnings)\n", session.Path(), session.Deck().SlideCount(), warnings)
	return nil
}

// defaultOutputPath swaps the source extension for .pptx
func defaultOutputPath(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + ".pptx"
}
