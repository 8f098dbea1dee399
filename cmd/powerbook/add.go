package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/powerbook/internal/adapters/secondary/figure"
	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/services"
)

var (
	chartSheet string
	chartColor string
	chartDPI   float64
)

// addCmd groups the slide-adding commands
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a slide to a .pptx document",
	Long: `Append a slide to a .pptx document. The document is created when it
does not exist yet. Body text is an indented outline: every 4 spaces of
indentation is one bullet level and "- " or "* " markers are dropped.`,
}

var addTitleCmd = &cobra.Command{
	Use:   "title <doc.pptx> <title> [subtitle]",
	Short: "Add a title slide",
	Args:  cobra.RangeArgs(2, 3),
	RunE: withSession(func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error) {
		subtitle := ""
		if len(args) > 2 {
			subtitle = args[2]
		}
		return s.AddTitleSlide(ctx, args[1], subtitle)
	}),
}

var addTextCmd = &cobra.Command{
	Use:   "text <doc.pptx> <title> <outline>",
	Short: "Add a title and body slide",
	Args:  cobra.ExactArgs(3),
	RunE: withSession(func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error) {
		return s.AddTextSlide(ctx, args[1], args[2])
	}),
}

var addTwoCmd = &cobra.Command{
	Use:   "two <doc.pptx> <title> <left outline> <right outline or image>",
	Short: "Add a two-content slide",
	Long: `Add a two-content slide. The right column is an image when the value
names an existing file, and an outline otherwise.`,
	Args: cobra.ExactArgs(4),
	RunE: withSession(func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error) {
		return s.AddTwoContentSlide(ctx, args[1], args[2], s.Builder().Resolve(args[3]))
	}),
}

var addImageCmd = &cobra.Command{
	Use:   "image <doc.pptx> <title> <image>",
	Short: "Add an image slide",
	Args:  cobra.ExactArgs(3),
	RunE: withSession(func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error) {
		return s.AddImageSlide(ctx, args[1], entities.PathPayload(args[2]))
	}),
}

var addChartCmd = &cobra.Command{
	Use:   "chart <doc.pptx> <title> <data.xlsx>",
	Short: "Add a bar chart slide from a spreadsheet",
	Long: `Add an image slide holding a bar chart. Labels are read from column A
and values from column B of the worksheet; rows without a numeric value are
skipped.`,
	Args: cobra.ExactArgs(3),
	RunE: withSession(func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error) {
		series, err := figure.LoadSeriesXLSX(args[2], chartSheet)
		if err != nil {
			return nil, err
		}
		chart, err := figure.BarChart(args[1], series.Labels, series.Values, figure.BarOptions{
			DPI:   chartDPI,
			Color: chartColor,
		})
		if err != nil {
			return nil, fmt.Errorf("drawing chart: %w", err)
		}
		return s.AddImageSlide(ctx, args[1], entities.FigurePayload(chart))
	}),
}

var addNotesCmd = &cobra.Command{
	Use:   "notes <doc.pptx> <slide number> <notes>",
	Short: "Replace the speaker notes of a slide",
	Args:  cobra.ExactArgs(3),
	RunE: withSession(func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error) {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid slide number %q", args[1])
		}
		return s.SetNotes(ctx, n-1, args[2])
	}),
}

func init() {
	for _, c := range []*cobra.Command{addTitleCmd, addTextCmd, addTwoCmd, addImageCmd, addChartCmd} {
		c.Flags().Bool("new", false, "Start a new document even if the file exists")
		c.Flags().String("notes", "", "Speaker notes for the new slide")
		c.Flags().StringP("template", "t", "", "Template for new documents (overrides config)")
		c.Flags().Bool("autosave", false, "Save after every change (overrides config)")
		c.Flags().Float64("min-dpi", 0, "Warn about figures below this DPI (overrides config)")
		addCmd.AddCommand(c)
	}
	addCmd.AddCommand(addNotesCmd)

	addChartCmd.Flags().StringVar(&chartSheet, "sheet", "", "Worksheet name (default: first sheet)")
	addChartCmd.Flags().StringVar(&chartColor, "color", "", "Bar color as hex RGB")
	addChartCmd.Flags().Float64Var(&chartDPI, "dpi", figure.DefaultDPI, "Chart resolution")

	rootCmd.AddCommand(addCmd)
}

type sessionOp func(ctx context.Context, s *services.Session, args []string) (*entities.Report, error)

// withSession opens the document named by args[0], applies op and saves
func withSession(op sessionOp) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path := args[0]
		a, err := newApp(cmd, documentDir(path))
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := cmd.Context()
		overwrite, _ := cmd.Flags().GetBool("new")
		notes, _ := cmd.Flags().GetString("notes")
		session, err := a.openSession(ctx, path, overwrite)
		if err != nil {
			return err
		}

		report, err := op(ctx, session, args)
		if err != nil {
			return err
		}
		if notes != "" {
			notesReport, err := session.SetNotes(ctx, report.SlideIndex, notes)
			if err != nil {
				return err
			}
			report.Saved = notesReport.Saved
		}
		if err := a.commit(ctx, session, report); err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), "Updated", report)
		return nil
	}
}
