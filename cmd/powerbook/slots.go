package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var slotsFormat string

// slotsCmd lists the named slots a document declares in its notes
var slotsCmd = &cobra.Command{
	Use:   "slots <doc.pptx>",
	Short: "List the named slots of a document",
	Long: `List the named slots declared in slide notes. A slide declares slots by
ending its notes with the line

  --- Do not edit below this line ---

followed by one "name<TAB>element" record per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runSlots,
}

// fillCmd fills one slot with text or an image
var fillCmd = &cobra.Command{
	Use:   "fill <doc.pptx> <slot> <text or image>",
	Short: "Fill a named slot with text or an image",
	Long: `Fill a named slot. The value is placed as an image when it names an
existing file, and as an outline otherwise.`,
	Args: cobra.ExactArgs(3),
	RunE: runFill,
}

type slotRow struct {
	Name     string `json:"name"`
	Element  string `json:"element"`
	Slide    int    `json:"slide"`
	Resolved bool   `json:"resolved"`
}

func init() {
	slotsCmd.Flags().StringVar(&slotsFormat, "format", "table", "Output format: table, json")
	fillCmd.Flags().Float64("min-dpi", 0, "Warn about figures below this DPI (overrides config)")

	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(fillCmd)
}

func runSlots(cmd *cobra.Command, args []string) error {
	path := args[0]
	a, err := newApp(cmd, documentDir(path))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if !a.fs.Exists(path) {
		return fmt.Errorf("document not found: %s", path)
	}
	session, err := a.openSession(cmd.Context(), path, false)
	if err != nil {
		return err
	}
	slots, err := session.Slots()
	if err != nil {
		return err
	}

	rows := make([]slotRow, 0, len(slots))
	for _, slot := range slots {
		_, lookupErr := slot.Slide.Element(slot.Element)
		rows = append(rows, slotRow{
			Name:     slot.Name,
			Element:  slot.Element,
			Slide:    slot.SlideIndex + 1,
			Resolved: lookupErr == nil,
		})
	}

	out := cmd.OutOrStdout()
	switch slotsFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table", "":
		if len(rows) == 0 {
			fmt.Fprintln(out, "No slots declared.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLOT\tELEMENT\tSLIDE\tSTATUS")
		for _, r := range rows {
			status := "ok"
			if !r.Resolved {
				status = "missing element"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Name, r.Element, r.Slide, status)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format: %s", slotsFormat)
	}
}

func runFill(cmd *cobra.Command, args []string) error {
	path, name, value := args[0], args[1], args[2]
	a, err := newApp(cmd, documentDir(path))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if !a.fs.Exists(path) {
		return fmt.Errorf("document not found: %s", path)
	}
	ctx := cmd.Context()
	session, err := a.openSession(ctx, path, false)
	if err != nil {
		return err
	}

	report, err := session.FillSlot(ctx, name, session.Builder().Resolve(value))
	if err != nil {
		return err
	}
	if err := a.commit(ctx, session, report); err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), "Filled "+name+" on", report)
	return nil
}
