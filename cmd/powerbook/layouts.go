package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// layoutsCmd prints the layouts and placeholders of the built-in templates
var layoutsCmd = &cobra.Command{
	Use:   "layouts [template]",
	Short: "Show template layouts and their placeholders",
	Long: `Show the layouts of a built-in template with the placeholder index,
type and name of every placeholder. Element names shown here are the ones
slot records refer to.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) error {
	names := entities.TemplateNames()
	if len(args) == 1 {
		names = []string{args[0]}
	}

	out := cmd.OutOrStdout()
	title := cases.Title(language.English)
	for i, name := range names {
		tmpl, err := entities.TemplateByName(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%.2f x %.2f in)\n", title.String(tmpl.Name),
			float64(tmpl.SlideWidth)/float64(entities.EMUPerInch),
			float64(tmpl.SlideHeight)/float64(entities.EMUPerInch))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, layout := range tmpl.Layouts {
			fmt.Fprintf(w, "  %d\t%s\t\t\n", layout.Index, layout.Name)
			for _, ph := range layout.Placeholders {
				fmt.Fprintf(w, "  \t  idx=%d\t%s\t%q\n", ph.Index, ph.Type, ph.Name)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
