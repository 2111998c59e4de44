package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/pkg/export"
	"github.com/DipokalLab/intellect/pkg/hooks"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/ui"
)

func (a *app) snapshotCmd() *cobra.Command {
	var (
		fields   string
		format   string
		title    string
		width    int
		height   int
		maxTicks int
		stats    bool
		pick     bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot <output>",
		Short: "Settle the layout and write an SVG or PNG",
		Long: `Run the layout to rest under a field selection, fit the view, and
render the result. The format follows the file extension unless --format
is given.

  intellect snapshot graph.svg
  intellect snapshot graph.png --fields Physics,Chemistry --width 1600
  intellect snapshot graph.svg --pick --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if stats {
				metrics.SetEnabled(true)
				metrics.ResetAll()
			}

			doc, src, err := a.loadDocument(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			selected := a.fieldsFlag(cmd, fields)
			if pick {
				pre := make(map[string]bool, len(selected))
				for _, f := range selected {
					pre[f] = true
				}
				if len(pre) == 0 {
					for _, f := range doc.AllFields() {
						pre[f] = true
					}
				}
				if selected, err = ui.PickFields(doc.AllFields(), pre); err != nil {
					return fmt.Errorf("pick fields: %w", err)
				}
				if len(selected) == 0 {
					return export.ErrNoNodes
				}
			}

			var out string
			format, out, err = export.ResolveFormat(format, args[0])
			if err != nil {
				return err
			}

			eo := a.engineOptions()
			if title == "" {
				title = src.Location
			}
			ec := hooks.ExportContext{
				ExportPath:   out,
				ExportFormat: format,
				NodeCount:    doc.NodeCount(),
				Fields:       selected,
			}
			err = a.runExport(cmd.ErrOrStderr(), ec, func() error {
				return export.SaveSnapshot(doc, export.SnapshotOptions{
					Path:     out,
					Format:   format,
					Title:    title,
					Fields:   selected,
					Width:    width,
					Height:   height,
					Engine:   &eo,
					MaxTicks: maxTicks,
				})
			})
			if err != nil {
				return err
			}
			Good.Fprintf(w, "  Wrote %s\n", out)

			if stats {
				printTimingStats(w)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&fields, "fields", "", "Comma-separated fields to include (default: config, else all)")
	f.StringVar(&format, "format", "", "Output format: svg or png")
	f.StringVar(&title, "title", "", "Title for the summary block (default: source)")
	f.IntVar(&width, "width", 0, "Viewport width in pixels")
	f.IntVar(&height, "height", 0, "Viewport height in pixels")
	f.IntVar(&maxTicks, "max-ticks", export.DefaultMaxTicks, "Upper bound on simulation ticks")
	f.BoolVar(&stats, "stats", false, "Print timing metrics after rendering")
	f.BoolVar(&pick, "pick", false, "Choose fields interactively")
	return cmd
}

func printTimingStats(w io.Writer) {
	all := metrics.AllTimingStats()
	if len(all) == 0 {
		Subtle.Fprintln(w, "  no timing data recorded")
		return
	}
	fmt.Fprintln(w)
	rows := make([][]string, 0, len(all))
	for _, s := range all {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.2f", s.TotalMs),
			fmt.Sprintf("%.3f", s.AvgMs),
			fmt.Sprintf("%.3f", s.MaxMs),
		})
	}
	printTable(w, []string{"METRIC", "COUNT", "TOTAL MS", "AVG MS", "MAX MS"}, rows)
}
