package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/pkg/export"
	"github.com/DipokalLab/intellect/pkg/hooks"
	"github.com/DipokalLab/intellect/pkg/render"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		fields   string
		noLayout bool
		maxTicks int
	)

	cmd := &cobra.Command{
		Use:   "export <output.sqlite3>",
		Short: "Write the document and settled positions to SQLite",
		Long: `Export persons, achievements, edges and, unless --no-layout is given,
the settled node positions into a single SQLite file. The export can be
read back with --source.

  intellect export graph.sqlite3
  intellect export graph.sqlite3 --fields Physics --no-layout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			doc, _, err := a.loadDocument(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			selected := a.fieldsFlag(cmd, fields)

			var frame *render.Frame
			if !noLayout {
				f, err := export.Settle(doc, selected, a.engineOptions(), maxTicks)
				if err != nil {
					return fmt.Errorf("settle layout: %w", err)
				}
				frame = &f
			}
			ec := hooks.ExportContext{
				ExportPath:   args[0],
				ExportFormat: "sqlite",
				NodeCount:    doc.NodeCount(),
				Fields:       selected,
			}
			err = a.runExport(cmd.ErrOrStderr(), ec, func() error {
				return export.NewSQLiteExporter(doc, frame, selected).Export(args[0])
			})
			if err != nil {
				return err
			}

			Good.Fprintf(w, "  Wrote %s\n", args[0])
			fmt.Fprintf(w, "  %d nodes, %d edges", doc.NodeCount(), len(doc.Edges))
			if frame != nil {
				fmt.Fprintf(w, ", %d positions", len(frame.Nodes))
			}
			fmt.Fprintln(w)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&fields, "fields", "", "Comma-separated fields to lay out (default: config, else all)")
	f.BoolVar(&noLayout, "no-layout", false, "Skip the layout and write the document only")
	f.IntVar(&maxTicks, "max-ticks", export.DefaultMaxTicks, "Upper bound on simulation ticks")
	return cmd
}
