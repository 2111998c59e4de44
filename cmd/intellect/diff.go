package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/internal/datasource"
	"github.com/DipokalLab/intellect/pkg/model"
)

var errSourcesDiffer = errors.New("sources differ")

func (a *app) diffCmd() *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "diff <a> [b]",
		Short: "Compare two graph documents",
		Long: `Report nodes present in only one document, achievement years that
disagree, and edges that differ. With one argument the configured source
is compared against it.

  intellect diff public/graph-data.json graph.sqlite3
  intellect diff https://example.org/graph-data.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locA, locB := a.cfg.Data.Source, args[0]
			if len(args) == 2 {
				locA, locB = args[0], args[1]
			}
			docA, srcA, err := a.loadFrom(cmd.Context(), locA, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("load %s: %w", locA, err)
			}
			docB, srcB, err := a.loadFrom(cmd.Context(), locB, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("load %s: %w", locB, err)
			}

			d := datasource.DiffDocuments(docA, docB, srcA.Location, srcB.Location)
			printDiff(cmd.OutOrStdout(), d)
			if exitCode && d.HasInconsistencies() {
				return errSourcesDiffer
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Fail when the documents differ")
	return cmd
}

func printDiff(w io.Writer, d datasource.DocumentDiff) {
	banner(w, "diff")
	fmt.Fprintf(w, "  A: %s (%d nodes)\n", d.SourceA, d.CountA)
	fmt.Fprintf(w, "  B: %s (%d nodes)\n\n", d.SourceB, d.CountB)
	if !d.HasInconsistencies() {
		Good.Fprintf(w, "  %s\n", d.Summary())
		return
	}
	Warn.Fprintf(w, "  %s\n\n", d.Summary())

	var rows [][]string
	for _, id := range d.MissingInB {
		rows = append(rows, []string{"only in A", id, ""})
	}
	for _, id := range d.MissingInA {
		rows = append(rows, []string{"only in B", id, ""})
	}
	for _, y := range d.YearMismatch {
		rows = append(rows, []string{"year", y.ID, model.FormatYear(y.YearA) + " vs " + model.FormatYear(y.YearB)})
	}
	for _, k := range d.EdgesOnlyInA {
		rows = append(rows, []string{"edge only in A", k, ""})
	}
	for _, k := range d.EdgesOnlyInB {
		rows = append(rows, []string{"edge only in B", k, ""})
	}
	printTable(w, []string{"KIND", "ID", "DETAIL"}, rows)
}
