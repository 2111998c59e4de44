package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/pkg/model"
)

func (a *app) fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields in the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := a.loadDocument(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			counts := fieldCounts(doc)
			all := doc.AllFields()
			rows := make([][]string, 0, len(all))
			for _, f := range all {
				rows = append(rows, []string{f, strconv.Itoa(counts[f])})
			}
			printTable(w, []string{"FIELD", "PERSONS"}, rows)
			Subtle.Fprintf(w, "\n  %d fields, %d persons\n", len(all), len(doc.Persons))
			return nil
		},
	}
}

func fieldCounts(doc *model.GraphDocument) map[string]int {
	counts := make(map[string]int)
	for _, p := range doc.Persons {
		for _, f := range p.Fields {
			counts[f]++
		}
	}
	return counts
}

