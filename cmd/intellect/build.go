package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/loader"
)

func (a *app) buildCmd() *cobra.Command {
	var (
		out          string
		personsDir   string
		achievements string
	)

	cmd := &cobra.Command{
		Use:   "build [root]",
		Short: "Assemble graph-data.json from YAML sources",
		Long: `Read data/persons/*.yml and data/achievements.yml under root (default
the current directory) and write the combined graph document.

  intellect build
  intellect build ./site --out ./site/public/graph-data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			debug.Section("build " + root)
			opts := loader.DefaultBuildOptions(root)
			if personsDir != "" {
				opts.PersonsDir = personsDir
			}
			if achievements != "" {
				opts.AchievementsFile = achievements
			}
			w := cmd.OutOrStdout()
			opts.WarningHandler = func(msg string) {
				Warn.Fprintf(cmd.ErrOrStderr(), "  warning: %s\n", msg)
			}

			res, err := loader.Build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(root, loader.DefaultDataFile)
			}
			if err := loader.WriteDocument(out, res.Document); err != nil {
				return err
			}

			doc := res.Document
			Good.Fprintf(w, "  Wrote %s\n", out)
			fmt.Fprintf(w, "  %d persons, %d achievements, %d edges\n",
				len(doc.Persons), len(doc.Achievements), len(doc.Edges))
			if n := len(res.Skipped); n > 0 {
				Warn.Fprintf(w, "  %d records skipped\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default <root>/public/graph-data.json)")
	cmd.Flags().StringVar(&personsDir, "persons", "", "Directory of person YAML files")
	cmd.Flags().StringVar(&achievements, "achievements", "", "Achievements YAML file")
	return cmd
}
