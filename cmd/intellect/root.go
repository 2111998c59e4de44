package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/internal/datasource"
	"github.com/DipokalLab/intellect/pkg/config"
	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/engine"
	"github.com/DipokalLab/intellect/pkg/loader"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/version"
)

// app holds state shared by every subcommand.
type app struct {
	configPath string
	source     string
	debug      bool
	noHooks    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "intellect",
		Short: "intellect · an interactive timeline of scholars and their achievements",
		Long: Brand.Sprint("intellect") + " lays out persons and achievements on a time axis\n" +
			Subtle.Sprint("Explore in the terminal, export snapshots, or serve the graph over HTTP"),
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetVersionTemplate("intellect {{ .Version }}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	pf.StringVarP(&a.source, "source", "s", "", "Graph document: JSON file, SQLite export, directory, or http(s) URL")
	pf.BoolVar(&a.debug, "debug", false, "Write debug logging to stderr")
	pf.BoolVar(&a.noHooks, "no-hooks", false, "Skip export hooks from .intellect/hooks.yaml")

	root.AddCommand(
		a.tuiCmd(),
		a.buildCmd(),
		a.snapshotCmd(),
		a.exportCmd(),
		a.serveCmd(),
		a.diffCmd(),
		a.fieldsCmd(),
	)
	return root
}

// setup loads the config file and applies global flags.
func (a *app) setup() error {
	if a.debug {
		debug.SetEnabled(true)
	}
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg.Data.Source = a.resolveSource()
	debug.Log("cli: source %s", a.cfg.Data.Source)
	return nil
}

// resolveSource applies precedence: --source, then INTELLECT_DATA, then config.
func (a *app) resolveSource() string {
	if a.source != "" {
		return a.source
	}
	return loader.ResolvePath(a.cfg.Data.Source)
}

func (a *app) fetchOptions() loader.FetchOptions {
	f := a.cfg.Fetch
	return loader.FetchOptions{
		RetryMax: f.RetryMax,
		WaitMin:  f.WaitMin,
		WaitMax:  f.WaitMax,
		Timeout:  f.Timeout,
	}
}

// parseOptions reports dropped records on w. A nil w leaves them to the
// debug log.
func (a *app) parseOptions(w io.Writer) loader.ParseOptions {
	if w == nil {
		return loader.ParseOptions{}
	}
	return loader.ParseOptions{
		WarningHandler: func(msg string) {
			Warn.Fprintf(w, "  warning: %s\n", msg)
		},
	}
}

func (a *app) engineOptions() engine.Options {
	return engine.OptionsFromConfig(a.cfg)
}

// loadDocument reads the configured source.
func (a *app) loadDocument(ctx context.Context, warn io.Writer) (*model.GraphDocument, datasource.Source, error) {
	return a.loadFrom(ctx, a.cfg.Data.Source, warn)
}

// loadFrom reads one location. A directory is searched for the freshest
// valid document.
func (a *app) loadFrom(ctx context.Context, location string, warn io.Writer) (*model.GraphDocument, datasource.Source, error) {
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return datasource.LoadDir(location, a.parseOptions(warn))
	}
	return datasource.Load(ctx, location, a.fetchOptions(), a.parseOptions(warn))
}

// fieldsFlag returns the explicit field selection, or the configured
// default when the flag was not given.
func (a *app) fieldsFlag(cmd *cobra.Command, raw string) []string {
	if cmd.Flags().Changed("fields") {
		return model.ParseFields(raw)
	}
	return a.cfg.UI.DefaultFields
}
