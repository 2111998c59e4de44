package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/DipokalLab/intellect/internal/datasource"
	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/store"
	"github.com/DipokalLab/intellect/pkg/ui"
	"github.com/DipokalLab/intellect/pkg/watcher"
)

// autoCloseEnv quits the TUI after the given number of milliseconds.
const autoCloseEnv = "INTELLECT_TUI_AUTOCLOSE_MS"

func (a *app) tuiCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the graph in the terminal (default)",
		Long: `Open the interactive timeline. Pan with the arrow keys or hjkl, zoom
with + and -, tab through nodes and press enter to inspect one.

  f  pick fields      /  search persons    c  connect mode
  0  fit view         ?  credits           q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("watch") {
				a.cfg.Data.Watch = watch
			}
			return a.runTUI(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload when the data file changes")
	return cmd
}

func (a *app) runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("the interactive view needs a terminal; try 'intellect snapshot' instead")
	}

	eo := a.engineOptions()
	if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 2 {
		eo.Width = float64(w * ui.CellWidth)
		eo.Height = float64((h - 2) * ui.CellHeight)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := store.New()
	if a.cfg.Data.Watch {
		if r := a.startReloader(st); r != nil {
			defer r.Stop()
		}
	}

	load := func(ctx context.Context) (*model.GraphDocument, error) {
		doc, _, err := a.loadDocument(ctx, nil)
		return doc, err
	}

	m := ui.NewModel(st, ui.Options{
		Config:  a.cfg,
		Load:    load,
		Context: ctx,
		Engine:  &eo,
	})
	return runTUIProgram(m)
}

// startReloader watches a local JSON source and feeds changes into st.
// Other source types are not watched.
func (a *app) startReloader(st *store.Store) *watcher.Reloader {
	src := datasource.Detect(a.cfg.Data.Source)
	if info, err := os.Stat(src.Location); err == nil && info.IsDir() {
		debug.Log("cli: not watching directory %s", src.Location)
		return nil
	}
	if src.Type != datasource.SourceTypeJSON {
		debug.Log("cli: not watching %s source %s", src.Type, src.Location)
		return nil
	}
	r, err := watcher.NewReloader(src.Location, st, a.parseOptions(nil))
	if err == nil {
		err = r.Start()
	}
	if err != nil {
		debug.Log("cli: watch %s: %v", src.Location, err)
		return nil
	}
	return r
}

// runTUIProgram runs the program and quits it on SIGINT or SIGTERM, killing
// it if it has not exited after a grace period.
func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}
		p.Quit()
		select {
		case <-runDone:
		case <-sigCh:
			p.Kill()
		case <-time.After(5 * time.Second):
			p.Kill()
		}
	}()

	if v := os.Getenv(autoCloseEnv); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				select {
				case <-runDone:
				case <-time.After(time.Duration(ms) * time.Millisecond):
					p.Quit()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run terminal view: %w", err)
	}
	return nil
}
