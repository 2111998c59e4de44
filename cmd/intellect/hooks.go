package main

import (
	"fmt"
	"io"
	"time"

	"github.com/DipokalLab/intellect/pkg/hooks"
)

// runExport wraps write with the pre- and post-export hooks configured in
// the working directory. With --no-hooks or no hooks file, write runs alone.
func (a *app) runExport(w io.Writer, ec hooks.ExportContext, write func() error) error {
	if ec.Timestamp.IsZero() {
		ec.Timestamp = time.Now()
	}
	// exec is nil when hooks are disabled or none are configured.
	exec, err := hooks.RunHooks("", ec, a.noHooks)
	if err != nil {
		return fmt.Errorf("load hooks: %w", err)
	}
	if exec != nil {
		if err := exec.RunPreExport(); err != nil {
			printHookSummary(w, exec)
			return err
		}
	}
	if err := write(); err != nil {
		return err
	}
	if exec == nil {
		return nil
	}
	err = exec.RunPostExport()
	printHookSummary(w, exec)
	return err
}

func printHookSummary(w io.Writer, exec *hooks.Executor) {
	s := exec.Summary()
	if s == "" {
		return
	}
	for _, r := range exec.Results() {
		if !r.Success {
			Warn.Fprintf(w, "  %s\n", s)
			return
		}
	}
	Subtle.Fprintf(w, "  %s\n", s)
}
