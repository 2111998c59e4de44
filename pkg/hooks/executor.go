package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/DipokalLab/intellect/pkg/debug"
)

// waitDelay bounds how long a killed hook may hold its output pipes open.
const waitDelay = 500 * time.Millisecond

// Result records one hook run.
type Result struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Error    error
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs the hooks of one export.
type Executor struct {
	config  *Config
	ctx     ExportContext
	results []Result
}

// NewExecutor prepares config's hooks for the export described by ec.
func NewExecutor(config *Config, ec ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, ctx: ec}
}

// RunPreExport runs pre-export hooks in order and stops at the first
// failure whose policy is "fail".
func (e *Executor) RunPreExport() error {
	for _, hook := range e.config.Hooks.PreExport {
		r := e.run(hook, PreExport)
		if !r.Success && hook.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %q failed: %w", hook.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook. The output already exists, so
// a failure never stops later hooks; the first "fail" failure is returned.
func (e *Executor) RunPostExport() error {
	var first error
	for _, hook := range e.config.Hooks.PostExport {
		r := e.run(hook, PostExport)
		if !r.Success && hook.OnError == OnErrorFail && first == nil {
			first = fmt.Errorf("post-export hook %q failed: %w", hook.Name, r.Error)
		}
	}
	return first
}

func (e *Executor) run(hook Hook, phase HookPhase) Result {
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", hook.Command)
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), e.ctx.ToEnv()...)
	for k, v := range hook.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     hook,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v", timeout)
		}
		r.Error = err
	}
	debug.Log("hooks: %s %s ok=%v in %v", phase, hook.Name, r.Success, r.Duration)
	e.results = append(e.results, r)
	return r
}

// Results returns every run so far, in order.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary describes the runs, with failure details.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	ok, failed := 0, 0
	for _, r := range e.results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hooks: %d succeeded, %d failed", ok, failed)
	for _, r := range e.results {
		if r.Success {
			continue
		}
		fmt.Fprintf(&sb, "\n  ✗ %s (%s): %v", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "\n    stderr: %s", truncate(r.Stderr, 200))
		}
	}
	return sb.String()
}

// RunHooks loads hooks for projectDir and returns an executor for ec.
// It returns a nil *Executor and a nil error when noHooks is set or the
// hooks file configures nothing; callers skip the hook phases in that case.
func RunHooks(projectDir string, ec ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	l := NewLoader(WithProjectDir(projectDir))
	if err := l.Load(); err != nil {
		return nil, err
	}
	for _, w := range l.Warnings() {
		debug.Log("hooks: %s", w)
	}
	if !l.HasHooks() {
		return nil, nil
	}
	debug.Log("hooks: %d pre-export, %d post-export", len(l.GetHooks(PreExport)), len(l.GetHooks(PostExport)))
	return NewExecutor(l.Config(), ec), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
