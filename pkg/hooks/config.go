// Package hooks runs user commands around snapshot and SQLite exports.
// Hooks are configured in .intellect/hooks.yaml under the working
// directory:
//
//	hooks:
//	  pre-export:
//	    - name: check-data
//	      command: test -s public/graph-data.json
//	  post-export:
//	    - name: publish
//	      command: cp "$INTELLECT_EXPORT_PATH" site/static/
//	      timeout: 10s
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase says when a hook runs.
type HookPhase string

const (
	// PreExport runs before anything is written. Failure cancels the export.
	PreExport HookPhase = "pre-export"
	// PostExport runs after the output file is written.
	PostExport HookPhase = "post-export"
)

// Error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"` // Run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"` // Values are expanded against the environment
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Config is the hooks.yaml document.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// HooksByPhase groups hooks by phase, in run order.
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// ExportContext describes the export to the hook through its environment.
type ExportContext struct {
	ExportPath   string    // INTELLECT_EXPORT_PATH
	ExportFormat string    // INTELLECT_EXPORT_FORMAT: svg, png or sqlite
	NodeCount    int       // INTELLECT_NODE_COUNT: nodes in the source document
	Fields       []string  // INTELLECT_FIELDS: comma-separated selection, empty for all
	Timestamp    time.Time // INTELLECT_TIMESTAMP (RFC3339)
}

// ToEnv renders the context as environment assignments.
func (c ExportContext) ToEnv() []string {
	return []string{
		"INTELLECT_EXPORT_PATH=" + c.ExportPath,
		"INTELLECT_EXPORT_FORMAT=" + c.ExportFormat,
		fmt.Sprintf("INTELLECT_NODE_COUNT=%d", c.NodeCount),
		"INTELLECT_FIELDS=" + strings.Join(c.Fields, ","),
		"INTELLECT_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// DefaultTimeout bounds a hook without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// ConfigPath returns the hooks file location under projectDir.
func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ".intellect", "hooks.yaml")
}

// Loader reads and normalises hooks.yaml.
type Loader struct {
	projectDir string
	config     *Config
	warnings   []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithProjectDir sets the directory holding .intellect/ (default: cwd).
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.projectDir = dir
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.projectDir == "" {
		l.projectDir, _ = os.Getwd()
	}
	return l
}

// Load reads the hooks file. A missing file configures no hooks.
func (l *Loader) Load() error {
	path := ConfigPath(l.projectDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.config = &Config{}
			return nil
		}
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Hooks.PreExport, l.warnings = normalizeHooks(cfg.Hooks.PreExport, PreExport, l.warnings)
	cfg.Hooks.PostExport, l.warnings = normalizeHooks(cfg.Hooks.PostExport, PostExport, l.warnings)
	l.config = &cfg
	return nil
}

// normalizeHooks fills defaults and drops hooks without a command.
func normalizeHooks(hooks []Hook, phase HookPhase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		if hook.OnError == "" {
			hook.OnError = OnErrorContinue
			if phase == PreExport {
				hook.OnError = OnErrorFail
			}
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// Config returns the loaded configuration, empty before Load.
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks reports whether any hook is configured.
func (l *Loader) HasHooks() bool {
	return l.config != nil && len(l.config.Hooks.PreExport)+len(l.config.Hooks.PostExport) > 0
}

// GetHooks returns the hooks of one phase.
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	if l.config == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return l.config.Hooks.PreExport
	case PostExport:
		return l.config.Hooks.PostExport
	}
	return nil
}

// Warnings returns problems found while loading.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// UnmarshalYAML accepts timeouts as durations ("10s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}
	h.Name = dto.Name
	h.Command = dto.Command
	h.Env = dto.Env
	h.OnError = dto.OnError

	if dto.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(dto.Timeout)
	if err == nil {
		h.Timeout = d
		return nil
	}
	var seconds float64
	if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr != nil {
		return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
	}
	h.Timeout = time.Duration(seconds * float64(time.Second))
	return nil
}
