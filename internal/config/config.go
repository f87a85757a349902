package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/wlshell/internal/desktop"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid configuration")

// Default values.
const (
	DefaultFallbackWidth     = 800
	DefaultFallbackHeight    = 800
	DefaultMemoLimit         = 256
	DefaultOutputName        = "HEADLESS-1"
	DefaultOutputWidth       = 1920
	DefaultOutputHeight      = 1080
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "auto"
	DefaultReconcileInterval = 10 * time.Second
)

// Size is a width/height pair.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PlacementConfig tunes the window placement engine.
type PlacementConfig struct {
	FallbackSize Size `yaml:"fallback_size"`
	// MemoLimit bounds the cached spiral cells. Zero keeps all of them.
	MemoLimit int `yaml:"memo_limit"`
}

// OutputConfig describes a headless output created at start-up.
type OutputConfig struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// LayerConfig describes a static layer surface, e.g. a panel reserving an
// edge of an output.
type LayerConfig struct {
	Namespace     string   `yaml:"namespace"`
	Output        string   `yaml:"output,omitempty"`
	Layer         string   `yaml:"layer"`
	Anchor        []string `yaml:"anchor,omitempty"`
	ExclusiveZone int      `yaml:"exclusive_zone,omitempty"`
	Width         int      `yaml:"width,omitempty"`
	Height        int      `yaml:"height,omitempty"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IPCConfig configures the control socket.
type IPCConfig struct {
	// Socket overrides the runtime-dir socket path.
	Socket string `yaml:"socket,omitempty"`
}

// X11Config controls importing the output layout from a host X server.
type X11Config struct {
	ImportOutputs bool   `yaml:"import_outputs"`
	Display       string `yaml:"display,omitempty"`
}

// DaemonConfig tunes the background reconciler.
type DaemonConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// Config is the effective configuration.
type Config struct {
	Placement PlacementConfig `yaml:"placement"`
	Outputs   []OutputConfig  `yaml:"outputs"`
	Layers    []LayerConfig   `yaml:"layers,omitempty"`
	Logging   LoggingConfig   `yaml:"logging"`
	IPC       IPCConfig       `yaml:"ipc"`
	X11       X11Config       `yaml:"x11"`
	Daemon    DaemonConfig    `yaml:"daemon"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Placement: PlacementConfig{
			FallbackSize: Size{Width: DefaultFallbackWidth, Height: DefaultFallbackHeight},
			MemoLimit:    DefaultMemoLimit,
		},
		Outputs: []OutputConfig{{
			Name:   DefaultOutputName,
			Width:  DefaultOutputWidth,
			Height: DefaultOutputHeight,
		}},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Daemon: DaemonConfig{
			ReconcileInterval: DefaultReconcileInterval,
		},
	}
}

// ValidationError points at the offending key.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Known() {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

var anchorNames = map[string]bool{"top": true, "bottom": true, "left": true, "right": true}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if c.Placement.FallbackSize.Width <= 0 || c.Placement.FallbackSize.Height <= 0 {
		return &ValidationError{Path: "placement.fallback_size", Err: fmt.Errorf("fallback_size must be positive")}
	}
	if c.Placement.MemoLimit < 0 {
		return &ValidationError{Path: "placement.memo_limit", Err: fmt.Errorf("memo_limit must be >= 0")}
	}

	names := make(map[string]bool, len(c.Outputs))
	for i, o := range c.Outputs {
		path := fmt.Sprintf("outputs.%d", i)
		if strings.TrimSpace(o.Name) == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("output name is required")}
		}
		if names[o.Name] {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate output %q", o.Name)}
		}
		names[o.Name] = true
		if o.Width <= 0 || o.Height <= 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("output size must be positive")}
		}
	}
	if len(c.Outputs) == 0 && !c.X11.ImportOutputs {
		return &ValidationError{Path: "outputs", Err: fmt.Errorf("outputs must not be empty unless x11.import_outputs is set")}
	}

	for i, l := range c.Layers {
		path := fmt.Sprintf("layers.%d", i)
		if strings.TrimSpace(l.Namespace) == "" {
			return &ValidationError{Path: path + ".namespace", Err: fmt.Errorf("namespace is required")}
		}
		if _, ok := desktop.ParseLayer(l.Layer); !ok {
			return &ValidationError{Path: path + ".layer", Err: fmt.Errorf("layer must be one of: background, bottom, top, overlay")}
		}
		for _, a := range l.Anchor {
			if !anchorNames[a] {
				return &ValidationError{Path: path + ".anchor", Err: fmt.Errorf("unknown anchor %q", a)}
			}
		}
		if l.Width < 0 || l.Height < 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("layer size must be >= 0")}
		}
		if l.ExclusiveZone < -1 {
			return &ValidationError{Path: path + ".exclusive_zone", Err: fmt.Errorf("exclusive_zone must be >= -1")}
		}
		if l.Output != "" && !c.X11.ImportOutputs && !names[l.Output] {
			return &ValidationError{Path: path + ".output", Err: fmt.Errorf("unknown output %q", l.Output)}
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "auto", "text", "json", "logfmt":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: auto, text, json, logfmt")}
	}
	if c.Daemon.ReconcileInterval < 0 {
		return &ValidationError{Path: "daemon.reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	return nil
}

// Output returns the configured output with the given name.
func (c *Config) Output(name string) (OutputConfig, bool) {
	for _, o := range c.Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return OutputConfig{}, false
}
