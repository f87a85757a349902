package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.Outputs) != 1 || cfg.Outputs[0].Name != DefaultOutputName {
		t.Fatalf("expected one default output, got %#v", cfg.Outputs)
	}
	if cfg.Placement.MemoLimit != DefaultMemoLimit {
		t.Fatalf("expected memo_limit %d, got %d", DefaultMemoLimit, cfg.Placement.MemoLimit)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Placement.FallbackSize.Width != DefaultFallbackWidth {
		t.Fatalf("expected default fallback width, got %d", res.Config.Placement.FallbackSize.Width)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Logging.Level != DefaultLogLevel {
		t.Fatalf("expected level %q, got %q", DefaultLogLevel, res.Config.Logging.Level)
	}
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	data := strings.Join([]string{
		"placement:",
		"  fallback_size: {width: 1024, height: 768}",
		"  memo_limit: 0",
		"outputs:",
		"  - {name: DP-1, width: 2560, height: 1440}",
		"  - {name: DP-2, width: 1920, height: 1080}",
		"layers:",
		"  - namespace: waybar",
		"    output: DP-1",
		"    layer: top",
		"    anchor: [top, left, right]",
		"    exclusive_zone: 32",
		"    height: 32",
		"logging:",
		"  level: debug",
		"  format: json",
		"daemon:",
		"  reconcile_interval: 30s",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Placement.FallbackSize != (Size{Width: 1024, Height: 768}) {
		t.Fatalf("unexpected fallback size %#v", cfg.Placement.FallbackSize)
	}
	if cfg.Placement.MemoLimit != 0 {
		t.Fatalf("expected unbounded memo, got %d", cfg.Placement.MemoLimit)
	}
	if len(cfg.Outputs) != 2 || cfg.Outputs[1].Name != "DP-2" {
		t.Fatalf("unexpected outputs %#v", cfg.Outputs)
	}
	if len(cfg.Layers) != 1 || cfg.Layers[0].ExclusiveZone != 32 {
		t.Fatalf("unexpected layers %#v", cfg.Layers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.Daemon.ReconcileInterval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %v", cfg.Daemon.ReconcileInterval)
	}
	if _, ok := cfg.Output("DP-1"); !ok {
		t.Fatalf("expected DP-1 lookup to succeed")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	writeConfig(t, dir, "config.d/10-base.yaml", "placement:\n  memo_limit: 5\n")
	writeConfig(t, dir, "config.d/20-override.yaml", "placement:\n  memo_limit: 6\nlogging:\n  level: warn\n")

	// Main file overrides includes.
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"placement:",
		"  memo_limit: 7",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Placement.MemoLimit != 7 {
		t.Fatalf("expected memo_limit 7, got %d", res.Config.Placement.MemoLimit)
	}
	if res.Config.Logging.Level != "warn" {
		t.Fatalf("expected level from include, got %q", res.Config.Logging.Level)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
	if !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("expected main file last, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	path := writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	// b -> a -> b: a is seen already only after it is merged, so the
	// stack check fires.
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestValidationErrorCarriesSource(t *testing.T) {
	data := strings.Join([]string{
		"outputs:",
		"  - {name: DP-1, width: 0, height: 1080}",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "outputs.0" {
		t.Fatalf("expected path outputs.0, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected source line 2, got %#v", verr.Source)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"fallback size", func(c *Config) { c.Placement.FallbackSize.Width = 0 }, "placement.fallback_size"},
		{"memo limit", func(c *Config) { c.Placement.MemoLimit = -1 }, "placement.memo_limit"},
		{"no outputs", func(c *Config) { c.Outputs = nil }, "outputs"},
		{"duplicate output", func(c *Config) { c.Outputs = append(c.Outputs, c.Outputs[0]) }, "outputs.1.name"},
		{"layer name", func(c *Config) {
			c.Layers = []LayerConfig{{Namespace: "bar", Layer: "middle"}}
		}, "layers.0.layer"},
		{"anchor", func(c *Config) {
			c.Layers = []LayerConfig{{Namespace: "bar", Layer: "top", Anchor: []string{"up"}}}
		}, "layers.0.anchor"},
		{"layer output", func(c *Config) {
			c.Layers = []LayerConfig{{Namespace: "bar", Layer: "top", Output: "DP-9"}}
		}, "layers.0.output"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestValidate_X11ImportAllowsNoOutputs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Outputs = nil
	cfg.X11.ImportOutputs = true
	cfg.Layers = []LayerConfig{{Namespace: "bar", Layer: "top", Output: "eDP-1"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "reconcile_interval: 10s") {
		t.Fatalf("expected duration rendered as string, got:\n%s", data)
	}
	path := writeConfig(t, t.TempDir(), "config.yaml", string(data))
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Outputs[0] != cfg.Outputs[0] {
		t.Fatalf("expected output to survive, got %#v", res.Config.Outputs[0])
	}
}
