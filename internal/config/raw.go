package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawPlacement struct {
	FallbackSize *RawSize `yaml:"fallback_size"`
	MemoLimit    *int     `yaml:"memo_limit"`
}

type RawLogging struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type RawIPC struct {
	Socket *string `yaml:"socket"`
}

type RawX11 struct {
	ImportOutputs *bool   `yaml:"import_outputs"`
	Display       *string `yaml:"display"`
}

type RawDaemon struct {
	ReconcileInterval *time.Duration `yaml:"reconcile_interval"`
}

// RawConfig is one config file as written. Nil means "not set"; lists
// replace rather than append.
type RawConfig struct {
	Include   IncludeList    `yaml:"include"`
	Placement *RawPlacement  `yaml:"placement"`
	Outputs   []OutputConfig `yaml:"outputs"`
	Layers    []LayerConfig  `yaml:"layers"`
	Logging   *RawLogging    `yaml:"logging"`
	IPC       *RawIPC        `yaml:"ipc"`
	X11       *RawX11        `yaml:"x11"`
	Daemon    *RawDaemon     `yaml:"daemon"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Placement != nil {
		p := RawPlacement{}
		if out.Placement != nil {
			p = *out.Placement
		}
		if overlay.Placement.FallbackSize != nil {
			s := RawSize{}
			if p.FallbackSize != nil {
				s = *p.FallbackSize
			}
			if overlay.Placement.FallbackSize.Width != nil {
				s.Width = overlay.Placement.FallbackSize.Width
			}
			if overlay.Placement.FallbackSize.Height != nil {
				s.Height = overlay.Placement.FallbackSize.Height
			}
			p.FallbackSize = &s
		}
		if overlay.Placement.MemoLimit != nil {
			p.MemoLimit = overlay.Placement.MemoLimit
		}
		out.Placement = &p
	}
	if overlay.Outputs != nil {
		out.Outputs = overlay.Outputs
	}
	if overlay.Layers != nil {
		out.Layers = overlay.Layers
	}
	if overlay.Logging != nil {
		l := RawLogging{}
		if out.Logging != nil {
			l = *out.Logging
		}
		if overlay.Logging.Level != nil {
			l.Level = overlay.Logging.Level
		}
		if overlay.Logging.Format != nil {
			l.Format = overlay.Logging.Format
		}
		out.Logging = &l
	}
	if overlay.IPC != nil && overlay.IPC.Socket != nil {
		out.IPC = &RawIPC{Socket: overlay.IPC.Socket}
	}
	if overlay.X11 != nil {
		x := RawX11{}
		if out.X11 != nil {
			x = *out.X11
		}
		if overlay.X11.ImportOutputs != nil {
			x.ImportOutputs = overlay.X11.ImportOutputs
		}
		if overlay.X11.Display != nil {
			x.Display = overlay.X11.Display
		}
		out.X11 = &x
	}
	if overlay.Daemon != nil && overlay.Daemon.ReconcileInterval != nil {
		out.Daemon = &RawDaemon{ReconcileInterval: overlay.Daemon.ReconcileInterval}
	}
	return out
}

// BuildEffectiveConfig applies raw over the defaults. It does not
// validate.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if p := raw.Placement; p != nil {
		if p.FallbackSize != nil {
			if p.FallbackSize.Width != nil {
				cfg.Placement.FallbackSize.Width = *p.FallbackSize.Width
			}
			if p.FallbackSize.Height != nil {
				cfg.Placement.FallbackSize.Height = *p.FallbackSize.Height
			}
		}
		if p.MemoLimit != nil {
			cfg.Placement.MemoLimit = *p.MemoLimit
		}
	}
	if raw.Outputs != nil {
		cfg.Outputs = append([]OutputConfig(nil), raw.Outputs...)
	}
	if raw.Layers != nil {
		cfg.Layers = append([]LayerConfig(nil), raw.Layers...)
	}
	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.Format != nil {
			cfg.Logging.Format = *l.Format
		}
	}
	if raw.IPC != nil && raw.IPC.Socket != nil {
		cfg.IPC.Socket = *raw.IPC.Socket
	}
	if x := raw.X11; x != nil {
		if x.ImportOutputs != nil {
			cfg.X11.ImportOutputs = *x.ImportOutputs
		}
		if x.Display != nil {
			cfg.X11.Display = *x.Display
		}
	}
	if raw.Daemon != nil && raw.Daemon.ReconcileInterval != nil {
		cfg.Daemon.ReconcileInterval = *raw.Daemon.ReconcileInterval
	}
	return cfg
}
