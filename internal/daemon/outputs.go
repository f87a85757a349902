package daemon

import (
	"fmt"

	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/headless"
	"github.com/1broseidon/wlshell/internal/platform"
)

type outputSpec struct {
	name     string
	size     geom.Size
	reserved platform.Insets
}

// desiredOutputs lists the host displays, when imported, followed by the
// configured outputs whose names the host did not claim.
func (d *Daemon) desiredOutputs() []outputSpec {
	var specs []outputSpec
	seen := make(map[string]bool)

	if d.cfg.X11.ImportOutputs && d.host != nil {
		displays, err := d.host.Displays()
		if err != nil {
			d.logger.Warn("failed to import host outputs", "error", err)
		}
		for _, disp := range displays {
			specs = append(specs, outputSpec{
				name:     disp.Name,
				size:     disp.Bounds.Size,
				reserved: disp.Reserved,
			})
			seen[disp.Name] = true
			d.logger.Debug("imported host output", "output", disp.Name, "bounds", disp.Bounds, "usable", disp.Usable())
		}
	}

	for _, o := range d.cfg.Outputs {
		if seen[o.Name] {
			continue
		}
		specs = append(specs, outputSpec{name: o.Name, size: geom.Sz(o.Width, o.Height)})
		seen[o.Name] = true
	}
	return specs
}

// syncOutputs creates, resizes and removes managed outputs to match the
// configuration. Callers run FixupPositions afterwards.
func (d *Daemon) syncOutputs() {
	specs := d.desiredOutputs()
	want := make(map[string]bool, len(specs))

	for _, o := range specs {
		want[o.name] = true
		d.ensureOutput(o.name, o.size)
		d.managed[o.name] = true
	}

	for name := range d.managed {
		if want[name] {
			continue
		}
		if err := d.removeOutput(name); err != nil {
			d.logger.Warn("failed to remove output", "output", name, "error", err)
		}
		delete(d.managed, name)
	}

	d.clearPanels(func(p *panel) bool { return p.host })
	for _, o := range specs {
		d.reserveEdges(o.name, o.reserved)
	}
}

// ensureOutput maps a new output or resizes an existing one.
func (d *Daemon) ensureOutput(name string, size geom.Size) *headless.Output {
	if o, ok := d.space.OutputByName(name); ok {
		if o.Size() != size {
			d.logger.Info("output resized", "output", name, "from", o.Size(), "to", size)
			o.SetSize(size)
			o.HeadlessLayerMap().Arrange()
		}
		return o
	}
	o := headless.NewOutput(name, size)
	// Placed at the origin; FixupPositions lines the outputs up.
	d.space.MapOutput(o, geom.Point{})
	d.logger.Info("output added", "output", name, "size", size)
	return o
}

// removeOutput unmaps an output along with its panels and fullscreen
// holder.
func (d *Daemon) removeOutput(name string) error {
	o, ok := d.space.OutputByName(name)
	if !ok {
		return fmt.Errorf("no output named %q", name)
	}
	d.clearPanels(func(p *panel) bool { return p.output == name })
	d.shell.Fullscreen().Clear(o)
	d.space.UnmapOutput(o)
	delete(d.managed, name)
	d.logger.Info("output removed", "output", name)
	return nil
}
