package daemon

import (
	"fmt"
	"slices"

	"github.com/1broseidon/wlshell/internal/config"
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/headless"
	"github.com/1broseidon/wlshell/internal/platform"
)

// reservedNamespace names the panels standing in for host dock struts.
const reservedNamespace = "host-reserved"

// panel is a layer surface the daemon created on behalf of the config or
// the host.
type panel struct {
	surface *headless.LayerSurface
	output  string
	// host panels mirror dock struts and are rebuilt with the outputs.
	host bool
}

var anchorBits = map[string]headless.Anchor{
	"top":    headless.AnchorTop,
	"bottom": headless.AnchorBottom,
	"left":   headless.AnchorLeft,
	"right":  headless.AnchorRight,
}

func parseAnchor(names []string) (headless.Anchor, error) {
	var a headless.Anchor
	for _, n := range names {
		bit, ok := anchorBits[n]
		if !ok {
			return 0, fmt.Errorf("unknown anchor %q", n)
		}
		a |= bit
	}
	return a, nil
}

// rebuildLayers replaces the configured panels.
func (d *Daemon) rebuildLayers() {
	d.clearPanels(func(p *panel) bool { return !p.host })
	for i, lc := range d.cfg.Layers {
		if err := d.addConfiguredLayer(lc); err != nil {
			d.logger.Warn("skipping layer",
				"index", i,
				"namespace", lc.Namespace,
				"error", err)
		}
	}
}

func (d *Daemon) addConfiguredLayer(lc config.LayerConfig) error {
	layer, ok := desktop.ParseLayer(lc.Layer)
	if !ok {
		return fmt.Errorf("unknown layer %q", lc.Layer)
	}
	anchor, err := parseAnchor(lc.Anchor)
	if err != nil {
		return err
	}
	return d.createPanel(panelSpec{
		output:    lc.Output,
		layer:     layer,
		namespace: lc.Namespace,
		anchor:    anchor,
		zone:      lc.ExclusiveZone,
		size:      geom.Sz(lc.Width, lc.Height),
	})
}

// reserveEdges creates one exclusive panel per reserved edge of output.
func (d *Daemon) reserveEdges(output string, in platform.Insets) {
	edges := []struct {
		n      int
		anchor headless.Anchor
		size   func(n int) geom.Size
	}{
		{in.Top, headless.AnchorTop | headless.AnchorLeft | headless.AnchorRight, func(n int) geom.Size { return geom.Sz(0, n) }},
		{in.Bottom, headless.AnchorBottom | headless.AnchorLeft | headless.AnchorRight, func(n int) geom.Size { return geom.Sz(0, n) }},
		{in.Left, headless.AnchorLeft | headless.AnchorTop | headless.AnchorBottom, func(n int) geom.Size { return geom.Sz(n, 0) }},
		{in.Right, headless.AnchorRight | headless.AnchorTop | headless.AnchorBottom, func(n int) geom.Size { return geom.Sz(n, 0) }},
	}
	for _, e := range edges {
		if e.n <= 0 {
			continue
		}
		err := d.createPanel(panelSpec{
			output:    output,
			layer:     desktop.LayerTop,
			namespace: reservedNamespace,
			anchor:    e.anchor,
			zone:      e.n,
			size:      e.size(e.n),
			host:      true,
		})
		if err != nil {
			d.logger.Warn("failed to reserve output edge", "output", output, "error", err)
		}
	}
}

type panelSpec struct {
	output    string
	layer     desktop.Layer
	namespace string
	anchor    headless.Anchor
	zone      int
	size      geom.Size
	host      bool
}

// createPanel maps a layer surface and commits it once so the shell sends
// its initial configure.
func (d *Daemon) createPanel(p panelSpec) error {
	var target desktop.Output
	if p.output != "" {
		o, ok := d.space.OutputByName(p.output)
		if !ok {
			return fmt.Errorf("no output named %q", p.output)
		}
		target = o
	}

	s := d.display.CreateSurface(d.panels)
	l := d.display.CreateLayerSurface(s, p.layer, p.namespace)
	l.SetAnchor(p.anchor)
	l.SetSize(p.size)
	l.SetExclusiveZone(p.zone)
	if !d.shell.NewLayerSurface(l, target) {
		s.Destroy()
		return fmt.Errorf("layer surface %q was not mapped", p.namespace)
	}
	s.Commit()

	output := p.output
	if output == "" {
		if outputs := d.space.Outputs(); len(outputs) > 0 {
			output = outputs[0].Name()
		}
	}
	d.layers = append(d.layers, &panel{surface: l, output: output, host: p.host})
	return nil
}

// clearPanels destroys the panels matching drop.
func (d *Daemon) clearPanels(drop func(*panel) bool) {
	d.layers = slices.DeleteFunc(d.layers, func(p *panel) bool {
		if !drop(p) {
			return false
		}
		d.shell.LayerDestroyed(p.surface)
		p.surface.Headless().Destroy()
		return true
	})
}
