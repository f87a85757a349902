package shell

import (
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/surfacestate"
)

// NewLayerSurface maps l into the layer stack of output, or of the first
// output when the client named none. It reports whether l was mapped.
func (sh *Shell) NewLayerSurface(l desktop.LayerSurface, output desktop.Output) bool {
	if output == nil {
		outputs := sh.space.Outputs()
		if len(outputs) == 0 {
			sh.logger.Warn("no output for layer surface",
				"surface", l.Surface().ID(),
				"namespace", l.Namespace())
			return false
		}
		output = outputs[0]
	}
	surfacestate.GetOrInit(l.Surface())
	if err := output.LayerMap().Map(l); err != nil {
		sh.logger.Warn("failed to map layer surface",
			"surface", l.Surface().ID(),
			"namespace", l.Namespace(),
			"output", output.Name(),
			"error", err)
		return false
	}
	sh.logger.Debug("layer surface mapped",
		"namespace", l.Namespace(),
		"layer", l.Layer(),
		"output", output.Name())
	return true
}

// LayerDestroyed removes l from whichever output holds it.
func (sh *Shell) LayerDestroyed(l desktop.LayerSurface) {
	if st, ok := surfacestate.Lookup(l.Surface()); ok {
		st.Unbind()
	}
	for _, o := range sh.space.Outputs() {
		lm := o.LayerMap()
		if found, ok := lm.LayerForSurface(l.Surface()); ok {
			lm.Unmap(found)
			return
		}
	}
}
