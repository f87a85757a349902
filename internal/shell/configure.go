package shell

import (
	"fmt"
	"slices"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/surfacestate"
)

// EnsureInitialConfigure sends the initial configure of whatever role s
// has, if it was not sent yet. A pending toplevel resize is completed by
// this pass whatever size the client committed.
func (sh *Shell) EnsureInitialConfigure(s desktop.Surface) {
	st := surfacestate.GetOrInit(s)
	b := sh.resolveRole(s, st)

	switch b.Role {
	case surfacestate.RoleToplevel:
		sh.configureToplevel(b.Window, st)
	case surfacestate.RolePopup:
		sh.configurePopup(b.Popup, st)
	case surfacestate.RoleLayer:
		sh.configureLayer(b.Layer, b.Output, st)
	}
}

// resolveRole returns the cached role of s, probing window, popup and layer
// in that order when nothing valid is cached.
func (sh *Shell) resolveRole(s desktop.Surface, st *surfacestate.State) surfacestate.Binding {
	if b := st.Binding(); b.Role != surfacestate.RoleNone {
		if sh.bindingValid(s, b) {
			return b
		}
		st.Unbind()
	}

	var b surfacestate.Binding
	if w, ok := sh.WindowForSurface(s); ok {
		b = surfacestate.Binding{Role: surfacestate.RoleToplevel, Window: w}
	} else if p, ok := sh.findPopup(s); ok {
		b = surfacestate.Binding{Role: surfacestate.RolePopup, Popup: p}
	} else if l, o, ok := sh.findLayer(s); ok {
		b = surfacestate.Binding{Role: surfacestate.RoleLayer, Layer: l, Output: o}
	} else {
		return b
	}
	st.Bind(b)
	return b
}

func (sh *Shell) bindingValid(s desktop.Surface, b surfacestate.Binding) bool {
	switch b.Role {
	case surfacestate.RoleToplevel:
		if !b.Window.Alive() {
			return false
		}
		_, mapped := sh.space.ElementLocation(b.Window)
		return mapped
	case surfacestate.RolePopup:
		return b.Popup.Surface().Alive()
	case surfacestate.RoleLayer:
		if !slices.Contains(sh.space.Outputs(), b.Output) {
			return false
		}
		_, ok := b.Output.LayerMap().LayerForSurface(s)
		return ok
	}
	return false
}

func (sh *Shell) findPopup(s desktop.Surface) (desktop.Popup, bool) {
	if sh.popups == nil {
		return nil, false
	}
	return sh.popups.FindPopup(s)
}

func (sh *Shell) findLayer(s desktop.Surface) (desktop.LayerSurface, desktop.Output, bool) {
	for _, o := range sh.space.Outputs() {
		if l, ok := o.LayerMap().LayerForSurface(s); ok {
			return l, o, true
		}
	}
	return nil, nil, false
}

func (sh *Shell) configureToplevel(w desktop.Window, st *surfacestate.State) {
	if tl, ok := w.Toplevel(); ok && !st.ConfigureSent(surfacestate.RoleToplevel) {
		if !tl.InitialConfigureSent() {
			tl.SendConfigure()
		}
		st.MarkConfigureSent(surfacestate.RoleToplevel)
	}
	if st.FinishResize() {
		sh.logger.Debug("resize committed", "surface", w.Surface().ID())
	}
}

func (sh *Shell) configurePopup(p desktop.Popup, st *surfacestate.State) {
	if p.Kind() != desktop.PopupXDG || st.ConfigureSent(surfacestate.RolePopup) {
		return
	}
	if p.InitialConfigureSent() {
		st.MarkConfigureSent(surfacestate.RolePopup)
		return
	}
	parent := p.Parent()
	if parent == nil || !parent.Alive() {
		sh.logger.Debug("popup parent not ready", "surface", p.Surface().ID())
		return
	}
	if err := p.SendConfigure(); err != nil {
		panic(fmt.Errorf("%w: popup %d: %w", ErrInitialConfigure, p.Surface().ID(), err))
	}
	st.MarkConfigureSent(surfacestate.RolePopup)
}

// configureLayer re-arranges the output on every commit so anchor, size
// and exclusive zone changes reach the usable area. Only the initial
// configure is sent once.
func (sh *Shell) configureLayer(l desktop.LayerSurface, o desktop.Output, st *surfacestate.State) {
	o.LayerMap().Arrange()
	if st.ConfigureSent(surfacestate.RoleLayer) {
		return
	}
	if !l.InitialConfigureSent() {
		l.SendConfigure()
	}
	st.MarkConfigureSent(surfacestate.RoleLayer)
}
