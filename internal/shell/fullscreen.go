package shell

import (
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// FullscreenRegistry remembers the fullscreen window of each output. It
// does not keep windows alive: reads drop entries whose window died.
type FullscreenRegistry struct {
	entries map[desktop.Output]desktop.Window
}

// NewFullscreenRegistry returns an empty registry.
func NewFullscreenRegistry() *FullscreenRegistry {
	return &FullscreenRegistry{entries: make(map[desktop.Output]desktop.Window)}
}

// Set makes w the fullscreen window of o.
func (r *FullscreenRegistry) Set(o desktop.Output, w desktop.Window) {
	r.entries[o] = w
}

// Get returns the live fullscreen window of o.
func (r *FullscreenRegistry) Get(o desktop.Output) (desktop.Window, bool) {
	w, ok := r.entries[o]
	if !ok {
		return nil, false
	}
	if !w.Alive() {
		delete(r.entries, o)
		return nil, false
	}
	return w, true
}

// Clear drops the entry of o.
func (r *FullscreenRegistry) Clear(o desktop.Output) {
	delete(r.entries, o)
}

// Sweep drops every dead entry and reports how many went.
func (r *FullscreenRegistry) Sweep() int {
	n := 0
	for o, w := range r.entries {
		if !w.Alive() {
			delete(r.entries, o)
			n++
		}
	}
	return n
}

// Len counts entries, dead ones included.
func (r *FullscreenRegistry) Len() int {
	return len(r.entries)
}

// FullscreenOutputGeometry returns the area a fullscreen request should
// cover: the requested output, or else the first output showing the
// window of s.
func FullscreenOutputGeometry(space desktop.Space, s desktop.Surface, requested desktop.Output) (geom.Rectangle, bool) {
	if requested != nil {
		return space.OutputGeometry(requested)
	}
	for _, w := range space.Elements() {
		if w.Surface().ID() != s.ID() {
			continue
		}
		outputs := space.OutputsForElement(w)
		if len(outputs) == 0 {
			return geom.Rectangle{}, false
		}
		return space.OutputGeometry(outputs[0])
	}
	return geom.Rectangle{}, false
}

// SetFullscreen records w as fullscreen on the output it is shown on, or on
// requested if given, and returns the area it should cover.
func (sh *Shell) SetFullscreen(w desktop.Window, requested desktop.Output) (geom.Rectangle, bool) {
	o := requested
	if o == nil {
		outputs := sh.space.OutputsForElement(w)
		if len(outputs) == 0 {
			return geom.Rectangle{}, false
		}
		o = outputs[0]
	}
	geo, ok := sh.space.OutputGeometry(o)
	if !ok {
		return geom.Rectangle{}, false
	}
	sh.fullscreen.Set(o, w)
	return geo, true
}
