// Package headless is an in-memory compositor toolkit. It implements the
// desktop interfaces without a GPU or a wire protocol so the shell can run
// as a daemon, be driven over IPC and be tested end to end.
package headless

import (
	"github.com/1broseidon/wlshell/internal/desktop"
)

// Handler receives surface lifecycle events from the display.
type Handler interface {
	NewSurface(s desktop.Surface)
	Commit(s desktop.Surface)
}

// Display owns the client, surface and role objects of one headless
// session.
type Display struct {
	handler Handler
	space   *Space
	popups  *PopupManager
	nextID  desktop.SurfaceID
	serial  uint32
}

// NewDisplay returns a display with an empty space.
func NewDisplay() *Display {
	return &Display{
		space:  NewSpace(),
		popups: NewPopupManager(),
	}
}

// SetHandler installs the commit handler. Surfaces created before the
// handler was set are not announced.
func (d *Display) SetHandler(h Handler) {
	d.handler = h
}

// Space returns the output and window space.
func (d *Display) Space() *Space {
	return d.space
}

// Popups returns the popup manager.
func (d *Display) Popups() *PopupManager {
	return d.popups
}

func (d *Display) nextSerial() uint32 {
	d.serial++
	return d.serial
}

// NewClient connects a client.
func (d *Display) NewClient(name string) *Client {
	return &Client{name: name}
}

// Disconnect marks c as gone. Its surfaces are destroyed.
func (d *Display) Disconnect(c *Client) {
	for len(c.surfaces) > 0 {
		c.surfaces[len(c.surfaces)-1].Destroy()
	}
	c.gone = true
}

// CreateSurface creates a root surface owned by c.
func (d *Display) CreateSurface(c *Client) *Surface {
	d.nextID++
	s := &Surface{id: d.nextID, display: d, client: c, alive: true}
	if c != nil {
		c.surfaces = append(c.surfaces, s)
	}
	if d.handler != nil {
		d.handler.NewSurface(s)
	}
	return s
}

// CreateSubsurface creates a child of parent. Synchronized subsurfaces
// commit together with their parent.
func (d *Display) CreateSubsurface(parent *Surface, sync bool) *Surface {
	s := d.CreateSurface(parent.client)
	s.parent = parent
	s.sync = sync
	parent.children = append(parent.children, s)
	return s
}

// CreateToplevel gives s the toplevel role and wraps it in a window.
func (d *Display) CreateToplevel(s *Surface) *Window {
	return &Window{surface: s, toplevel: &Toplevel{display: d}}
}

// CreatePopup gives s a popup role anchored to parent.
func (d *Display) CreatePopup(s *Surface, parent *Surface, kind desktop.PopupKind) *Popup {
	p := &Popup{kind: kind, surface: s, parent: parent}
	d.popups.track(p)
	return p
}

// CreateLayerSurface gives s the layer-shell role.
func (d *Display) CreateLayerSurface(s *Surface, layer desktop.Layer, namespace string) *LayerSurface {
	return &LayerSurface{surface: s, layer: layer, namespace: namespace}
}

// Recorder is a renderer and backend that counts what it was asked to do.
type Recorder struct {
	buffers map[desktop.SurfaceID]int
	imports map[desktop.SurfaceID]int
	order   []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		buffers: make(map[desktop.SurfaceID]int),
		imports: make(map[desktop.SurfaceID]int),
	}
}

func (r *Recorder) OnCommitBuffer(s desktop.Surface) {
	r.buffers[s.ID()]++
	r.order = append(r.order, "render")
}

func (r *Recorder) EarlyImport(s desktop.Surface) {
	r.imports[s.ID()]++
	r.order = append(r.order, "import")
}

// BufferCommits counts renderer notifications for s.
func (r *Recorder) BufferCommits(s desktop.Surface) int {
	return r.buffers[s.ID()]
}

// Imports counts early imports for s.
func (r *Recorder) Imports(s desktop.Surface) int {
	return r.imports[s.ID()]
}

// Order returns the sequence of calls received.
func (r *Recorder) Order() []string {
	return r.order
}
