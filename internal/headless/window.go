package headless

import (
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
)

// Configure is one configure event sent to a toplevel.
type Configure struct {
	Serial uint32
	Bounds *geom.Size
}

// Toplevel records the configures a window was sent.
type Toplevel struct {
	display    *Display
	sent       bool
	bounds     *geom.Size
	fullscreen bool
	configures []Configure
}

func (t *Toplevel) InitialConfigureSent() bool {
	return t.sent
}

func (t *Toplevel) SendConfigure() {
	t.sent = true
	c := Configure{Serial: t.display.nextSerial()}
	if t.bounds != nil {
		b := *t.bounds
		c.Bounds = &b
	}
	t.configures = append(t.configures, c)
}

func (t *Toplevel) SetBounds(size geom.Size) {
	t.bounds = &size
}

// Bounds returns the pending bounds hint.
func (t *Toplevel) Bounds() (geom.Size, bool) {
	if t.bounds == nil {
		return geom.Size{}, false
	}
	return *t.bounds, true
}

func (t *Toplevel) Fullscreen() bool {
	return t.fullscreen
}

// SetFullscreen records the client's fullscreen request.
func (t *Toplevel) SetFullscreen(fs bool) {
	t.fullscreen = fs
}

// Configures returns the configures sent so far.
func (t *Toplevel) Configures() []Configure {
	return t.configures
}

// Window is a toplevel window element.
type Window struct {
	surface  *Surface
	toplevel *Toplevel
	title    string
	commits  int
}

func (w *Window) Surface() desktop.Surface {
	return w.surface
}

// Headless returns the concrete surface.
func (w *Window) Headless() *Surface {
	return w.surface
}

func (w *Window) Alive() bool {
	return w.surface.Alive()
}

// BBox covers the current buffer of the root surface.
func (w *Window) BBox() geom.Rectangle {
	if w.surface.buffer == nil {
		return geom.Rectangle{}
	}
	return geom.FromSize(w.surface.buffer.Size())
}

func (w *Window) OnCommit() {
	w.commits++
}

// Commits counts OnCommit notifications.
func (w *Window) Commits() int {
	return w.commits
}

func (w *Window) Toplevel() (desktop.Toplevel, bool) {
	if w.toplevel == nil {
		return nil, false
	}
	return w.toplevel, true
}

// HeadlessToplevel returns the concrete toplevel.
func (w *Window) HeadlessToplevel() *Toplevel {
	return w.toplevel
}

// Title returns the window title.
func (w *Window) Title() string {
	return w.title
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.title = title
}
