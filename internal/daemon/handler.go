package daemon

import (
	"fmt"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/headless"
	"github.com/1broseidon/wlshell/internal/ipc"
)

// The ipc.Handler methods below run on the loop goroutine; the server
// dispatches them through Loop.Call.
var _ ipc.Handler = (*Daemon)(nil)

func toRect(r geom.Rectangle) ipc.Rect {
	return ipc.Rect{X: r.Loc.X, Y: r.Loc.Y, Width: r.Size.W, Height: r.Size.H}
}

func (d *Daemon) Status() ipc.StatusData {
	return ipc.StatusData{
		Outputs:         len(d.space.Outputs()),
		Windows:         len(d.windows),
		Fullscreen:      d.shell.Fullscreen().Len(),
		PlacedWindows:   d.shell.Placement().Session().Tracked(),
		PendingBlockers: d.shell.PendingBlockers(),
	}
}

func (d *Daemon) Outputs() ipc.OutputsData {
	outputs := d.space.Outputs()
	data := ipc.OutputsData{Outputs: make([]ipc.OutputInfo, 0, len(outputs))}
	for _, o := range outputs {
		data.Outputs = append(data.Outputs, d.outputInfo(o))
	}
	return data
}

func (d *Daemon) outputInfo(o desktop.Output) ipc.OutputInfo {
	info := ipc.OutputInfo{Name: o.Name()}
	if geo, ok := d.space.OutputGeometry(o); ok {
		info.Geometry = toRect(geo)
	}
	if usable, ok := d.shell.Placement().UsableArea(o); ok {
		info.Usable = toRect(usable)
	}
	for _, l := range o.LayerMap().Layers() {
		info.Layers = append(info.Layers, ipc.LayerInfo{
			Namespace: l.Namespace(),
			Layer:     l.Layer().String(),
		})
	}
	return info
}

func (d *Daemon) Windows() ipc.WindowsData {
	data := ipc.WindowsData{Windows: []ipc.WindowInfo{}}
	for _, w := range d.space.Elements() {
		if !w.Alive() {
			continue
		}
		data.Windows = append(data.Windows, d.windowInfo(w))
	}
	return data
}

func (d *Daemon) windowInfo(w desktop.Window) ipc.WindowInfo {
	id := w.Surface().ID()
	info := ipc.WindowInfo{
		ID:        uint32(id),
		Activated: d.space.Activated(w),
	}
	if n, ok := d.shell.Placement().Session().Lookup(id); ok {
		info.Ordinal = n
	}
	if hw, ok := w.(*headless.Window); ok {
		info.Title = hw.Title()
	}
	if loc, ok := d.space.ElementLocation(w); ok {
		info.Geometry = toRect(w.BBox().Translate(loc))
	}
	for _, o := range d.space.OutputsForElement(w) {
		info.Outputs = append(info.Outputs, o.Name())
	}
	return info
}

func (d *Daemon) Fixup() ipc.FixupData {
	data := ipc.FixupData{Moved: []uint32{}}
	for _, w := range d.shell.FixupPositions() {
		data.Moved = append(data.Moved, uint32(w.Surface().ID()))
	}
	return data
}

// MapWindow creates a window the way a client would: the first buffer is
// committed before the toplevel is placed so placement centres on its
// size, then a second commit delivers the initial configure.
func (d *Daemon) MapWindow(p ipc.MapWindowPayload) (ipc.WindowInfo, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return ipc.WindowInfo{}, fmt.Errorf("invalid size %dx%d", p.Width, p.Height)
	}
	if p.PointerX != nil || p.PointerY != nil {
		ptr := d.shell.Pointer()
		if p.PointerX != nil {
			ptr.X = *p.PointerX
		}
		if p.PointerY != nil {
			ptr.Y = *p.PointerY
		}
		d.shell.SetPointer(ptr)
	}

	s := d.display.CreateSurface(d.apps)
	w := d.display.CreateToplevel(s)
	w.SetTitle(p.Title)
	s.Attach(headless.NewBuffer(geom.Sz(p.Width, p.Height)), 0, 0)
	s.Commit()

	id := s.ID()
	d.windows[id] = w
	s.OnDestroy(func() {
		delete(d.windows, id)
		d.space.UnmapElement(w)
	})

	d.shell.NewToplevel(w)
	s.Commit()
	return d.windowInfo(w), nil
}

func (d *Daemon) CloseWindow(p ipc.CloseWindowPayload) error {
	w, ok := d.windows[desktop.SurfaceID(p.ID)]
	if !ok {
		return fmt.Errorf("no window with id %d", p.ID)
	}
	w.Headless().Destroy()
	return nil
}

// AddOutput hot-plugs an output, or resizes it when the name is taken,
// then re-anchors outputs and windows.
func (d *Daemon) AddOutput(p ipc.AddOutputPayload) (ipc.OutputInfo, error) {
	if p.Name == "" {
		return ipc.OutputInfo{}, fmt.Errorf("output name is required")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return ipc.OutputInfo{}, fmt.Errorf("invalid size %dx%d", p.Width, p.Height)
	}
	o := d.ensureOutput(p.Name, geom.Sz(p.Width, p.Height))
	d.shell.FixupPositions()
	return d.outputInfo(o), nil
}

// RemoveOutput unplugs an output and re-places the windows it stranded.
func (d *Daemon) RemoveOutput(p ipc.RemoveOutputPayload) error {
	if err := d.removeOutput(p.Name); err != nil {
		return err
	}
	moved := d.shell.FixupPositions()
	d.logger.Info("output unplugged", "output", p.Name, "moved", len(moved))
	return nil
}
