package shell

import (
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/surfacestate"
)

// NewSurface installs the pre-commit blocker hook and the teardown hook on
// a newly created surface.
func (sh *Shell) NewSurface(s desktop.Surface) {
	s.AddPreCommitHook(sh.preCommit)
	id := s.ID()
	s.OnDestroy(func() {
		sh.cancelBlockers(id)
		sh.placement.Session().Forget(id)
		if sh.cursor.is(s) {
			sh.cursor = DefaultCursor()
		}
		if sh.dndIcon != nil && sh.dndIcon.Surface.ID() == id {
			sh.dndIcon = nil
		}
	})
}

// Commit processes a surface commit once its blockers were released.
func (sh *Shell) Commit(s desktop.Surface) {
	if sh.renderer != nil {
		sh.renderer.OnCommitBuffer(s)
	}
	if sh.backend != nil {
		sh.backend.EarlyImport(s)
	}

	if !s.SyncSubsurface() {
		root := desktop.Root(s)
		if w, ok := sh.WindowForSurface(root); ok {
			w.OnCommit()
			if root.ID() == s.ID() {
				sh.followBufferDelta(w)
			}
		}
	}

	if sh.popups != nil {
		sh.popups.Commit(s)
	}

	if sh.cursor.is(s) {
		if delta, ok := s.TakeBufferDelta(); ok {
			attrs, _ := desktop.Get[CursorImageAttributes](s.Data())
			if attrs != nil {
				attrs.Hotspot = attrs.Hotspot.Sub(delta)
			}
		}
	}

	if sh.dndIcon != nil && sh.dndIcon.Surface.ID() == s.ID() {
		if delta, ok := s.TakeBufferDelta(); ok {
			sh.dndIcon.Offset = sh.dndIcon.Offset.Add(delta)
		}
	}

	sh.EnsureInitialConfigure(s)
}

// followBufferDelta keeps a window's content still on screen when the
// client moved its buffer origin, e.g. while growing up or left.
func (sh *Shell) followBufferDelta(w desktop.Window) {
	s := w.Surface()
	bbox := w.BBox()
	surfacestate.GetOrInit(s).Geometry = &bbox

	delta, ok := s.TakeBufferDelta()
	if !ok || delta.IsZero() {
		return
	}
	loc, ok := sh.space.ElementLocation(w)
	if !ok {
		return
	}
	sh.space.MapElement(w, loc.Add(delta), false)
}

// BufferDestroyed is called when a client buffer goes away. Nothing in the
// shell holds buffers.
func (sh *Shell) BufferDestroyed(desktop.Buffer) {}
