// Package shell is the surface-lifecycle layer of the compositor. It reacts
// to surface commits, holds commits back until their buffers are ready,
// sends the initial configure of every role exactly once and places new
// windows.
package shell

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/placement"
	"github.com/1broseidon/wlshell/internal/surfacestate"
)

// ErrInitialConfigure marks a configurable surface that refused its
// initial configure. It is raised as a panic.
var ErrInitialConfigure = errors.New("initial configure failed")

// Config holds the collaborators of a Shell.
type Config struct {
	Space    desktop.Space
	Popups   desktop.PopupManager
	Renderer desktop.Renderer
	Backend  desktop.Backend
	Loop     desktop.Loop

	// Placement is built from Space, Session and FallbackSize when nil.
	Placement    *placement.Engine
	Session      *placement.Session
	FallbackSize geom.Size

	Logger *slog.Logger
}

// Shell is the compositor-side state machine for client surfaces. All
// methods must be called from the event loop goroutine.
type Shell struct {
	space     desktop.Space
	popups    desktop.PopupManager
	renderer  desktop.Renderer
	backend   desktop.Backend
	loop      desktop.Loop
	placement *placement.Engine
	logger    *slog.Logger

	pointer    geom.PointF
	cursor     CursorImageStatus
	dndIcon    *DndIcon
	fullscreen *FullscreenRegistry
	blockers   map[desktop.SurfaceID][]*continuation
}

// New creates a shell.
func New(cfg Config) *Shell {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := cfg.Placement
	if engine == nil {
		engine = placement.NewEngine(placement.Config{
			Space:        cfg.Space,
			Session:      cfg.Session,
			FallbackSize: cfg.FallbackSize,
			Logger:       logger,
		})
	}
	return &Shell{
		space:      cfg.Space,
		popups:     cfg.Popups,
		renderer:   cfg.Renderer,
		backend:    cfg.Backend,
		loop:       cfg.Loop,
		placement:  engine,
		logger:     logger,
		cursor:     DefaultCursor(),
		fullscreen: NewFullscreenRegistry(),
		blockers:   make(map[desktop.SurfaceID][]*continuation),
	}
}

// Placement returns the placement engine.
func (sh *Shell) Placement() *placement.Engine {
	return sh.placement
}

// Fullscreen returns the per-output fullscreen registry.
func (sh *Shell) Fullscreen() *FullscreenRegistry {
	return sh.fullscreen
}

// Pointer returns the last known pointer location.
func (sh *Shell) Pointer() geom.PointF {
	return sh.pointer
}

// SetPointer records the pointer location used for placement.
func (sh *Shell) SetPointer(p geom.PointF) {
	sh.pointer = p
}

// WindowForSurface returns the window whose toplevel surface is s.
func (sh *Shell) WindowForSurface(s desktop.Surface) (desktop.Window, bool) {
	for _, w := range sh.space.Elements() {
		if w.Surface().ID() == s.ID() {
			return w, true
		}
	}
	return nil, false
}

// NewToplevel places a freshly created window and activates it.
func (sh *Shell) NewToplevel(w desktop.Window) geom.Point {
	surfacestate.GetOrInit(w.Surface())
	return sh.placement.PlaceNewWindow(sh.pointer, w, true)
}

// FixupPositions re-anchors outputs and windows after a topology change.
func (sh *Shell) FixupPositions() []desktop.Window {
	return sh.placement.FixupPositions(sh.pointer)
}

// BeginResize records that w was asked to resize to size. The next commit
// of its surface completes the handshake.
func (sh *Shell) BeginResize(w desktop.Window, size geom.Size) {
	surfacestate.GetOrInit(w.Surface()).BeginResize(size)
}

// PendingBlockers counts registered, unfired commit blockers.
func (sh *Shell) PendingBlockers() int {
	n := 0
	for _, cs := range sh.blockers {
		n += len(cs)
	}
	return n
}
