package shell

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/eventloop"
	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/headless"
	"github.com/1broseidon/wlshell/internal/placement"
	"github.com/1broseidon/wlshell/internal/surfacestate"
)

type harness struct {
	t       *testing.T
	display *headless.Display
	space   *headless.Space
	loop    *eventloop.Loop
	rec     *headless.Recorder
	shell   *Shell
	client  *headless.Client
}

func newHarness(t *testing.T, outputs ...*headless.Output) *harness {
	t.Helper()
	loop, err := eventloop.New()
	require.NoError(t, err)
	t.Cleanup(func() { loop.Close() })

	d := headless.NewDisplay()
	x := 0
	for _, o := range outputs {
		d.Space().MapOutput(o, geom.Pt(x, 0))
		x += o.Size().W
	}
	rec := headless.NewRecorder()
	sh := New(Config{
		Space:    d.Space(),
		Popups:   d.Popups(),
		Renderer: rec,
		Backend:  rec,
		Loop:     loop,
		Session:  placement.NewSession(0),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	d.SetHandler(sh)

	return &harness{
		t:       t,
		display: d,
		space:   d.Space(),
		loop:    loop,
		rec:     rec,
		shell:   sh,
		client:  d.NewClient("app"),
	}
}

func defaultOutput() *headless.Output {
	return headless.NewOutput("HEADLESS-1", geom.Sz(1920, 1080))
}

// toplevel creates a placed window that has not committed yet.
func (h *harness) toplevel() *headless.Window {
	w := h.display.CreateToplevel(h.display.CreateSurface(h.client))
	h.shell.NewToplevel(w)
	return w
}

func (h *harness) commitBuffer(s *headless.Surface, size geom.Size, dx, dy int) {
	s.Attach(headless.NewBuffer(size), dx, dy)
	s.Commit()
}

func (h *harness) fence() *headless.Fence {
	h.t.Helper()
	f, err := headless.NewFence()
	require.NoError(h.t, err)
	h.t.Cleanup(func() { f.Close() })
	return f
}

func TestToplevelConfiguredExactlyOnce(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()

	for i := 0; i < 3; i++ {
		h.commitBuffer(w.Headless(), geom.Sz(400, 300), 0, 0)
	}

	assert.Len(t, w.HeadlessToplevel().Configures(), 1)
	st, ok := surfacestate.Lookup(w.Surface())
	require.True(t, ok)
	assert.True(t, st.ConfigureSent(surfacestate.RoleToplevel))
	assert.False(t, st.MarkConfigureSent(surfacestate.RoleToplevel))
	assert.Equal(t, surfacestate.RoleToplevel, st.Binding().Role)
	assert.Equal(t, 3, w.Commits())
}

func TestToplevelConfigureSkippedWhenToolkitSentIt(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	w.HeadlessToplevel().SendConfigure()

	h.commitBuffer(w.Headless(), geom.Sz(100, 100), 0, 0)

	assert.Len(t, w.HeadlessToplevel().Configures(), 1)
}

func TestResizeFinishedOnNextPass(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(400, 300), 0, 0)

	h.shell.BeginResize(w, geom.Sz(800, 600))
	st := surfacestate.GetOrInit(w.Surface())
	_, waiting := st.Resize.Waiting()
	require.True(t, waiting)

	// The client commits a different size than requested.
	h.commitBuffer(w.Headless(), geom.Sz(500, 500), 0, 0)
	assert.Equal(t, surfacestate.NotResizing(), st.Resize)

	h.shell.BeginResize(w, geom.Sz(10, 10))
	h.shell.EnsureInitialConfigure(w.Surface())
	assert.Equal(t, surfacestate.NotResizing(), st.Resize)
}

func TestCommitOrder(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(10, 10), 0, 0)

	assert.Equal(t, []string{"render", "import"}, h.rec.Order())
	assert.Equal(t, 1, h.rec.BufferCommits(w.Surface()))
	assert.Equal(t, 1, h.display.Popups().Commits(w.Surface()))
}

func TestSyncSubsurfaceDoesNotNotifyWindow(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(10, 10), 0, 0)

	synced := h.display.CreateSubsurface(w.Headless(), true)
	h.commitBuffer(synced, geom.Sz(5, 5), 0, 0)
	assert.Equal(t, 1, w.Commits())

	desynced := h.display.CreateSubsurface(w.Headless(), false)
	h.commitBuffer(desynced, geom.Sz(5, 5), 4, 4)
	assert.Equal(t, 2, w.Commits())

	loc, _ := h.space.ElementLocation(w)
	assert.Equal(t, geom.Pt(960, 540), loc, "only the root surface's delta moves the window")
}

func TestBufferDeltaMovesWindow(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(100, 100), 0, 0)
	before, _ := h.space.ElementLocation(w)

	h.commitBuffer(w.Headless(), geom.Sz(110, 120), -10, -20)

	after, _ := h.space.ElementLocation(w)
	assert.Equal(t, before.Add(geom.Pt(-10, -20)), after)

	st, _ := surfacestate.Lookup(w.Surface())
	require.NotNil(t, st.Geometry)
	assert.Equal(t, geom.Sz(110, 120), st.Geometry.Size)
}

func TestCursorHotspotAndDndIconFollowDelta(t *testing.T) {
	h := newHarness(t, defaultOutput())

	cursor := h.display.CreateSurface(h.client)
	h.shell.SetCursor(SurfaceCursor(cursor))
	attrs, ok := desktop.Get[CursorImageAttributes](cursor.Data())
	require.True(t, ok)
	attrs.Hotspot = geom.Pt(5, 5)

	icon := h.display.CreateSurface(h.client)
	h.shell.SetDndIcon(icon, geom.Pt(1, 1))

	h.commitBuffer(cursor, geom.Sz(16, 16), 2, 3)
	h.commitBuffer(icon, geom.Sz(32, 32), 2, 3)

	hotspot, ok := h.shell.CursorHotspot()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(3, 2), hotspot)

	dnd, ok := h.shell.DndIcon()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(3, 4), dnd.Offset)

	icon.Destroy()
	_, ok = h.shell.DndIcon()
	assert.False(t, ok)

	cursor.Destroy()
	assert.Equal(t, DefaultCursor(), h.shell.Cursor())
}

func TestPopupConfiguredOnce(t *testing.T) {
	h := newHarness(t, defaultOutput())
	parent := h.toplevel()
	h.commitBuffer(parent.Headless(), geom.Sz(100, 100), 0, 0)

	popup := h.display.CreatePopup(h.display.CreateSurface(h.client), parent.Headless(), desktop.PopupXDG)
	h.commitBuffer(popup.Surface().(*headless.Surface), geom.Sz(20, 20), 0, 0)
	h.commitBuffer(popup.Surface().(*headless.Surface), geom.Sz(20, 20), 0, 0)

	assert.Equal(t, 1, popup.Configures())
}

func TestInputMethodPopupNeedsNoConfigure(t *testing.T) {
	h := newHarness(t, defaultOutput())
	parent := h.toplevel()
	popup := h.display.CreatePopup(h.display.CreateSurface(h.client), parent.Headless(), desktop.PopupInputMethod)

	h.commitBuffer(popup.Surface().(*headless.Surface), geom.Sz(20, 20), 0, 0)

	assert.Equal(t, 0, popup.Configures())
}

func TestPopupWithDeadParentWaits(t *testing.T) {
	h := newHarness(t, defaultOutput())
	parent := h.toplevel()
	popup := h.display.CreatePopup(h.display.CreateSurface(h.client), parent.Headless(), desktop.PopupXDG)
	parent.Headless().Destroy()

	assert.NotPanics(t, func() {
		h.commitBuffer(popup.Surface().(*headless.Surface), geom.Sz(20, 20), 0, 0)
	})
	assert.Equal(t, 0, popup.Configures())
}

func TestPopupConfigureFailurePanics(t *testing.T) {
	h := newHarness(t, defaultOutput())
	parent := h.toplevel()
	popup := h.display.CreatePopup(h.display.CreateSurface(h.client), parent.Headless(), desktop.PopupXDG)
	popup.Refuse()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		h.commitBuffer(popup.Surface().(*headless.Surface), geom.Sz(20, 20), 0, 0)
	}()

	err, ok := recovered.(error)
	require.True(t, ok, "expected an error panic, got %v", recovered)
	assert.True(t, errors.Is(err, ErrInitialConfigure))
	assert.True(t, errors.Is(err, headless.ErrNotConfigurable))
}

func TestLayerSurfaceArrangedOnEveryCommit(t *testing.T) {
	out := defaultOutput()
	h := newHarness(t, out)

	l := h.display.CreateLayerSurface(h.display.CreateSurface(h.client), desktop.LayerTop, "bar")
	l.SetAnchor(headless.AnchorTop | headless.AnchorLeft | headless.AnchorRight)
	l.SetSize(geom.Sz(0, 40))
	l.SetExclusiveZone(40)
	require.True(t, h.shell.NewLayerSurface(l, nil))
	arranged := out.HeadlessLayerMap().Arranged()

	h.commitBuffer(l.Headless(), geom.Sz(1920, 40), 0, 0)
	h.commitBuffer(l.Headless(), geom.Sz(1920, 40), 0, 0)

	assert.Equal(t, arranged+2, out.HeadlessLayerMap().Arranged())
	assert.Equal(t, []geom.Size{geom.Sz(1920, 40)}, l.Configures(), "configured once")

	area, ok := h.shell.Placement().UsableArea(out)
	require.True(t, ok)
	assert.Equal(t, geom.Rect(0, 40, 1920, 1040), area)

	h.shell.LayerDestroyed(l)
	assert.Empty(t, out.LayerMap().Layers())
}

func TestLayerZoneChangeUpdatesUsableArea(t *testing.T) {
	out := defaultOutput()
	h := newHarness(t, out)

	l := h.display.CreateLayerSurface(h.display.CreateSurface(h.client), desktop.LayerTop, "bar")
	l.SetAnchor(headless.AnchorTop | headless.AnchorLeft | headless.AnchorRight)
	l.SetSize(geom.Sz(0, 30))
	l.SetExclusiveZone(30)
	require.True(t, h.shell.NewLayerSurface(l, nil))
	h.commitBuffer(l.Headless(), geom.Sz(1920, 30), 0, 0)

	area, _ := h.shell.Placement().UsableArea(out)
	require.Equal(t, geom.Rect(0, 30, 1920, 1050), area)

	l.SetExclusiveZone(80)
	h.commitBuffer(l.Headless(), geom.Sz(1920, 30), 0, 0)

	area, _ = h.shell.Placement().UsableArea(out)
	assert.Equal(t, geom.Rect(0, 80, 1920, 1000), area)
	assert.Len(t, l.Configures(), 1, "an unchanged size is not re-configured")
}

func TestLayerSurfaceWithoutOutput(t *testing.T) {
	h := newHarness(t)
	l := h.display.CreateLayerSurface(h.display.CreateSurface(h.client), desktop.LayerBackground, "wallpaper")
	assert.False(t, h.shell.NewLayerSurface(l, nil))
}

func TestLayerSurfaceOnNamedOutput(t *testing.T) {
	left := headless.NewOutput("L", geom.Sz(800, 600))
	right := headless.NewOutput("R", geom.Sz(800, 600))
	h := newHarness(t, left, right)

	l := h.display.CreateLayerSurface(h.display.CreateSurface(h.client), desktop.LayerOverlay, "osd")
	require.True(t, h.shell.NewLayerSurface(l, right))
	assert.Empty(t, left.LayerMap().Layers())
	assert.Len(t, right.LayerMap().Layers(), 1)

	assert.False(t, h.shell.NewLayerSurface(l, left), "a layer surface maps once")
}

func TestFullscreenClearsWhenWindowDies(t *testing.T) {
	out := defaultOutput()
	h := newHarness(t, out)
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(100, 100), 0, 0)

	geo, ok := h.shell.SetFullscreen(w, nil)
	require.True(t, ok)
	assert.Equal(t, geom.Rect(0, 0, 1920, 1080), geo)

	got, ok := h.shell.Fullscreen().Get(out)
	require.True(t, ok)
	assert.Equal(t, desktop.Window(w), got)

	w.Headless().Destroy()
	_, ok = h.shell.Fullscreen().Get(out)
	assert.False(t, ok)
	assert.Equal(t, 0, h.shell.Fullscreen().Len())
}

func TestFullscreenOutputGeometry(t *testing.T) {
	left := headless.NewOutput("L", geom.Sz(800, 600))
	right := headless.NewOutput("R", geom.Sz(1024, 768))
	h := newHarness(t, left, right)
	h.shell.SetPointer(geom.PointF{X: 900, Y: 10})
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(100, 100), 0, 0)

	geo, ok := FullscreenOutputGeometry(h.space, w.Surface(), nil)
	require.True(t, ok)
	assert.Equal(t, geom.Rect(800, 0, 1024, 768), geo)

	geo, ok = FullscreenOutputGeometry(h.space, w.Surface(), left)
	require.True(t, ok)
	assert.Equal(t, geom.Rect(0, 0, 800, 600), geo)

	stray := h.display.CreateSurface(h.client)
	_, ok = FullscreenOutputGeometry(h.space, stray, nil)
	assert.False(t, ok)

	found, ok := h.shell.WindowForSurface(w.Surface())
	require.True(t, ok)
	assert.Equal(t, desktop.Window(w), found)
}

func TestImplicitFenceBlocksCommit(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	fence := h.fence()

	w.Headless().Attach(headless.NewDmabuf(geom.Sz(100, 100), fence), 0, 0)
	w.Headless().Commit()

	assert.Equal(t, 1, w.Headless().Parked())
	assert.Equal(t, 1, h.loop.Pending())
	assert.Equal(t, 1, h.shell.PendingBlockers())
	assert.Empty(t, w.HeadlessToplevel().Configures())

	require.NoError(t, fence.Signal())
	require.NoError(t, h.loop.Dispatch(time.Second))

	assert.Equal(t, 0, w.Headless().Parked())
	assert.Equal(t, 0, h.shell.PendingBlockers())
	assert.Equal(t, 1, h.client.Cleared())
	assert.Len(t, w.HeadlessToplevel().Configures(), 1)
}

func TestAcquirePointPreferredOverImplicitFence(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	implicit, explicit := h.fence(), h.fence()

	s := w.Headless()
	s.Attach(headless.NewDmabuf(geom.Sz(100, 100), implicit), 0, 0)
	s.SetAcquirePoint(headless.NewSyncPoint(explicit))
	s.Commit()
	require.Equal(t, 1, s.Parked())

	require.NoError(t, explicit.Signal())
	require.NoError(t, h.loop.Dispatch(time.Second))

	assert.Equal(t, 0, s.Parked(), "the implicit fence is not waited on")
	assert.NotNil(t, s.Buffer())
}

func TestUnregisteredAcquirePointIsLogged(t *testing.T) {
	h := newHarness(t, defaultOutput())
	var logs bytes.Buffer
	h.shell.logger = slog.New(slog.NewTextHandler(&logs, nil))
	w := h.toplevel()
	require.NoError(t, h.loop.Close())

	s := w.Headless()
	s.Attach(headless.NewDmabuf(geom.Sz(100, 100), nil), 0, 0)
	s.SetAcquirePoint(headless.NewSyncPoint(h.fence()))
	s.Commit()

	assert.Equal(t, 0, s.Parked(), "the commit goes through unblocked")
	assert.Equal(t, 0, h.shell.PendingBlockers())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "acquire point not awaited")
}

func TestReadyDmabufCommitsImmediately(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()

	w.Headless().Attach(headless.NewDmabuf(geom.Sz(100, 100), nil), 0, 0)
	w.Headless().Commit()

	assert.Equal(t, 0, w.Headless().Parked())
	assert.Equal(t, 0, h.loop.Pending())
	assert.Len(t, w.HeadlessToplevel().Configures(), 1)
}

func TestDestroyCancelsBlocker(t *testing.T) {
	h := newHarness(t, defaultOutput())
	w := h.toplevel()
	fence := h.fence()

	w.Headless().Attach(headless.NewDmabuf(geom.Sz(100, 100), fence), 0, 0)
	w.Headless().Commit()
	require.Equal(t, 1, h.loop.Pending())

	w.Headless().Destroy()
	assert.Equal(t, 0, h.loop.Pending())
	assert.Equal(t, 0, h.shell.PendingBlockers())

	require.NoError(t, fence.Signal())
	require.NoError(t, h.loop.Dispatch(0))
	assert.Equal(t, 0, h.client.Cleared())
}

func TestFixupThroughShell(t *testing.T) {
	left := headless.NewOutput("L", geom.Sz(1000, 800))
	right := headless.NewOutput("R", geom.Sz(1000, 800))
	h := newHarness(t, left, right)

	h.shell.SetPointer(geom.PointF{X: 1500, Y: 400})
	w := h.toplevel()
	h.commitBuffer(w.Headless(), geom.Sz(100, 100), 0, 0)

	h.space.UnmapOutput(left)
	h.shell.SetPointer(geom.PointF{})
	moved := h.shell.FixupPositions()
	require.Len(t, moved, 1)

	loc, _ := h.space.ElementLocation(w)
	assert.Equal(t, geom.Pt(450, 350), loc)
}
