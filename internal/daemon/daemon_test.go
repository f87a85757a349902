package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/wlshell/internal/config"
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/ipc"
	"github.com/1broseidon/wlshell/internal/logging"
	"github.com/1broseidon/wlshell/internal/platform"
)

type fakeHost struct {
	displays []platform.Display
	x, y     int
	closed   bool
}

func (h *fakeHost) Displays() ([]platform.Display, error) { return h.displays, nil }
func (h *fakeHost) Pointer() (int, int, error)            { return h.x, h.y, nil }
func (h *fakeHost) Close()                                { h.closed = true }

func twoOutputConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Outputs = []config.OutputConfig{
		{Name: "DP-1", Width: 1920, Height: 1080},
		{Name: "DP-2", Width: 1280, Height: 1024},
	}
	cfg.Layers = []config.LayerConfig{{
		Namespace:     "waybar",
		Output:        "DP-1",
		Layer:         "top",
		Anchor:        []string{"top", "left", "right"},
		ExclusiveZone: 30,
		Height:        30,
	}}
	return cfg
}

func newDaemon(t *testing.T, opts Options) *Daemon {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	d, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func ptr(v float64) *float64 { return &v }

func TestNewBuildsOutputsAndPanels(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})

	outputs := d.Outputs().Outputs
	require.Len(t, outputs, 2)
	assert.Equal(t, "DP-1", outputs[0].Name)
	assert.Equal(t, ipc.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, outputs[0].Geometry)
	assert.Equal(t, ipc.Rect{X: 0, Y: 30, Width: 1920, Height: 1050}, outputs[0].Usable)
	assert.Equal(t, []ipc.LayerInfo{{Namespace: "waybar", Layer: "top"}}, outputs[0].Layers)

	assert.Equal(t, "DP-2", outputs[1].Name)
	assert.Equal(t, ipc.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}, outputs[1].Geometry)
	assert.Equal(t, outputs[1].Geometry, outputs[1].Usable)

	require.Len(t, d.layers, 1)
	assert.Equal(t, []geom.Size{geom.Sz(1920, 30)}, d.layers[0].surface.Configures())
}

func TestBadLayerIsSkipped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layers = []config.LayerConfig{
		{Namespace: "ghost", Output: "nowhere", Layer: "top"},
		{Namespace: "bg", Layer: "background"},
	}
	d := newDaemon(t, Options{Config: cfg})
	require.Len(t, d.layers, 1)
	assert.Equal(t, config.DefaultOutputName, d.layers[0].output)
}

func TestMapWindowCentresInUsableArea(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})

	info, err := d.MapWindow(ipc.MapWindowPayload{Title: "term", Width: 400, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, "term", info.Title)
	assert.Equal(t, ipc.Rect{X: 760, Y: 405, Width: 400, Height: 300}, info.Geometry)
	assert.Equal(t, 1, info.Ordinal)
	assert.True(t, info.Activated)
	assert.Equal(t, []string{"DP-1"}, info.Outputs)

	w := d.windows[desktop.SurfaceID(info.ID)]
	require.NotNil(t, w)
	assert.Len(t, w.HeadlessToplevel().Configures(), 1)

	status := d.Status()
	assert.Equal(t, 1, status.Windows)
	assert.Equal(t, 1, status.PlacedWindows)
	assert.Equal(t, 2, status.Outputs)
}

func TestListingWindowsKeepsOrdinals(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})
	info, err := d.MapWindow(ipc.MapWindowPayload{Width: 100, Height: 100})
	require.NoError(t, err)

	session := d.shell.Placement().Session()
	session.Forget(desktop.SurfaceID(info.ID))
	count := session.Count()

	windows := d.Windows().Windows
	require.Len(t, windows, 1)
	assert.Equal(t, 0, windows[0].Ordinal, "an untracked window reports no ordinal")
	assert.Equal(t, count, session.Count())
	assert.Equal(t, 0, session.Tracked())
}

func TestMapWindowRejectsEmptySize(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})
	_, err := d.MapWindow(ipc.MapWindowPayload{Width: 0, Height: 10})
	assert.Error(t, err)
	assert.Empty(t, d.Windows().Windows)
}

func TestRemoveOutputReplacesStrandedWindows(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})

	_, err := d.MapWindow(ipc.MapWindowPayload{Width: 400, Height: 300})
	require.NoError(t, err)
	second, err := d.MapWindow(ipc.MapWindowPayload{
		Width: 400, Height: 300,
		PointerX: ptr(2500), PointerY: ptr(500),
	})
	require.NoError(t, err)
	// Ordinal 2 is one cell right of the centre of DP-2.
	assert.Equal(t, ipc.Rect{X: 2786, Y: 362, Width: 400, Height: 300}, second.Geometry)
	assert.Equal(t, []string{"DP-2"}, second.Outputs)

	require.NoError(t, d.RemoveOutput(ipc.RemoveOutputPayload{Name: "DP-2"}))
	assert.Len(t, d.Outputs().Outputs, 1)

	var moved ipc.WindowInfo
	for _, w := range d.Windows().Windows {
		if w.ID == second.ID {
			moved = w
		}
	}
	// Same ordinal, now on DP-1 below its bar.
	assert.Equal(t, ipc.Rect{X: 1400, Y: 405, Width: 400, Height: 300}, moved.Geometry)
	assert.Equal(t, []string{"DP-1"}, moved.Outputs)

	err = d.RemoveOutput(ipc.RemoveOutputPayload{Name: "DP-2"})
	assert.Error(t, err)
}

func TestAddOutputHotplugAndResize(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})

	info, err := d.AddOutput(ipc.AddOutputPayload{Name: "HDMI-1", Width: 800, Height: 600})
	require.NoError(t, err)
	assert.Equal(t, ipc.Rect{X: 3200, Y: 0, Width: 800, Height: 600}, info.Geometry)

	info, err = d.AddOutput(ipc.AddOutputPayload{Name: "DP-1", Width: 2560, Height: 1440})
	require.NoError(t, err)
	assert.Equal(t, ipc.Rect{X: 0, Y: 0, Width: 2560, Height: 1440}, info.Geometry)
	assert.Equal(t, ipc.Rect{X: 0, Y: 30, Width: 2560, Height: 1410}, info.Usable)

	// The bar was told about the new width once.
	assert.Equal(t, []geom.Size{geom.Sz(1920, 30), geom.Sz(2560, 30)}, d.layers[0].surface.Configures())

	outputs := d.Outputs().Outputs
	require.Len(t, outputs, 3)
	assert.Equal(t, 2560, outputs[1].Geometry.X)
	assert.Equal(t, 3840, outputs[2].Geometry.X)

	_, err = d.AddOutput(ipc.AddOutputPayload{Name: "", Width: 1, Height: 1})
	assert.Error(t, err)
}

func TestCloseWindowForgetsIt(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})
	info, err := d.MapWindow(ipc.MapWindowPayload{Width: 100, Height: 100})
	require.NoError(t, err)

	require.NoError(t, d.CloseWindow(ipc.CloseWindowPayload{ID: info.ID}))
	assert.Empty(t, d.Windows().Windows)
	assert.Equal(t, 0, d.Status().Windows)
	assert.Equal(t, 0, d.Status().PlacedWindows)

	assert.Error(t, d.CloseWindow(ipc.CloseWindowPayload{ID: info.ID}))
}

func TestReconcileSweepsDeadFullscreen(t *testing.T) {
	d := newDaemon(t, Options{Config: twoOutputConfig()})
	info, err := d.MapWindow(ipc.MapWindowPayload{Width: 100, Height: 100})
	require.NoError(t, err)

	w := d.windows[desktop.SurfaceID(info.ID)]
	_, ok := d.shell.SetFullscreen(w, nil)
	require.True(t, ok)
	assert.Equal(t, 1, d.Status().Fullscreen)

	require.NoError(t, d.CloseWindow(ipc.CloseWindowPayload{ID: info.ID}))
	stats := d.Reconcile()
	assert.Equal(t, 1, stats.FullscreenCleared)
	assert.Equal(t, 0, d.Status().Fullscreen)

	assert.Equal(t, ReconcileStats{}, d.Reconcile())
}

func TestHostImportReservesDockEdges(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Outputs = nil
	cfg.X11.ImportOutputs = true
	host := &fakeHost{
		displays: []platform.Display{{
			Name:     "eDP-1",
			Bounds:   geom.Rect(0, 0, 1920, 1080),
			Reserved: platform.Insets{Left: 64, Top: 30},
		}},
		x: 100, y: 200,
	}
	d := newDaemon(t, Options{Config: cfg, Host: host})

	outputs := d.Outputs().Outputs
	require.Len(t, outputs, 1)
	assert.Equal(t, "eDP-1", outputs[0].Name)
	assert.Equal(t, ipc.Rect{X: 64, Y: 30, Width: 1856, Height: 1050}, outputs[0].Usable)
	assert.Len(t, outputs[0].Layers, 2)
	for _, l := range outputs[0].Layers {
		assert.Equal(t, reservedNamespace, l.Namespace)
	}
	assert.Equal(t, geom.PointF{X: 100, Y: 200}, d.shell.Pointer())

	require.NoError(t, d.Close())
	assert.True(t, host.closed)
}

func TestHostOutputsWinOverConfiguredNames(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.X11.ImportOutputs = true
	cfg.Outputs = []config.OutputConfig{
		{Name: "eDP-1", Width: 640, Height: 480},
		{Name: "VIRTUAL-1", Width: 800, Height: 600},
	}
	host := &fakeHost{displays: []platform.Display{{
		Name:   "eDP-1",
		Bounds: geom.Rect(0, 0, 1920, 1080),
	}}}
	d := newDaemon(t, Options{Config: cfg, Host: host})

	outputs := d.Outputs().Outputs
	require.Len(t, outputs, 2)
	assert.Equal(t, 1920, outputs[0].Geometry.Width)
	assert.Equal(t, "VIRTUAL-1", outputs[1].Name)
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestReloadAppliesOutputsAndLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "outputs:\n  - {name: DP-1, width: 1920, height: 1080}\n")
	res, err := config.LoadFromPath(path)
	require.NoError(t, err)

	d := newDaemon(t, Options{Config: res.Config, ConfigPath: path})
	_, err = d.AddOutput(ipc.AddOutputPayload{Name: "HOTPLUG", Width: 640, Height: 480})
	require.NoError(t, err)

	writeFile(t, path, strings.Join([]string{
		"outputs:",
		"  - {name: DP-3, width: 1024, height: 768}",
		"layers:",
		"  - {namespace: dock, output: DP-3, layer: bottom, anchor: [bottom], exclusive_zone: 48, height: 48}",
		"",
	}, "\n"))
	require.NoError(t, d.Reload())

	var names []string
	for _, o := range d.Outputs().Outputs {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"HOTPLUG", "DP-3"}, names, "DP-1 was dropped, the hot-plugged output stays")

	dp3 := d.Outputs().Outputs[1]
	assert.Equal(t, 720, dp3.Usable.Height)
	assert.Equal(t, []ipc.LayerInfo{{Namespace: "dock", Layer: "bottom"}}, dp3.Layers)

	writeFile(t, path, "outputs: []\nunknown: 1\n")
	assert.Error(t, d.Reload())
	assert.Len(t, d.Outputs().Outputs, 2, "a failed reload changes nothing")
}

func TestRunServesIPCUntilCancelled(t *testing.T) {
	dir, err := os.MkdirTemp("", "wlsd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	pidPath := filepath.Join(dir, "wlshell.pid")
	d := newDaemon(t, Options{
		Config:     twoOutputConfig(),
		SocketPath: socket,
		PIDPath:    pidPath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	client := ipc.NewClientWithSocket(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 5*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(pidPath)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	info, err := client.MapWindow(ipc.MapWindowPayload{Title: "a", Width: 400, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, 760, info.Geometry.X)

	windows, err := client.GetWindows()
	require.NoError(t, err)
	require.Len(t, windows.Windows, 1)

	fix, err := client.Fixup()
	require.NoError(t, err)
	assert.Empty(t, fix.Moved)

	require.NoError(t, client.RemoveOutput("DP-2"))
	outputs, err := client.GetOutputs()
	require.NoError(t, err)
	assert.Len(t, outputs.Outputs, 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	_, err = os.Stat(pidPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(socket)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReconcilerRecoversFromPanics(t *testing.T) {
	direct := func(_ context.Context, fn func()) error {
		fn()
		return nil
	}
	r := NewReconciler(ReconcilerConfig{Logger: logging.Discard()}, direct, func() ReconcileStats {
		panic("boom")
	})
	assert.Equal(t, 10*time.Second, r.interval)
	assert.NotPanics(t, func() { r.ReconcileNow(context.Background()) })

	r = NewReconciler(ReconcilerConfig{Logger: logging.Discard()}, direct, func() ReconcileStats {
		return ReconcileStats{FullscreenCleared: 2}
	})
	assert.Equal(t, 2, r.ReconcileNow(context.Background()).FullscreenCleared)

	failing := func(context.Context, func()) error { return errors.New("loop closed") }
	r = NewReconciler(ReconcilerConfig{Logger: logging.Discard()}, failing, func() ReconcileStats {
		t.Fatal("pass must not run")
		return ReconcileStats{}
	})
	assert.Equal(t, ReconcileStats{}, r.ReconcileNow(context.Background()))
}

func TestReconcilerTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	passes := make(chan struct{}, 4)
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond, Logger: logging.Discard()},
		func(_ context.Context, fn func()) error {
			fn()
			return nil
		},
		func() ReconcileStats {
			select {
			case passes <- struct{}{}:
			default:
			}
			return ReconcileStats{}
		})
	go r.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-passes:
		case <-time.After(2 * time.Second):
			t.Fatal("reconciler did not tick")
		}
	}
}
