package x11

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/wlshell/internal/geom"
)

// Monitor is an active RandR CRTC in root window coordinates.
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rectangle
}

// Struts is the space docks reserve along each edge of a monitor.
type Struts struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Empty reports whether no edge is reserved.
func (s Struts) Empty() bool {
	return s == Struts{}
}

// GetMonitors lists the active CRTCs, ordered left to right then top to
// bottom.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	res, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   c.outputName(info.Outputs[0], res.ConfigTimestamp, i),
			Bounds: geom.Rect(int(info.X), int(info.Y), int(info.Width), int(info.Height)),
		})
	}

	sortMonitors(monitors)
	return monitors, nil
}

func (c *Connection) outputName(out randr.Output, ts xproto.Timestamp, crtc int) string {
	info, err := randr.GetOutputInfo(c.XUtil.Conn(), out, ts).Reply()
	if err != nil || len(info.Name) == 0 {
		return fmt.Sprintf("X11-%d", crtc)
	}
	return string(info.Name)
}

func sortMonitors(monitors []Monitor) {
	slices.SortStableFunc(monitors, func(a, b Monitor) int {
		if c := cmp.Compare(a.Bounds.Loc.X, b.Bounds.Loc.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Bounds.Loc.Y, b.Bounds.Loc.Y)
	})
}

// DockStruts collects the struts of every dock window that reaches into
// monitor. Docks that only set _NET_WM_STRUT span the whole root window.
func (c *Connection) DockStruts(monitor Monitor) (Struts, error) {
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Struts{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	root := geom.Sz(int(g.Width), int(g.Height))

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return Struts{}, fmt.Errorf("failed to list clients: %w", err)
	}

	var struts Struts
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}
		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			full, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = fullStrut(full, root)
		}
		struts.add(monitor.Bounds, root, sp)
	}
	return struts, nil
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	return err == nil && slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK")
}

func fullStrut(s *ewmh.WmStrut, root geom.Size) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(root.H - 1),
		RightEndY:  uint(root.H - 1),
		TopEndX:    uint(root.W - 1),
		BottomEndX: uint(root.W - 1),
	}
}

// strutRects returns the root window areas sp reserves, in top, bottom,
// left, right order. Strut start and end coordinates are inclusive.
func strutRects(sp *ewmh.WmStrutPartial, root geom.Size) [4]geom.Rectangle {
	span := func(start, end uint) (int, int) {
		return int(start), int(end) - int(start) + 1
	}
	tx, tw := span(sp.TopStartX, sp.TopEndX)
	bx, bw := span(sp.BottomStartX, sp.BottomEndX)
	ly, lh := span(sp.LeftStartY, sp.LeftEndY)
	ry, rh := span(sp.RightStartY, sp.RightEndY)
	return [4]geom.Rectangle{
		geom.Rect(tx, 0, tw, int(sp.Top)),
		geom.Rect(bx, root.H-int(sp.Bottom), bw, int(sp.Bottom)),
		geom.Rect(0, ly, int(sp.Left), lh),
		geom.Rect(root.W-int(sp.Right), ry, int(sp.Right), rh),
	}
}

// add grows s by the part of sp inside monitor. Docks on the same edge
// overlap rather than stack.
func (s *Struts) add(monitor geom.Rectangle, root geom.Size, sp *ewmh.WmStrutPartial) {
	r := strutRects(sp, root)
	s.Top = max(s.Top, overlap(monitor, r[0]).H)
	s.Bottom = max(s.Bottom, overlap(monitor, r[1]).H)
	s.Left = max(s.Left, overlap(monitor, r[2]).W)
	s.Right = max(s.Right, overlap(monitor, r[3]).W)
}

func overlap(a, b geom.Rectangle) geom.Size {
	isect, ok := a.Intersection(b)
	if !ok {
		return geom.Size{}
	}
	return isect.Size
}
