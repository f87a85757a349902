package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/wlshell/internal/ipc"
)

// viewport maps global compositor coordinates onto a character canvas.
type viewport struct {
	minX, minY       int
	spanW, spanH     int
	canvasW, canvasH int
}

func newViewport(outputs []ipc.OutputInfo, canvasW, canvasH int) viewport {
	minX, minY := outputs[0].Geometry.X, outputs[0].Geometry.Y
	maxX, maxY := minX+outputs[0].Geometry.Width, minY+outputs[0].Geometry.Height
	for _, o := range outputs[1:] {
		g := o.Geometry
		minX = min(minX, g.X)
		minY = min(minY, g.Y)
		maxX = max(maxX, g.X+g.Width)
		maxY = max(maxY, g.Y+g.Height)
	}
	return viewport{
		minX:    minX,
		minY:    minY,
		spanW:   max(maxX-minX, 1),
		spanH:   max(maxY-minY, 1),
		canvasW: canvasW,
		canvasH: canvasH,
	}
}

// project maps r to canvas cells inside the one-cell frame.
func (v viewport) project(r ipc.Rect) (x1, y1, x2, y2 int) {
	innerW, innerH := v.canvasW-2, v.canvasH-2
	x1 = 1 + (r.X-v.minX)*innerW/v.spanW
	y1 = 1 + (r.Y-v.minY)*innerH/v.spanH
	x2 = (r.X + r.Width - v.minX) * innerW / v.spanW
	y2 = (r.Y + r.Height - v.minY) * innerH / v.spanH
	return x1, y1, x2, y2
}

// renderLayout draws every output scaled to fit the canvas with the
// windows on top, labelled by ID. The selected output is drawn with a
// heavy border.
func renderLayout(outputs []ipc.OutputInfo, windows []ipc.WindowInfo, selected string, width, height int) []string {
	if width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}
	if len(outputs) == 0 {
		lines := emptyCanvas(width, height)
		lines[height/2] = centred("no outputs", width)
		return lines
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	vp := newViewport(outputs, width, height)

	for _, o := range outputs {
		x1, y1, x2, y2 := vp.project(o.Geometry)
		style := lightBox
		if o.Name == selected {
			style = heavyBox
		}
		drawBox(canvas, x1, y1, x2, y2, style)
		drawLabel(canvas, x1+1, y1, x2, o.Name)
	}

	for _, w := range windows {
		x1, y1, x2, y2 := vp.project(w.Geometry)
		drawBox(canvas, x1, y1, x2, y2, lightBox)
		drawLabel(canvas, (x1+x2)/2-len(fmt.Sprint(w.ID))/2, (y1+y2)/2, x2, fmt.Sprint(w.ID))
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

type boxStyle struct {
	h, v, tl, tr, bl, br rune
}

var (
	lightBox = boxStyle{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox = boxStyle{'━', '┃', '┏', '┓', '┗', '┛'}
)

func drawBox(canvas [][]rune, x1, y1, x2, y2 int, s boxStyle) {
	canvasH := len(canvas)
	canvasW := len(canvas[0])

	// Clamp to canvas bounds
	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	// Need at least 2x2 for a box
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = s.h
		canvas[y2][x] = s.h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = s.v
		canvas[y][x2] = s.v
	}
	canvas[y1][x1] = s.tl
	canvas[y1][x2] = s.tr
	canvas[y2][x1] = s.bl
	canvas[y2][x2] = s.br
}

// drawLabel writes text at (x, y), stopping before column limit.
func drawLabel(canvas [][]rune, x, y, limit int, text string) {
	if y <= 0 || y >= len(canvas)-1 {
		return
	}
	limit = min(limit, len(canvas[y])-1)
	for i, r := range []rune(text) {
		if x+i <= 0 {
			continue
		}
		if x+i >= limit {
			return
		}
		canvas[y][x+i] = r
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func centred(text string, width int) string {
	pad := (width - len(text)) / 2
	if pad < 0 {
		return text[:width]
	}
	return strings.Repeat(" ", pad) + text + strings.Repeat(" ", width-pad-len(text))
}

func emptyCanvas(width, height int) []string {
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
