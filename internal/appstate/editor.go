package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/clipboard"
	"github.com/example/pixelmaker/internal/palette"
	"github.com/example/pixelmaker/internal/render"
)

// Tool selects what a left click on the canvas does.
type Tool int

const (
	ToolPencil Tool = iota
	ToolFill
	ToolPipette
)

func (t Tool) String() string {
	switch t {
	case ToolPencil:
		return "pencil"
	case ToolFill:
		return "fill"
	case ToolPipette:
		return "pipette"
	}
	return "unknown"
}

// clipboard access, replaced in tests
var (
	readClipboard  = clipboard.ReadImage
	writeClipboard = clipboard.WriteImage
)

type editor struct {
	app *AppState
	eng *canvas.Engine

	window image.Point
	zoom   float64
	pan    image.Point

	tool     Tool
	color    color.RGBA
	swatch   int
	drawing  bool
	last     image.Point
	panning  bool
	panStart image.Point
	panFrom  image.Point

	message      string
	messageUntil time.Time

	keys *keymap
}

func newEditor(a *AppState, eng *canvas.Engine) *editor {
	ed := &editor{app: a, eng: eng, color: a.Color, zoom: 1}
	ed.keys = ed.bindings()
	return ed
}

// view is the window area available to the canvas.
func (ed *editor) view() image.Rectangle {
	return image.Rect(0, 0, ed.window.X, max(ed.window.Y-statusHeight, 0))
}

func (ed *editor) canvasRect() image.Rectangle {
	return render.CanvasRect(ed.view(), ed.eng.Size(), ed.zoom, ed.pan)
}

func (ed *editor) resizeWindow(sz image.Point) {
	ed.window = sz
	ed.fit()
}

// fit resets zoom and pan so the whole canvas is visible.
func (ed *editor) fit() {
	ed.zoom = render.FitZoom(ed.eng.Size(), ed.view().Size())
	ed.pan = image.Point{}
}

func (ed *editor) say(format string, args ...any) {
	ed.message = fmt.Sprintf(format, args...)
	ed.messageUntil = time.Now().Add(2 * time.Second)
	log.Print(ed.message)
}

func (ed *editor) pixelAt(e mouse.Event) (image.Point, bool) {
	return render.ScreenToPixel(ed.canvasRect(), ed.eng.Size(), image.Pt(int(e.X), int(e.Y)))
}

// handleMouse applies a pointer event and reports whether to repaint.
func (ed *editor) handleMouse(e mouse.Event) bool {
	switch {
	case e.Button == mouse.ButtonMiddle && e.Direction == mouse.DirPress:
		ed.panning = true
		ed.panStart = image.Pt(int(e.X), int(e.Y))
		ed.panFrom = ed.pan
		return false
	case e.Button == mouse.ButtonMiddle && e.Direction == mouse.DirRelease:
		ed.panning = false
		return false
	case e.Button == mouse.ButtonWheelUp && e.Direction == mouse.DirPress:
		return ed.zoomBy(2)
	case e.Button == mouse.ButtonWheelDown && e.Direction == mouse.DirPress:
		return ed.zoomBy(0.5)
	case e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress:
		return ed.pick(e)
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		return ed.press(e)
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		ed.drawing = false
		return false
	case e.Direction == mouse.DirNone:
		if ed.panning {
			ed.pan = ed.panFrom.Add(image.Pt(int(e.X), int(e.Y)).Sub(ed.panStart))
			return true
		}
		if ed.drawing {
			return ed.drag(e)
		}
	}
	return false
}

func (ed *editor) press(e mouse.Event) bool {
	p, ok := ed.pixelAt(e)
	if !ok {
		return false
	}
	switch ed.tool {
	case ToolPencil:
		ed.eng.StartStroke()
		ed.drawing = true
		ed.last = p
		ed.plot(p)
	case ToolFill:
		if err := ed.eng.FloodFill(p, ed.color); err != nil {
			ed.say("fill: %v", err)
		}
	case ToolPipette:
		return ed.pick(e)
	}
	return true
}

func (ed *editor) pick(e mouse.Event) bool {
	p, ok := ed.pixelAt(e)
	if !ok {
		return false
	}
	c, err := ed.eng.Pixel(p)
	if err != nil {
		return false
	}
	ed.color = c
	ed.say("picked %s", palette.Hex(c))
	return true
}

// drag continues the current stroke with a line to the pointer so fast
// movements leave no gaps.
func (ed *editor) drag(e mouse.Event) bool {
	p, ok := ed.pixelAt(e)
	if !ok || p == ed.last {
		return false
	}
	line(ed.last, p, func(q image.Point) {
		if q != ed.last {
			ed.plot(q)
		}
	})
	ed.last = p
	return true
}

func (ed *editor) plot(p image.Point) {
	if err := ed.eng.BlendPixel(p, ed.color); err != nil {
		log.Printf("draw: %v", err)
	}
}

// line calls fn for every pixel from a to b inclusive.
func line(a, b image.Point, fn func(image.Point)) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	for {
		fn(a)
		if a == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			a.X += sx
		}
		if e2 <= dx {
			err += dx
			a.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (ed *editor) zoomBy(f float64) bool {
	z := ed.zoom * f
	if z < 0.125 || z > render.MaxZoom {
		return false
	}
	ed.zoom = z
	return true
}

// handleKey applies a key press and reports whether to repaint.
func (ed *editor) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	name, ok := ed.keys.lookup(e)
	if !ok {
		return false
	}
	return ed.keys.actions[name]()
}

func (ed *editor) bindings() *keymap {
	k := newKeymap()
	k.register("pencil", shortcutList{{Rune: 'p'}, {Rune: 'b'}}, func() bool { ed.tool = ToolPencil; return true })
	k.register("fill", shortcutList{{Rune: 'f'}, {Rune: 'g'}}, func() bool { ed.tool = ToolFill; return true })
	k.register("pipette", shortcutList{{Rune: 'i'}}, func() bool { ed.tool = ToolPipette; return true })
	k.register("next color", shortcutList{{Rune: ']'}}, func() bool { return ed.cycle(1) })
	k.register("prev color", shortcutList{{Rune: '['}}, func() bool { return ed.cycle(-1) })
	k.register("undo", shortcutList{{Code: key.CodeZ, Modifiers: key.ModControl}}, func() bool {
		return ed.retrace(ed.eng.Undo, "undo")
	})
	k.register("redo", shortcutList{
		{Code: key.CodeY, Modifiers: key.ModControl},
		{Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift},
	}, func() bool {
		return ed.retrace(ed.eng.Redo, "redo")
	})
	k.register("save", shortcutList{{Code: key.CodeS, Modifiers: key.ModControl}}, ed.save)
	k.register("copy", shortcutList{{Code: key.CodeC, Modifiers: key.ModControl}}, ed.copy)
	k.register("paste", shortcutList{{Code: key.CodeV, Modifiers: key.ModControl}}, ed.paste)
	k.register("zoom in", shortcutList{{Rune: '+'}, {Rune: '='}}, func() bool { return ed.zoomBy(2) })
	k.register("zoom out", shortcutList{{Rune: '-'}}, func() bool { return ed.zoomBy(0.5) })
	k.register("fit", shortcutList{{Rune: '0'}}, func() bool { ed.fit(); return true })
	k.register("double resolution", shortcutList{{Rune: '>'}}, func() bool { return ed.scale(2) })
	k.register("halve resolution", shortcutList{{Rune: '<'}}, func() bool { return ed.scale(0.5) })
	return k
}

func (ed *editor) cycle(step int) bool {
	if ed.app.Palette == nil || len(ed.app.Palette.Swatches) == 0 {
		return false
	}
	ed.swatch += step
	s := ed.app.Palette.At(ed.swatch)
	ed.color = s.Color
	ed.say("%s %s", s.Name, palette.Hex(s.Color))
	return true
}

func (ed *editor) retrace(fn func() (bool, error), what string) bool {
	resized, err := fn()
	if err != nil {
		ed.say("%s: %v", what, err)
		return true
	}
	if resized {
		ed.fit()
	}
	return true
}

func (ed *editor) scale(f float64) bool {
	if err := ed.eng.ChangeResolution(f); err != nil {
		ed.say("scale: %v", err)
		return true
	}
	ed.fit()
	return true
}

func (ed *editor) save() bool {
	if err := ed.eng.SaveAsImage(context.Background(), ed.app.Output); err != nil {
		ed.say("save: %v", err)
		return true
	}
	ed.say("saved %s", ed.app.Output)
	if ed.app.onSave != nil {
		ed.app.onSave(ed.app.Output, ed.eng.Size())
	}
	return true
}

func (ed *editor) copy() bool {
	img := ed.eng.Content()
	if err := writeClipboard(img); err != nil {
		ed.say("copy: %v", err)
		return true
	}
	ed.say("image copied to clipboard")
	if ed.app.onCopy != nil {
		ed.app.onCopy(img)
	}
	return true
}

func (ed *editor) paste() bool {
	img, err := readClipboard()
	if err != nil {
		ed.say("paste: %v", err)
		return true
	}
	if err := ed.eng.SetToImage(img); err != nil {
		ed.say("paste: %v", err)
		return true
	}
	ed.fit()
	ed.say("pasted %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	return true
}

// status is the text shown below the canvas.
func (ed *editor) status(now time.Time) string {
	if ed.message != "" && now.Before(ed.messageUntil) {
		return ed.message
	}
	sz := ed.eng.Size()
	return fmt.Sprintf("%s  %s  %dx%d  %gx", ed.tool, palette.Hex(ed.color), sz.X, sz.Y, ed.zoom)
}
