package appstate

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/imageio"
	"github.com/example/pixelmaker/internal/palette"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

// newTestEditor returns an editor on a w x h white canvas laid out in a
// 320x340 window, so each canvas pixel covers 320/max(w,h) screen pixels
// (capped at 32).
func newTestEditor(t *testing.T, w, h int, opts ...Option) *editor {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	a := New(append([]Option{WithImage(img), WithColor(red)}, opts...)...)
	eng, err := canvas.New(a.Image)
	if err != nil {
		t.Fatalf("canvas.New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	ed := newEditor(a, eng)
	ed.resizeWindow(image.Pt(320, 320+statusHeight))
	return ed
}

// at returns the screen position of the centre of canvas pixel p.
func at(ed *editor, p image.Point) (float32, float32) {
	r := ed.canvasRect()
	sz := ed.eng.Size()
	cw := r.Dx() / sz.X
	ch := r.Dy() / sz.Y
	return float32(r.Min.X + p.X*cw + cw/2), float32(r.Min.Y + p.Y*ch + ch/2)
}

func press(ed *editor, b mouse.Button, p image.Point) bool {
	x, y := at(ed, p)
	return ed.handleMouse(mouse.Event{X: x, Y: y, Button: b, Direction: mouse.DirPress})
}

func move(ed *editor, p image.Point) bool {
	x, y := at(ed, p)
	return ed.handleMouse(mouse.Event{X: x, Y: y, Direction: mouse.DirNone})
}

func release(ed *editor, p image.Point) {
	x, y := at(ed, p)
	ed.handleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
}

func ctrl(code key.Code, mods ...key.Modifiers) key.Event {
	m := key.ModControl
	for _, x := range mods {
		m |= x
	}
	return key.Event{Code: code, Modifiers: m, Direction: key.DirPress}
}

func pixelOf(t *testing.T, ed *editor, x, y int) color.RGBA {
	t.Helper()
	c, err := ed.eng.Pixel(image.Pt(x, y))
	if err != nil {
		t.Fatalf("Pixel: %v", err)
	}
	return c
}

func TestPencilStrokeIsOneUndo(t *testing.T) {
	ed := newTestEditor(t, 8, 8)
	if !press(ed, mouse.ButtonLeft, image.Pt(1, 1)) {
		t.Fatal("press did not request a repaint")
	}
	move(ed, image.Pt(5, 1))
	release(ed, image.Pt(5, 1))

	for x := 1; x <= 5; x++ {
		if got := pixelOf(t, ed, x, 1); got != red {
			t.Fatalf("pixel (%d,1) = %v, want red", x, got)
		}
	}
	ed.handleKey(ctrl(key.CodeZ))
	for x := 1; x <= 5; x++ {
		if got := pixelOf(t, ed, x, 1); got != white {
			t.Fatalf("pixel (%d,1) = %v after undo, want white", x, got)
		}
	}
	ed.handleKey(ctrl(key.CodeZ, key.ModShift))
	if got := pixelOf(t, ed, 3, 1); got != red {
		t.Fatalf("redo did not restore stroke: %v", got)
	}
}

func TestMoveWithoutPressDoesNotDraw(t *testing.T) {
	ed := newTestEditor(t, 4, 4)
	move(ed, image.Pt(2, 2))
	if ed.eng.CanUndo() {
		t.Fatal("hover drew on the canvas")
	}
}

func TestFillTool(t *testing.T) {
	ed := newTestEditor(t, 4, 4)
	ed.handleKey(key.Event{Rune: 'f', Direction: key.DirPress})
	if ed.tool != ToolFill {
		t.Fatalf("tool = %v", ed.tool)
	}
	press(ed, mouse.ButtonLeft, image.Pt(0, 0))
	if got := pixelOf(t, ed, 3, 3); got != red {
		t.Fatalf("fill did not reach corner: %v", got)
	}
}

func TestPipette(t *testing.T) {
	ed := newTestEditor(t, 4, 4)
	ed.eng.SetPixel(image.Pt(2, 2), color.RGBA{1, 2, 3, 255})
	press(ed, mouse.ButtonRight, image.Pt(2, 2))
	if ed.color != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("picked %v", ed.color)
	}
}

func TestClickOutsideCanvasIgnored(t *testing.T) {
	ed := newTestEditor(t, 4, 4)
	if ed.handleMouse(mouse.Event{X: 1, Y: 1, Button: mouse.ButtonLeft, Direction: mouse.DirPress}) {
		t.Fatal("click outside the canvas requested a repaint")
	}
}

func TestCyclePalette(t *testing.T) {
	p := &palette.Palette{Swatches: []palette.Swatch{{Name: "a", Color: color.RGBA{1, 0, 0, 255}}, {Name: "b", Color: color.RGBA{2, 0, 0, 255}}}}
	ed := newTestEditor(t, 2, 2, WithPalette(p))
	ed.handleKey(key.Event{Rune: ']', Direction: key.DirPress})
	if ed.color.R != 2 {
		t.Fatalf("color = %v after ]", ed.color)
	}
	ed.handleKey(key.Event{Rune: ']', Direction: key.DirPress})
	if ed.color.R != 1 {
		t.Fatalf("color = %v after wrap", ed.color)
	}
}

func TestResolutionKeysRefit(t *testing.T) {
	ed := newTestEditor(t, 16, 16)
	before := ed.zoom
	ed.handleKey(key.Event{Rune: '>', Modifiers: key.ModShift, Direction: key.DirPress})
	if ed.eng.Size() != image.Pt(32, 32) {
		t.Fatalf("size = %v", ed.eng.Size())
	}
	if ed.zoom >= before {
		t.Fatalf("zoom not refit: %v -> %v", before, ed.zoom)
	}
	ed.handleKey(ctrl(key.CodeZ))
	if ed.eng.Size() != image.Pt(16, 16) || ed.zoom != before {
		t.Fatalf("undo left size %v zoom %v", ed.eng.Size(), ed.zoom)
	}
}

func TestSaveNotifies(t *testing.T) {
	out := filepath.Join(t.TempDir(), "art.bmp")
	var (
		saved     string
		savedSize image.Point
	)
	ed := newTestEditor(t, 2, 2, WithOutput(out), WithOnSave(func(p string, size image.Point) { saved, savedSize = p, size }))
	ed.handleKey(ctrl(key.CodeS))
	if saved != out || savedSize != image.Pt(2, 2) {
		t.Fatalf("onSave got %q %v", saved, savedSize)
	}
	img, err := imageio.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Size() != image.Pt(2, 2) {
		t.Fatalf("saved size = %v", img.Bounds().Size())
	}
}

func TestCopyAndPaste(t *testing.T) {
	var stored image.Image
	origRead, origWrite := readClipboard, writeClipboard
	t.Cleanup(func() { readClipboard, writeClipboard = origRead, origWrite })
	writeClipboard = func(img image.Image) error { stored = img; return nil }
	readClipboard = func() (*image.RGBA, error) {
		return image.NewRGBA(image.Rect(0, 0, 3, 5)), nil
	}

	var copied bool
	ed := newTestEditor(t, 2, 2, WithOnCopy(func(image.Image) { copied = true }))
	ed.handleKey(ctrl(key.CodeC))
	if stored == nil || !copied {
		t.Fatal("copy did not reach the clipboard")
	}
	ed.handleKey(ctrl(key.CodeV))
	if ed.eng.Size() != image.Pt(3, 5) {
		t.Fatalf("size after paste = %v", ed.eng.Size())
	}

	readClipboard = func() (*image.RGBA, error) { return nil, errors.New("empty") }
	ed.handleKey(ctrl(key.CodeV))
	if !strings.Contains(ed.status(time.Now()), "paste: empty") {
		t.Fatalf("status = %q", ed.status(time.Now()))
	}
}

func TestStatusLine(t *testing.T) {
	ed := newTestEditor(t, 4, 2)
	got := ed.status(time.Now())
	if !strings.Contains(got, "pencil") || !strings.Contains(got, "#FF0000") || !strings.Contains(got, "4x2") {
		t.Fatalf("status = %q", got)
	}
}

func TestTitle(t *testing.T) {
	a := New(WithOutput("/tmp/sprite.png"))
	if got := a.Title(); got != "sprite.png - Image maker for angry programmers" {
		t.Fatalf("title = %q", got)
	}
}

func TestLine(t *testing.T) {
	var pts []image.Point
	line(image.Pt(0, 0), image.Pt(3, 1), func(p image.Point) { pts = append(pts, p) })
	if len(pts) != 4 || pts[0] != image.Pt(0, 0) || pts[3] != image.Pt(3, 1) {
		t.Fatalf("line = %v", pts)
	}
}

func TestPaintChrome(t *testing.T) {
	ed := newTestEditor(t, 4, 4)
	dst := image.NewRGBA(image.Rectangle{Max: ed.window})
	r := ed.canvasRect()
	paintChrome(dst, ed, r, time.Now())
	if got := dst.RGBAAt(0, 0); got != backgroundColor {
		t.Fatalf("background = %v", got)
	}
	if got := dst.RGBAAt(r.Min.X, r.Min.Y); got != backdrop.Light {
		t.Fatalf("backdrop = %v", got)
	}
}

func TestKeymapLookup(t *testing.T) {
	k := newKeymap()
	k.register("a", shortcutList{{Rune: 'x'}}, func() bool { return true })
	k.register("b", shortcutList{{Code: key.CodeZ, Modifiers: key.ModControl}}, func() bool { return true })
	for _, tc := range []struct {
		e    key.Event
		want string
	}{
		{key.Event{Rune: 'x'}, "a"},
		{key.Event{Rune: 'X', Modifiers: key.ModShift}, "a"},
		{key.Event{Rune: 'z', Code: key.CodeZ, Modifiers: key.ModControl}, "b"},
	} {
		if got, ok := k.lookup(tc.e); !ok || got != tc.want {
			t.Errorf("lookup(%+v) = %q, %v; want %q", tc.e, got, ok, tc.want)
		}
	}
	if _, ok := k.lookup(key.Event{Rune: 'x', Modifiers: key.ModControl}); ok {
		t.Error("ctrl+x matched a plain rune shortcut")
	}
}
