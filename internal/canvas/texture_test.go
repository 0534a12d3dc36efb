package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"golang.org/x/exp/shiny/screen"
)

// memScreen hands out in-memory textures and buffers and tracks which are
// still alive.
type memScreen struct {
	live map[any]image.Point
}

func newMemScreen() *memScreen { return &memScreen{live: map[any]image.Point{}} }

func (s *memScreen) NewBuffer(size image.Point) (screen.Buffer, error) {
	b := &memBuffer{s: s, rgba: image.NewRGBA(image.Rectangle{Max: size})}
	s.live[b] = size
	return b, nil
}

func (s *memScreen) NewTexture(size image.Point) (screen.Texture, error) {
	t := &memTexture{s: s, rgba: image.NewRGBA(image.Rectangle{Max: size})}
	s.live[t] = size
	return t, nil
}

func (s *memScreen) NewWindow(*screen.NewWindowOptions) (screen.Window, error) {
	return nil, nil
}

type memBuffer struct {
	s    *memScreen
	rgba *image.RGBA
}

func (b *memBuffer) Release()                { delete(b.s.live, b) }
func (b *memBuffer) Size() image.Point       { return b.rgba.Bounds().Size() }
func (b *memBuffer) Bounds() image.Rectangle { return b.rgba.Bounds() }
func (b *memBuffer) RGBA() *image.RGBA       { return b.rgba }

type memTexture struct {
	s    *memScreen
	rgba *image.RGBA
}

func (t *memTexture) Release()                { delete(t.s.live, t) }
func (t *memTexture) Size() image.Point       { return t.rgba.Bounds().Size() }
func (t *memTexture) Bounds() image.Rectangle { return t.rgba.Bounds() }

func (t *memTexture) Upload(dp image.Point, src screen.Buffer, sr image.Rectangle) {
	draw.Draw(t.rgba, sr.Sub(sr.Min).Add(dp), src.RGBA(), sr.Min, draw.Src)
}

func (t *memTexture) Fill(dr image.Rectangle, src color.Color, op draw.Op) {
	draw.Draw(t.rgba, dr, image.NewUniform(src), image.Point{}, op)
}

func TestTextureSurfaceFollowsEngine(t *testing.T) {
	scr := newMemScreen()
	e := newEngine(t, solid(4, 4, colA), WithSurface(TextureFactory(scr)))
	if err := e.SetPixel(image.Pt(1, 1), colB); err != nil {
		t.Fatal(err)
	}
	view, err := e.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	tex := view.(*TextureSurface).Texture().(*memTexture)
	if got := tex.rgba.RGBAAt(1, 1); got != colB {
		t.Fatalf("texel = %v", got)
	}
	if len(scr.live) != 2 {
		t.Fatalf("%d live allocations, want texture and buffer", len(scr.live))
	}
}

func TestTextureReservationDroppedWhenResizeUndone(t *testing.T) {
	scr := newMemScreen()
	e := newEngine(t, solid(4, 4, colA), WithSurface(TextureFactory(scr)))
	if err := e.Resize(image.Pt(8, 8), image.Point{}, colF); err != nil {
		t.Fatal(err)
	}
	if len(scr.live) != 4 {
		t.Fatalf("%d live allocations after resize, want 4", len(scr.live))
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	view, err := e.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if view.Size() != image.Pt(4, 4) {
		t.Fatalf("surface size = %v", view.Size())
	}
	if len(scr.live) != 2 {
		t.Fatalf("%d live allocations after frame, want 2", len(scr.live))
	}
	for _, size := range scr.live {
		if size != image.Pt(4, 4) {
			t.Fatalf("stale %v allocation kept", size)
		}
	}

	e.Close()
	if len(scr.live) != 0 {
		t.Fatalf("%d allocations leaked by Close", len(scr.live))
	}
}
