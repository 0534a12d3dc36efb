package history

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func noise(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rnd := rand.New(rand.NewSource(1))
	rnd.Read(img.Pix)
	return img
}

func TestSnapshotImageIsPrivateCopy(t *testing.T) {
	src := gradient(4, 3)
	s := NewSnapshot(src)
	src.SetRGBA(0, 0, color.RGBA{A: 1})

	a, err := s.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if got := a.RGBAAt(0, 0); got != (color.RGBA{B: 7, A: 255}) {
		t.Fatalf("snapshot followed source: %v", got)
	}
	a.SetRGBA(1, 1, color.RGBA{})
	b, _ := s.Image()
	if got := b.RGBAAt(1, 1); got != (color.RGBA{R: 1, G: 1, B: 7, A: 255}) {
		t.Fatalf("snapshot followed a handed-out copy: %v", got)
	}
	if s.Size() != image.Pt(4, 3) {
		t.Fatalf("size = %v", s.Size())
	}
}

func TestSnapshotOffsetOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(2, 2, 4, 4))
	src.SetRGBA(3, 3, color.RGBA{R: 9, A: 255})
	img, err := NewSnapshot(src).Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if got := img.RGBAAt(1, 1); got.R != 9 {
		t.Fatalf("pixel = %v", got)
	}
}

func TestSnapshotPackRoundTrip(t *testing.T) {
	src := solid(64, 64, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	src.SetRGBA(5, 9, color.RGBA{A: 255})
	s := NewSnapshot(src)
	raw := s.Bytes()
	s.pack()
	if !s.Packed() {
		t.Fatal("not packed")
	}
	if s.Bytes() >= raw {
		t.Fatalf("packed %d bytes, raw %d", s.Bytes(), raw)
	}
	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	for i := range src.Pix {
		if img.Pix[i] != src.Pix[i] {
			t.Fatalf("byte %d = %d, want %d", i, img.Pix[i], src.Pix[i])
		}
	}
}

func TestSnapshotPackNeverGrows(t *testing.T) {
	src := noise(32, 32)
	s := NewSnapshot(src)
	raw := s.Bytes()
	s.pack()
	if s.Packed() {
		t.Fatal("incompressible pixels packed")
	}
	if s.Bytes() != raw {
		t.Fatalf("retained %d bytes, raw %d", s.Bytes(), raw)
	}
	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	for i := range src.Pix {
		if img.Pix[i] != src.Pix[i] {
			t.Fatalf("byte %d = %d, want %d", i, img.Pix[i], src.Pix[i])
		}
	}
}

func TestRecorderPacksWhenCompressing(t *testing.T) {
	r := NewRecorder(WithCompression(true))
	a := NewSnapshot(solid(16, 16, color.RGBA{A: 255}))
	b := NewSnapshot(solid(8, 8, color.RGBA{R: 3, A: 255}))
	if err := r.Record(Diff{Change: ImageChange{Before: a, After: b}}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !a.Packed() || !b.Packed() {
		t.Fatal("snapshots not packed")
	}
}
