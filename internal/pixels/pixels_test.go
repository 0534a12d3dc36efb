package pixels

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

var (
	colA = color.RGBA{R: 10, G: 20, B: 30, A: 255}
	colB = color.RGBA{R: 200, A: 255}
	colC = color.RGBA{G: 200, A: 255}
	colF = color.RGBA{B: 200, A: 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(img, c)
	return img
}

func TestFloodRecolorsBorderAroundCenter(t *testing.T) {
	img := solid(3, 3, colA)
	img.SetRGBA(1, 1, colB)

	if err := Flood(img, image.Pt(0, 0), colC); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := colC
			if x == 1 && y == 1 {
				want = colB
			}
			if got := img.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFloodSameColorIsNoop(t *testing.T) {
	img := solid(4, 4, colA)
	img.SetRGBA(2, 2, colB)
	before := Clone(img)

	if err := Flood(img, image.Pt(0, 0), colA); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	for i := range img.Pix {
		if img.Pix[i] != before.Pix[i] {
			t.Fatalf("buffer changed at byte %d", i)
		}
	}
}

func TestFloodStaysInsideBorder(t *testing.T) {
	// 5x5 with a wall ring around the centre 3x3 block.
	img := solid(5, 5, colA)
	for i := 1; i <= 3; i++ {
		img.SetRGBA(i, 1, colB)
		img.SetRGBA(i, 3, colB)
		img.SetRGBA(1, i, colB)
		img.SetRGBA(3, i, colB)
	}
	if err := Flood(img, image.Pt(2, 2), colC); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	if got := img.RGBAAt(2, 2); got != colC {
		t.Fatalf("centre = %v, want %v", got, colC)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if x == 2 && y == 2 {
				continue
			}
			if got := img.RGBAAt(x, y); got == colC {
				t.Errorf("pixel (%d,%d) leaked fill", x, y)
			}
		}
	}
}

func TestFloodDoesNotWrapRows(t *testing.T) {
	// Column 0 is isolated from the rest of its row by a wall in column 1.
	// The last column of every row shares the target color, so a west step
	// from column 0 that wrapped into the previous row would reach it.
	const w, h = 4, 3
	img := solid(w, h, colA)
	for y := 0; y < h; y++ {
		img.SetRGBA(1, y, colB)
	}
	if err := Flood(img, image.Pt(0, 1), colC); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	for y := 0; y < h; y++ {
		if got := img.RGBAAt(0, y); got != colC {
			t.Errorf("column 0 row %d = %v, want %v", y, got, colC)
		}
		if got := img.RGBAAt(w-1, y); got != colA {
			t.Errorf("column %d row %d = %v, want untouched %v", w-1, y, got, colA)
		}
	}
}

func TestFloodDoesNotWrapFromLastColumn(t *testing.T) {
	const w, h = 4, 3
	img := solid(w, h, colA)
	for y := 0; y < h; y++ {
		img.SetRGBA(w-2, y, colB)
	}
	if err := Flood(img, image.Pt(w-1, 1), colC); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	for y := 0; y < h; y++ {
		if got := img.RGBAAt(w-1, y); got != colC {
			t.Errorf("last column row %d = %v, want %v", y, got, colC)
		}
		if got := img.RGBAAt(0, y); got != colA {
			t.Errorf("column 0 row %d = %v, want untouched", y, got)
		}
	}
}

func TestFloodIgnoresDiagonals(t *testing.T) {
	img := solid(2, 2, colB)
	img.SetRGBA(0, 0, colA)
	img.SetRGBA(1, 1, colA)
	if err := Flood(img, image.Pt(0, 0), colC); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	if got := img.RGBAAt(1, 1); got != colA {
		t.Fatalf("diagonal pixel filled: %v", got)
	}
}

func TestFloodOutOfBounds(t *testing.T) {
	img := solid(2, 2, colA)
	if err := Flood(img, image.Pt(2, 0), colC); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestFloodWholeImage(t *testing.T) {
	img := solid(64, 48, colA)
	if err := Flood(img, image.Pt(63, 47), colC); err != nil {
		t.Fatalf("Flood: %v", err)
	}
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y) != colC {
				t.Fatalf("pixel (%d,%d) not filled", x, y)
			}
		}
	}
}

func limitPixels(t *testing.T, n int64) {
	t.Helper()
	orig := maxPixels
	maxPixels = n
	t.Cleanup(func() { maxPixels = orig })
}

func TestFloodTooLargeLeavesImage(t *testing.T) {
	limitPixels(t, 15)
	img := solid(4, 4, colA)
	if err := Flood(img, image.Pt(1, 1), colB); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := img.RGBAAt(x, y); got != colA {
				t.Fatalf("pixel (%d,%d) = %v after failed flood", x, y, got)
			}
		}
	}

	limitPixels(t, 16)
	if err := Flood(img, image.Pt(1, 1), colB); err != nil {
		t.Fatalf("Flood at the limit: %v", err)
	}
	if got := img.RGBAAt(3, 3); got != colB {
		t.Fatalf("pixel = %v", got)
	}
}

func TestResizeAndResampleTooLarge(t *testing.T) {
	limitPixels(t, 16)
	img := solid(4, 4, colA)
	if _, err := ResizeCanvas(img, image.Pt(5, 4), image.Point{}, colF); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("ResizeCanvas: expected ErrTooLarge, got %v", err)
	}
	if _, err := ResampleNearest(img, 2); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("ResampleNearest: expected ErrTooLarge, got %v", err)
	}
}

func TestResizeCanvasExtendsWithFill(t *testing.T) {
	img := solid(4, 4, colA)
	img.SetRGBA(3, 2, colB)
	out, err := ResizeCanvas(img, image.Pt(6, 4), image.Point{}, colF)
	if err != nil {
		t.Fatalf("ResizeCanvas: %v", err)
	}
	if !out.Bounds().Eq(image.Rect(0, 0, 6, 4)) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			want := colA
			switch {
			case x >= 4:
				want = colF
			case x == 3 && y == 2:
				want = colB
			}
			if got := out.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestResizeCanvasOffsetAndCrop(t *testing.T) {
	img := solid(2, 2, colA)
	img.SetRGBA(1, 1, colB)

	out, err := ResizeCanvas(img, image.Pt(3, 3), image.Pt(1, 1), colF)
	if err != nil {
		t.Fatalf("ResizeCanvas: %v", err)
	}
	if got := out.RGBAAt(0, 0); got != colF {
		t.Errorf("exposed corner = %v, want fill", got)
	}
	if got := out.RGBAAt(2, 2); got != colB {
		t.Errorf("shifted pixel = %v, want %v", got, colB)
	}

	cropped, err := ResizeCanvas(img, image.Pt(1, 1), image.Pt(-1, -1), colF)
	if err != nil {
		t.Fatalf("ResizeCanvas crop: %v", err)
	}
	if got := cropped.RGBAAt(0, 0); got != colB {
		t.Errorf("cropped pixel = %v, want %v", got, colB)
	}
}

func TestResizeCanvasRejectsEmpty(t *testing.T) {
	if _, err := ResizeCanvas(solid(2, 2, colA), image.Pt(0, 3), image.Point{}, colF); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestResampleNearest(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, colA)
	img.SetRGBA(1, 0, colB)
	img.SetRGBA(0, 1, colC)
	img.SetRGBA(1, 1, colF)

	up, err := ResampleNearest(img, 2)
	if err != nil {
		t.Fatalf("ResampleNearest: %v", err)
	}
	if !up.Bounds().Eq(image.Rect(0, 0, 4, 4)) {
		t.Fatalf("bounds = %v", up.Bounds())
	}
	checks := map[image.Point]color.RGBA{
		{0, 0}: colA, {1, 1}: colA,
		{2, 0}: colB, {3, 1}: colB,
		{0, 2}: colC, {1, 3}: colC,
		{2, 2}: colF, {3, 3}: colF,
	}
	for p, want := range checks {
		if got := up.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("upsampled %v = %v, want %v", p, got, want)
		}
	}

	down, err := ResampleNearest(up, 0.5)
	if err != nil {
		t.Fatalf("ResampleNearest down: %v", err)
	}
	for p, want := range map[image.Point]color.RGBA{{0, 0}: colA, {1, 0}: colB, {0, 1}: colC, {1, 1}: colF} {
		if got := down.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("downsampled %v = %v, want %v", p, got, want)
		}
	}
}

func TestResampleNearestRejectsBadFactor(t *testing.T) {
	img := solid(2, 2, colA)
	for _, f := range []float64{0, -1, 0.1} {
		if _, err := ResampleNearest(img, f); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("factor %v: expected ErrInvalidSize, got %v", f, err)
		}
	}
}

func TestBlend(t *testing.T) {
	dst := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	if got := Blend(dst, colB); got != colB {
		t.Errorf("opaque blend = %v, want %v", got, colB)
	}
	half := Blend(dst, color.RGBA{R: 255, A: 128})
	if half.A != 255 {
		t.Errorf("alpha = %d, want 255", half.A)
	}
	if half.R != 128 {
		t.Errorf("red = %d, want 128", half.R)
	}
	if got := Blend(colA, color.RGBA{R: 255, A: 0}); got != colA {
		t.Errorf("transparent blend = %v, want %v", got, colA)
	}
}

func TestAtAndSetBounds(t *testing.T) {
	img := solid(2, 2, colA)
	if err := Set(img, image.Pt(1, 1), colB); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := At(img, image.Pt(1, 1)); err != nil || got != colB {
		t.Fatalf("At = %v, %v", got, err)
	}
	if _, err := At(img, image.Pt(-1, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := Set(img, image.Pt(0, 2), colB); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestCloneNormalisesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 7))
	src.SetRGBA(5, 5, colB)
	out := Clone(src)
	if !out.Bounds().Eq(image.Rect(0, 0, 2, 2)) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got != colB {
		t.Fatalf("pixel = %v", got)
	}
	out.SetRGBA(0, 0, colA)
	if src.RGBAAt(5, 5) != colB {
		t.Fatal("clone shares pixels with source")
	}
}
