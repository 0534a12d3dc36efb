package pixels

import (
	"image"
	"image/color"
)

// Flood recolors the 4-connected region of pixels sharing the color found at
// source. Neighbours are only north, south, east and west; a pixel in the
// first column is never adjacent to the last column of another row.
//
// The image is left untouched when an error is returned.
func Flood(img *image.RGBA, source image.Point, c color.RGBA) error {
	if !In(img, source) {
		return ErrOutOfBounds
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if int64(w)*int64(h) > maxPixels {
		return ErrTooLarge
	}
	target := img.RGBAAt(source.X, source.Y)
	if target == c {
		return nil
	}
	count := w * h

	at := func(i int) color.RGBA {
		o := img.PixOffset(b.Min.X+i%w, b.Min.Y+i/w)
		p := img.Pix[o : o+4 : o+4]
		return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	set := func(i int) {
		o := img.PixOffset(b.Min.X+i%w, b.Min.Y+i/w)
		p := img.Pix[o : o+4 : o+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	}

	visited := make([]bool, count)
	stack := make([]int, 0, 64)
	push := func(i int) {
		if visited[i] || at(i) != target {
			return
		}
		visited[i] = true
		stack = append(stack, i)
	}

	start := (source.Y-b.Min.Y)*w + (source.X - b.Min.X)
	visited[start] = true
	stack = append(stack, start)

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		set(i)

		col := i % w
		if col > 0 {
			push(i - 1)
		}
		if col < w-1 {
			push(i + 1)
		}
		if i+w < count {
			push(i + w)
		}
		if i >= w {
			push(i - w)
		}
	}
	return nil
}
