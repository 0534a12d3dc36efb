// Package render lays the canvas out inside the editor window.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// MaxZoom bounds how far FitZoom magnifies small canvases.
const MaxZoom = 32

// FitZoom returns the largest zoom at which canvas fits in view. Canvases
// smaller than the view get a whole-number zoom so every pixel covers the
// same number of screen pixels.
func FitZoom(canvas, view image.Point) float64 {
	if canvas.X <= 0 || canvas.Y <= 0 || view.X <= 0 || view.Y <= 0 {
		return 1
	}
	zx := float64(view.X) / float64(canvas.X)
	zy := float64(view.Y) / float64(canvas.Y)
	z := math.Min(zx, zy)
	if z >= 1 {
		z = math.Min(math.Floor(z), MaxZoom)
	}
	return z
}

// CanvasRect returns where a canvas of the given size is drawn inside view
// at zoom, centred and then moved by pan screen pixels.
func CanvasRect(view image.Rectangle, canvas image.Point, zoom float64, pan image.Point) image.Rectangle {
	w := int(float64(canvas.X) * zoom)
	h := int(float64(canvas.Y) * zoom)
	x0 := view.Min.X + (view.Dx()-w)/2 + pan.X
	y0 := view.Min.Y + (view.Dy()-h)/2 + pan.Y
	return image.Rect(x0, y0, x0+w, y0+h)
}

// ScreenToPixel maps a screen position inside r, the on-screen rectangle of a
// canvas of the given size, to the canvas pixel under it.
func ScreenToPixel(r image.Rectangle, canvas image.Point, p image.Point) (image.Point, bool) {
	if !p.In(r) || r.Dx() == 0 || r.Dy() == 0 {
		return image.Point{}, false
	}
	x := (p.X - r.Min.X) * canvas.X / r.Dx()
	y := (p.Y - r.Min.Y) * canvas.Y / r.Dy()
	return image.Pt(x, y), true
}

// Checkerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	if size < 1 {
		size = 1
	}
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

// Backdrop draws a checkerboard behind transparent canvas pixels, reusing
// the pattern between frames of the same size.
type Backdrop struct {
	Light, Dark color.RGBA
	Size        int
	cache       *image.RGBA
}

// Draw fills rect of dst with the backdrop.
func (b *Backdrop) Draw(dst *image.RGBA, rect image.Rectangle) {
	size := rect.Size()
	if b.cache == nil || b.cache.Bounds().Size() != size {
		b.cache = image.NewRGBA(image.Rectangle{Max: size})
		Checkerboard(b.cache, b.cache.Bounds(), b.Size, b.Light, b.Dark)
	}
	draw.Draw(dst, rect, b.cache, image.Point{}, draw.Src)
}
