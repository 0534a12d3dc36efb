// Package pixels holds the RGBA8 pixel-buffer helpers shared by the canvas:
// bounds-checked access, flood fill, canvas resizing and resampling.
package pixels

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
)

var (
	// ErrOutOfBounds is returned when a position lies outside the image.
	ErrOutOfBounds = errors.New("position outside image bounds")
	// ErrInvalidSize is returned when an operation would produce an image
	// smaller than one pixel or the requested size cannot be represented.
	ErrInvalidSize = errors.New("invalid image size")
	// ErrTooLarge is returned when the work buffers for an image cannot be
	// allocated.
	ErrTooLarge = errors.New("image too large")
)

// maxPixels bounds the work buffers allocated for a single operation.
var maxPixels int64 = 1 << 30

// Clone returns a copy of img with zero-based bounds.
func Clone(img image.Image) *image.RGBA {
	if img == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.RGBA); ok && src.Stride == 4*b.Dx() && b.Min == (image.Point{}) {
		copy(dst.Pix, src.Pix)
		return dst
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// In reports whether p addresses a pixel of img.
func In(img *image.RGBA, p image.Point) bool {
	return p.In(img.Bounds())
}

// At returns the color at p.
func At(img *image.RGBA, p image.Point) (color.RGBA, error) {
	if !In(img, p) {
		return color.RGBA{}, ErrOutOfBounds
	}
	return img.RGBAAt(p.X, p.Y), nil
}

// Set writes c at p.
func Set(img *image.RGBA, p image.Point, c color.RGBA) error {
	if !In(img, p) {
		return ErrOutOfBounds
	}
	img.SetRGBA(p.X, p.Y, c)
	return nil
}

// Fill paints every pixel of img with c.
func Fill(img *image.RGBA, c color.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Blend composites src over dst using src's alpha as the weight. The result
// is always opaque so that repeated translucent strokes resolve against the
// colour already on the canvas instead of stacking alpha.
func Blend(dst, src color.RGBA) color.RGBA {
	if src.A == 255 {
		return src
	}
	a := uint32(src.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a) + 127) / 255)
	}
	return color.RGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: 255,
	}
}

// ResizeCanvas returns a new image of the given size filled with fill and
// with img drawn so that its top-left corner lands on offset. Negative
// offsets crop the left/top edge.
func ResizeCanvas(img *image.RGBA, size, offset image.Point, fill color.RGBA) (*image.RGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, ErrInvalidSize
	}
	if int64(size.X)*int64(size.Y) > maxPixels {
		return nil, ErrTooLarge
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	Fill(dst, fill)
	src := img.Bounds()
	r := src.Sub(src.Min).Add(offset).Intersect(dst.Bounds())
	if !r.Empty() {
		draw.Draw(dst, r, img, src.Min.Add(r.Min.Sub(offset)), draw.Src)
	}
	return dst, nil
}

// ResampleNearest scales img by factor using nearest-neighbour sampling.
// Each destination pixel takes the source pixel at the top-left of its
// footprint, so downsampling by 0.5 keeps the even rows and columns.
func ResampleNearest(img *image.RGBA, factor float64) (*image.RGBA, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, ErrInvalidSize
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	fw, fh := factor*float64(w), factor*float64(h)
	if fw < 1 || fh < 1 {
		return nil, ErrInvalidSize
	}
	if fw*fh > float64(maxPixels) {
		return nil, ErrTooLarge
	}
	nw, nh := int(fw), int(fh)
	xRatio := (w<<16)/nw + 1
	yRatio := (h<<16)/nh + 1

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < nh; y++ {
		sy := min((y*yRatio)>>16, h-1)
		srow := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+sy):]
		drow := dst.Pix[y*dst.Stride:]
		for x := 0; x < nw; x++ {
			sx := min((x*xRatio)>>16, w-1)
			copy(drow[x*4:x*4+4], srow[sx*4:sx*4+4])
		}
	}
	return dst, nil
}
