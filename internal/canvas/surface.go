package canvas

import (
	"image"
	"image/color"
	"image/draw"
)

// View is the read-only handle the renderer receives from NextFrame.
type View interface {
	Size() image.Point
}

// Surface is the display mirror of the canvas buffer. Only the Engine
// writes to it, and only from NextFrame.
type Surface interface {
	View
	// Reserve makes sure a following Replace with an image of size cannot
	// fail for lack of storage.
	Reserve(size image.Point) error
	// Replace swaps the whole surface content, resizing it when needed.
	Replace(img *image.RGBA) error
	// SetPixel updates a single texel. Positions outside the surface are
	// ignored.
	SetPixel(p image.Point, c color.RGBA)
	// Flush pushes accumulated texel updates to their destination.
	Flush() error
	Release()
}

// SurfaceFactory builds the surface for an engine's initial image.
type SurfaceFactory func(img *image.RGBA) (Surface, error)

// MemorySurface mirrors the canvas in a CPU-side image. It is the default
// surface and the one used by command line tools and tests.
type MemorySurface struct {
	img *image.RGBA
}

// NewMemorySurface returns a surface holding a copy of img.
func NewMemorySurface(img *image.RGBA) (Surface, error) {
	s := &MemorySurface{}
	if err := s.Replace(img); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemorySurface) Size() image.Point {
	if s.img == nil {
		return image.Point{}
	}
	return s.img.Bounds().Size()
}

func (s *MemorySurface) Reserve(image.Point) error { return nil }

func (s *MemorySurface) Replace(img *image.RGBA) error {
	b := img.Bounds()
	if s.img == nil || s.img.Bounds().Size() != b.Size() {
		s.img = image.NewRGBA(image.Rectangle{Max: b.Size()})
	}
	draw.Draw(s.img, s.img.Bounds(), img, b.Min, draw.Src)
	return nil
}

func (s *MemorySurface) SetPixel(p image.Point, c color.RGBA) {
	if s.img != nil {
		s.img.SetRGBA(p.X, p.Y, c)
	}
}

func (s *MemorySurface) Flush() error { return nil }

func (s *MemorySurface) Release() { s.img = nil }

// Snapshot returns a copy of the surface content.
func (s *MemorySurface) Snapshot() *image.RGBA {
	out := image.NewRGBA(image.Rectangle{Max: s.Size()})
	if s.img != nil {
		copy(out.Pix, s.img.Pix)
	}
	return out
}
