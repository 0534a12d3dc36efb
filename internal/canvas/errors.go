package canvas

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/pixelmaker/internal/pixels"
)

var (
	// ErrOutOfBounds is returned when a position lies outside the canvas.
	ErrOutOfBounds = pixels.ErrOutOfBounds
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("canvas: engine closed")
	// ErrSurfaceUnavailable is wrapped by SurfaceError.
	ErrSurfaceUnavailable = errors.New("canvas: presentation surface unavailable")
)

// SurfaceError reports that the presentation surface could not take an
// image of the given size. The canvas buffer and the surface keep their
// previous contents when it is returned.
type SurfaceError struct {
	Op   string
	Size image.Point
	Err  error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("canvas: %s: surface %dx%d: %v", e.Op, e.Size.X, e.Size.Y, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrSurfaceUnavailable whatever the underlying
// driver error was.
func (e *SurfaceError) Is(target error) bool { return target == ErrSurfaceUnavailable }

func surfaceErr(op string, size image.Point, err error) error {
	return &SurfaceError{Op: op, Size: size, Err: err}
}
