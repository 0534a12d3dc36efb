// Package canvas implements the pixel editor's canvas: a pixel buffer, the
// undo and redo history of its edits and a lazily synchronised display
// surface.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gammazero/deque"

	"github.com/example/pixelmaker/internal/history"
	"github.com/example/pixelmaker/internal/imageio"
	"github.com/example/pixelmaker/internal/pixels"
)

// Encoder writes an image to path, picking the format from the name.
type Encoder interface {
	Encode(ctx context.Context, img image.Image, path string) error
}

// Engine owns the canvas buffer. Edits update the buffer immediately, are
// recorded for undo and are queued until the next NextFrame call copies them
// to the surface.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	buf     *image.RGBA
	surface Surface
	history *history.Recorder
	pending deque.Deque[history.Diff]
	action  uint32
	encoder Encoder
	logger  *slog.Logger
	closed  bool
}

type settings struct {
	capacity int
	compress bool
	factory  SurfaceFactory
	encoder  Encoder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*settings)

// WithHistoryCapacity bounds the number of diffs that can be undone.
func WithHistoryCapacity(n int) Option { return func(s *settings) { s.capacity = n } }

// WithHistoryCompression keeps whole-image history entries compressed.
func WithHistoryCompression(on bool) Option { return func(s *settings) { s.compress = on } }

// WithSurface selects how the presentation surface is built.
func WithSurface(f SurfaceFactory) Option { return func(s *settings) { s.factory = f } }

// WithEncoder replaces the encoder used by SaveAsImage.
func WithEncoder(e Encoder) Option { return func(s *settings) { s.encoder = e } }

// WithLogger sets the logger for the engine and its history.
func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// New creates an engine editing a copy of img.
func New(img image.Image, opts ...Option) (*Engine, error) {
	st := settings{
		capacity: history.DefaultCapacity,
		factory:  NewMemorySurface,
		encoder:  imageio.Codec{},
	}
	for _, o := range opts {
		o(&st)
	}
	if st.logger == nil {
		st.logger = slog.New(discardHandler{})
	}
	buf := pixels.Clone(img)
	if buf.Bounds().Empty() {
		return nil, pixels.ErrInvalidSize
	}
	surface, err := st.factory(pixels.Clone(buf))
	if err != nil {
		return nil, surfaceErr("new", buf.Bounds().Size(), err)
	}
	return &Engine{
		buf:     buf,
		surface: surface,
		history: history.NewRecorder(
			history.WithCapacity(st.capacity),
			history.WithCompression(st.compress),
			history.WithLogger(st.logger),
		),
		encoder: st.encoder,
		logger:  st.logger,
	}, nil
}

// Size returns the canvas dimensions.
func (e *Engine) Size() image.Point { return e.buf.Bounds().Size() }

// Pixel returns the color at p.
func (e *Engine) Pixel(p image.Point) (color.RGBA, error) {
	if e.closed {
		return color.RGBA{}, ErrClosed
	}
	return pixels.At(e.buf, p)
}

// Content returns a copy of the canvas buffer.
func (e *Engine) Content() *image.RGBA { return pixels.Clone(e.buf) }

// Stroke returns the current action id. Zero means no stroke was started.
func (e *Engine) Stroke() uint32 { return e.action }

// CanUndo reports whether there is history to undo.
func (e *Engine) CanUndo() bool { return e.history.Len(history.Backward) > 0 }

// CanRedo reports whether there is history to redo.
func (e *Engine) CanRedo() bool { return e.history.Len(history.Forward) > 0 }

// Pending returns the number of diffs waiting for NextFrame.
func (e *Engine) Pending() int { return e.pending.Len() }

// StartStroke begins a new action. Pixel edits made until the next call are
// undone and redone together.
func (e *Engine) StartStroke() uint32 {
	e.action++
	if e.action == 0 {
		e.action = 1
	}
	return e.action
}

// SetPixel writes c at p.
func (e *Engine) SetPixel(p image.Point, c color.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	before, err := pixels.At(e.buf, p)
	if err != nil {
		return err
	}
	return e.commit(history.Diff{
		ActionID:  e.action,
		UserInput: true,
		Change:    history.PixelChange{Pos: p, Before: before, After: c},
	})
}

// BlendPixel composites c over the pixel at p using c's alpha.
func (e *Engine) BlendPixel(p image.Point, c color.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	if c.A == 255 {
		return e.SetPixel(p, c)
	}
	cur, err := pixels.At(e.buf, p)
	if err != nil {
		return err
	}
	return e.SetPixel(p, pixels.Blend(cur, c))
}

// SetToImage replaces the whole canvas with a copy of img. The change is
// recorded as its own action.
func (e *Engine) SetToImage(img image.Image) error {
	if e.closed {
		return ErrClosed
	}
	next := pixels.Clone(img)
	if next.Bounds().Empty() {
		return pixels.ErrInvalidSize
	}
	return e.commit(history.Diff{
		UserInput: true,
		Change: history.ImageChange{
			Before: history.NewSnapshot(e.buf),
			After:  history.NewSnapshot(next),
		},
	})
}

// FloodFill recolors the region connected to p. Filling a region with its
// own color records nothing.
func (e *Engine) FloodFill(p image.Point, c color.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	target, err := pixels.At(e.buf, p)
	if err != nil {
		return err
	}
	if target == c {
		return nil
	}
	work := pixels.Clone(e.buf)
	if err := pixels.Flood(work, p, c); err != nil {
		return fmt.Errorf("flood fill: %w", err)
	}
	return e.SetToImage(work)
}

// Resize changes the canvas size. The current content is placed with its
// top-left corner at offset and newly exposed pixels are set to fill.
func (e *Engine) Resize(size, offset image.Point, fill color.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	img, err := pixels.ResizeCanvas(e.buf, size, offset, fill)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return e.SetToImage(img)
}

// ChangeResolution scales the canvas by factor with nearest neighbour
// sampling.
func (e *Engine) ChangeResolution(factor float64) error {
	if e.closed {
		return ErrClosed
	}
	img, err := pixels.ResampleNearest(e.buf, factor)
	if err != nil {
		return fmt.Errorf("change resolution: %w", err)
	}
	return e.SetToImage(img)
}

// Undo reverts the most recent action. It reports whether the canvas size
// changed. Undoing with no history left is a no-op.
func (e *Engine) Undo() (bool, error) { return e.retrace(history.Backward) }

// Redo reapplies the most recently undone action.
func (e *Engine) Redo() (bool, error) { return e.retrace(history.Forward) }

func (e *Engine) retrace(dir history.Direction) (bool, error) {
	if e.closed {
		return false, ErrClosed
	}
	size := e.Size()
	res, err := e.history.Retrace(context.Background(), dir, e.apply)
	if err != nil {
		return e.Size() != size, fmt.Errorf("%s: %w", dir, err)
	}
	if res.Applied == 0 {
		e.logger.Debug("no history", "direction", dir.String())
	}
	return e.Size() != size, nil
}

// commit applies a fresh user edit and records it.
func (e *Engine) commit(d history.Diff) error {
	if err := e.apply(d); err != nil {
		return err
	}
	return e.history.Record(d)
}

// apply writes the after side of d to the buffer and queues it for the
// surface.
func (e *Engine) apply(d history.Diff) error {
	switch c := d.Change.(type) {
	case history.PixelChange:
		if !pixels.In(e.buf, c.Pos) {
			if d.UserInput {
				return ErrOutOfBounds
			}
			e.logger.Debug("skipping stale pixel diff", "pos", c.Pos, "size", e.Size())
			return nil
		}
		e.buf.SetRGBA(c.Pos.X, c.Pos.Y, c.After)
	case history.ImageChange:
		size := c.After.Size()
		if err := e.surface.Reserve(size); err != nil {
			return surfaceErr("set image", size, err)
		}
		img, err := c.After.Image()
		if err != nil {
			return err
		}
		e.buf = img
	default:
		return fmt.Errorf("canvas: unknown change %T", d.Change)
	}
	e.pending.PushBack(d)
	return nil
}

// NextFrame brings the surface up to date with the buffer and returns it.
// Whole-image changes supersede everything queued before them.
func (e *Engine) NextFrame() (View, error) {
	if e.closed {
		return nil, ErrClosed
	}
	last := -1
	for i := 0; i < e.pending.Len(); i++ {
		if e.pending.At(i).IsImage() {
			last = i
		}
	}
	for i := 0; i < last; i++ {
		e.pending.PopFront()
	}
	var errs []error
	for e.pending.Len() > 0 {
		d := e.pending.PopFront()
		switch c := d.Change.(type) {
		case history.PixelChange:
			e.surface.SetPixel(c.Pos, c.After)
		case history.ImageChange:
			img, err := c.After.Image()
			if err == nil {
				err = e.surface.Replace(img)
			}
			if err != nil {
				errs = append(errs, surfaceErr("next frame", c.After.Size(), err))
			}
		}
	}
	if err := e.surface.Flush(); err != nil {
		errs = append(errs, surfaceErr("flush", e.surface.Size(), err))
	}
	return e.surface, errors.Join(errs...)
}

// SaveAsImage writes the canvas to path.
func (e *Engine) SaveAsImage(ctx context.Context, path string) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.encoder.Encode(ctx, pixels.Clone(e.buf), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	e.logger.Debug("canvas saved", "path", path, "size", e.Size())
	return nil
}

// Close releases the surface and drops all history. It is safe to call more
// than once. Afterwards every method that returns an error returns
// ErrClosed. Size, Content and Stroke keep describing the last canvas, while
// CanUndo, CanRedo and Pending report nothing left.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.pending.Clear()
	e.history.Close()
	e.surface.Release()
	return nil
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
