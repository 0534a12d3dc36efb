package history

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gammazero/deque"
)

// DefaultCapacity is the number of diffs kept in the undo history when no
// capacity is configured.
const DefaultCapacity = 100

// ErrClosed is returned by operations on a closed Recorder.
var ErrClosed = errors.New("history: recorder closed")

// Result summarises one Retrace call.
type Result struct {
	// Applied is the number of diffs that were moved across.
	Applied int
	// Resized is set when any applied diff replaced the whole image.
	Resized bool
}

// ApplyFunc applies d to the canvas. A non-nil error leaves d where it was.
type ApplyFunc func(d Diff) error

// Recorder keeps two bounded stacks of diffs. Recording a new diff clears
// the redo stack; winding moves diffs from one stack to the other.
type Recorder struct {
	undo     deque.Deque[Diff]
	redo     deque.Deque[Diff]
	capacity int
	compress bool
	logger   *slog.Logger
	closed   bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapacity bounds the undo history. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithCompression packs whole-image snapshots with zstd while they sit in
// history.
func WithCompression(on bool) Option {
	return func(r *Recorder) { r.compress = on }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder returns an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		capacity: DefaultCapacity,
		logger:   slog.New(discardHandler{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capacity returns the maximum number of diffs in the undo history.
func (r *Recorder) Capacity() int { return r.capacity }

// Len returns the number of diffs that can be wound in dir.
func (r *Recorder) Len(dir Direction) int {
	return r.stack(dir).Len()
}

func (r *Recorder) stack(dir Direction) *deque.Deque[Diff] {
	if dir == Forward {
		return &r.redo
	}
	return &r.undo
}

// Record appends d to the undo history and discards the redo history. When
// the undo history is full the oldest diff is dropped.
func (r *Recorder) Record(d Diff) error {
	if r.closed {
		return ErrClosed
	}
	if d.Change == nil {
		return errors.New("history: diff without change")
	}
	for r.undo.Len() >= r.capacity {
		r.undo.PopFront()
		evictionsTotal.Inc()
		retainedGauge.Dec()
	}
	if r.compress {
		for _, s := range d.snapshots() {
			s.pack()
		}
	}
	r.undo.PushBack(d)
	recordsTotal.Inc()
	retainedGauge.Inc()

	if n := r.redo.Len(); n > 0 {
		r.redo.Clear()
		retainedGauge.Sub(float64(n))
		r.logger.Debug("redo history discarded", "diffs", n)
	}
	return nil
}

// Wind moves the most recent diff in dir to the other stack and returns it.
// The returned diff is as it was recorded; callers undoing it apply its
// reverse.
func (r *Recorder) Wind(dir Direction) (Diff, bool) {
	if r.closed {
		return Diff{}, false
	}
	src, dst := r.stack(dir), r.stack(1-dir)
	if src.Len() == 0 {
		return Diff{}, false
	}
	d := src.PopBack()
	dst.PushBack(d)
	stepsTotal.WithLabelValues(dir.String()).Inc()
	return d, true
}

// unwind returns the most recently wound diff from the stack it was wound
// onto back to src.
func (r *Recorder) unwind(dir Direction) {
	src, dst := r.stack(dir), r.stack(1-dir)
	src.PushBack(dst.PopBack())
}

// Retrace winds a whole action in dir. The first diff is always taken;
// following diffs are taken while they carry the same non-zero action id.
// apply receives each diff oriented for the direction: reversed when going
// Backward, as recorded when going Forward.
//
// If apply fails the failing diff is returned to its stack and the error is
// reported together with what was applied so far.
func (r *Recorder) Retrace(ctx context.Context, dir Direction, apply ApplyFunc) (Result, error) {
	var res Result
	if r.closed {
		return res, ErrClosed
	}
	src := r.stack(dir)
	var action uint32
	for src.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		next := src.Back()
		if res.Applied > 0 && (action == 0 || next.ActionID != action) {
			break
		}
		d, _ := r.Wind(dir)
		action = d.ActionID
		step := d
		if dir == Backward {
			step = d.Reverse()
		}
		step.UserInput = false
		if err := apply(step); err != nil {
			r.unwind(dir)
			return res, err
		}
		res.Applied++
		if d.IsImage() {
			res.Resized = true
		}
	}
	if res.Applied > 0 {
		r.logger.Debug("history retraced", "direction", dir.String(), "diffs", res.Applied, "action", action)
	}
	return res, nil
}

// Close drops both histories. It is safe to call more than once.
func (r *Recorder) Close() {
	if r.closed {
		return
	}
	n := r.undo.Len() + r.redo.Len()
	r.undo.Clear()
	r.redo.Clear()
	retainedGauge.Sub(float64(n))
	r.closed = true
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
