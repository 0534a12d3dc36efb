// Package history records canvas edits and replays them for undo and redo.
package history

import (
	"image"
	"image/color"
)

// Direction selects which way history is traversed.
type Direction int

const (
	// Backward undoes recorded changes.
	Backward Direction = iota
	// Forward redoes previously undone changes.
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	default:
		return "unknown"
	}
}

// Change is the payload of a Diff. It is implemented by PixelChange and
// ImageChange only.
type Change interface {
	// Reverse returns the change that undoes this one.
	Reverse() Change
	change()
}

// PixelChange replaces a single pixel.
type PixelChange struct {
	Pos    image.Point
	Before color.RGBA
	After  color.RGBA
}

func (c PixelChange) Reverse() Change {
	return PixelChange{Pos: c.Pos, Before: c.After, After: c.Before}
}

func (PixelChange) change() {}

// ImageChange replaces the whole buffer, possibly with different dimensions.
type ImageChange struct {
	Before *Snapshot
	After  *Snapshot
}

func (c ImageChange) Reverse() Change {
	return ImageChange{Before: c.After, After: c.Before}
}

func (ImageChange) change() {}

// Diff is one recorded change. Diffs with the same non-zero ActionID form a
// stroke and are undone and redone together; ActionID 0 is never grouped.
type Diff struct {
	ActionID uint32
	// UserInput is false for diffs replayed by undo or redo.
	UserInput bool
	Change    Change
}

// Reverse returns a diff applying the opposite side of d.
func (d Diff) Reverse() Diff {
	d.Change = d.Change.Reverse()
	return d
}

// IsImage reports whether d replaces the whole buffer.
func (d Diff) IsImage() bool {
	_, ok := d.Change.(ImageChange)
	return ok
}

func (d Diff) snapshots() []*Snapshot {
	if c, ok := d.Change.(ImageChange); ok {
		return []*Snapshot{c.Before, c.After}
	}
	return nil
}
