package history

import (
	"fmt"
	"image"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Snapshot is an immutable whole-image payload. Every holder (the pending
// queue, the undo history, the redo history) shares the same value; Image
// hands out a private copy so no holder can alter what another one sees.
type Snapshot struct {
	size   image.Point
	pix    []byte
	packed bool
}

// NewSnapshot copies the pixels of img into a new snapshot.
func NewSnapshot(img *image.RGBA) *Snapshot {
	b := img.Bounds()
	s := &Snapshot{size: b.Size(), pix: make([]byte, 4*b.Dx()*b.Dy())}
	row := 4 * b.Dx()
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(s.pix[y*row:(y+1)*row], img.Pix[off:off+row])
	}
	return s
}

// Size returns the image dimensions.
func (s *Snapshot) Size() image.Point { return s.size }

// Packed reports whether the pixels are currently held compressed.
func (s *Snapshot) Packed() bool { return s.packed }

// Bytes returns the number of bytes the snapshot currently retains.
func (s *Snapshot) Bytes() int { return len(s.pix) }

// Image returns a fresh copy of the snapshot's pixels.
func (s *Snapshot) Image() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rectangle{Max: s.size})
	if !s.packed {
		copy(img.Pix, s.pix)
		return img, nil
	}
	out, err := decompress(img.Pix[:0], s.pix)
	if err != nil {
		return nil, fmt.Errorf("unpack snapshot: %w", err)
	}
	if len(out) != len(img.Pix) {
		return nil, fmt.Errorf("unpack snapshot: got %d bytes, want %d", len(out), len(img.Pix))
	}
	img.Pix = out
	return img, nil
}

// pack compresses the pixels in place when that makes them smaller.
// Snapshots are only ever touched from the goroutine that owns the canvas.
func (s *Snapshot) pack() {
	if s.packed || len(s.pix) == 0 {
		return
	}
	out := compress(s.pix)
	if len(out) >= len(s.pix) {
		return
	}
	s.pix = out
	s.packed = true
}

var encPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var decPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

func compress(data []byte) []byte {
	enc := encPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, make([]byte, 0, len(data)/8))
	encPool.Put(enc)
	return out
}

func decompress(dst, data []byte) ([]byte, error) {
	dec := decPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, dst)
	decPool.Put(dec)
	return out, err
}
