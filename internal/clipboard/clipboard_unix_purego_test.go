//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/pixelmaker/internal/imageio"
)

func TestPayloadConvertsOnRequest(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(1, 0, color.RGBA{10, 20, 30, 255})
	var png bytes.Buffer
	if err := imageio.EncodeTo(&png, img, imageio.PNG); err != nil {
		t.Fatal(err)
	}

	c := &x11Clipboard{atoms: atomSet{images: []xproto.Atom{100, 101}}}
	if c.payload(100) != nil {
		t.Fatal("payload before owning anything")
	}
	c.png = png.Bytes()
	c.converted = map[xproto.Atom][]byte{100: c.png}

	if got := c.payload(100); !bytes.Equal(got, png.Bytes()) {
		t.Fatal("png target not served as is")
	}
	bmp := c.payload(101)
	if len(bmp) < 2 || string(bmp[:2]) != "BM" {
		t.Fatalf("bmp target = %q", bmp)
	}
	back, err := imageio.Decode(bytes.NewReader(bmp))
	if err != nil {
		t.Fatalf("decode bmp: %v", err)
	}
	if back.RGBAAt(1, 0) != (color.RGBA{10, 20, 30, 255}) {
		t.Fatalf("bmp pixel = %v", back.RGBAAt(1, 0))
	}
	if c.payload(999) != nil {
		t.Fatal("unknown target served")
	}
}

func TestAtomsToBytes(t *testing.T) {
	buf := atomsToBytes([]xproto.Atom{1, 0x01020304})
	if len(buf) != 8 || xgb.Get32(buf[4:]) != 0x01020304 {
		t.Fatalf("buf = %v", buf)
	}
}

func events(evs ...any) func() (xgb.Event, xgb.Error) {
	return func() (xgb.Event, xgb.Error) {
		if len(evs) == 0 {
			return nil, nil
		}
		next := evs[0]
		evs = evs[1:]
		if e, ok := next.(xgb.Error); ok {
			return nil, e
		}
		return next.(xgb.Event), nil
	}
}

func TestWaitNotify(t *testing.T) {
	const prop = xproto.Atom(42)
	wait := events(
		xproto.PropertyNotifyEvent{Atom: prop},
		xproto.SelectionNotifyEvent{Property: 7},
		xproto.SelectionNotifyEvent{Property: prop, Target: 9},
	)
	e, err := waitNotify(wait, prop)
	if err != nil {
		t.Fatalf("waitNotify: %v", err)
	}
	if e.Target != 9 {
		t.Fatalf("event = %+v", e)
	}

	e, err = waitNotify(events(xproto.SelectionNotifyEvent{Property: xproto.AtomNone}), prop)
	if err != nil || e.Property != xproto.AtomNone {
		t.Fatalf("refusal = %+v, %v", e, err)
	}

	if _, err := waitNotify(events(xproto.ValueError{BadValue: 3}), prop); err == nil {
		t.Fatal("X error swallowed")
	}
	if _, err := waitNotify(events(), prop); !errors.Is(err, errConnClosed) {
		t.Fatalf("closed connection: %v", err)
	}
}
