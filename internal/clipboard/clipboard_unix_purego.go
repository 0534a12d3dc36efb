//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/pixelmaker/internal/imageio"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	backend      *x11Clipboard
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		clip := &x11Clipboard{}
		if err := clip.initialize(); err != nil {
			initErr = err
			return
		}
		backend = clip
	})
	return initErr
}

func writePNG(data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return backend.own(data)
}

// readPNG returns whatever image encoding the owner offers first in
// imageTargets order. image.Decode copes with all of them.
func readPNG() ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return backend.fetch()
}

// imageTargets are the MIME targets served and requested, most preferred
// first. The canvas is held as PNG and converted on request.
var imageTargets = []struct {
	mime   string
	format imageio.Format
}{
	{"image/png", imageio.PNG},
	{"image/bmp", imageio.BMP},
}

// x11Clipboard owns the CLIPBOARD selection through a hidden window while
// the canvas is on the clipboard.
type x11Clipboard struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet

	mu        sync.Mutex
	png       []byte
	converted map[xproto.Atom][]byte
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	property  xproto.Atom
	images    []xproto.Atom // parallel to imageTargets
}

func (c *x11Clipboard) initialize() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return err
	}
	c.conn = conn
	c.window = window
	c.atoms = atoms
	go c.serve()
	return nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	names := []string{"CLIPBOARD", "TARGETS", "PIXELMAKER_CLIPBOARD"}
	for _, t := range imageTargets {
		names = append(names, t.mime)
	}
	atoms := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atomSet{}, fmt.Errorf("intern %s: %w", name, err)
		}
		atoms[i] = reply.Atom
	}
	return atomSet{clipboard: atoms[0], targets: atoms[1], property: atoms[2], images: atoms[3:]}, nil
}

// own publishes png and takes the selection.
func (c *x11Clipboard) own(png []byte) error {
	c.mu.Lock()
	c.png = append([]byte(nil), png...)
	c.converted = map[xproto.Atom][]byte{c.atoms.images[0]: c.png}
	c.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(c.conn, c.window, c.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

// payload returns the clipboard content encoded for target, or nil when
// nothing is owned or target is not an image format we offer.
func (c *x11Clipboard) payload(target xproto.Atom) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.png == nil {
		return nil
	}
	if data, ok := c.converted[target]; ok {
		return data
	}
	for i, a := range c.atoms.images {
		if a != target {
			continue
		}
		img, err := imageio.Decode(bytes.NewReader(c.png))
		if err != nil {
			return nil
		}
		var buf bytes.Buffer
		if err := imageio.EncodeTo(&buf, img, imageTargets[i].format); err != nil {
			return nil
		}
		c.converted[target] = buf.Bytes()
		return buf.Bytes()
	}
	return nil
}

func (c *x11Clipboard) serve() {
	for {
		ev, xerr := c.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			c.answer(e)
		case xproto.SelectionClearEvent:
			c.mu.Lock()
			c.png, c.converted = nil, nil
			c.mu.Unlock()
		}
	}
}

func (c *x11Clipboard) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	if e.Target == c.atoms.targets {
		targets := []xproto.Atom{c.atoms.targets}
		if c.payload(c.atoms.images[0]) != nil {
			targets = append(targets, c.atoms.images...)
		}
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property,
			xproto.AtomAtom, 32, uint32(len(targets)), atomsToBytes(targets))
	} else if data := c.payload(e.Target); data != nil {
		xproto.ChangeProperty(c.conn, xproto.PropModeReplace, e.Requestor, property,
			e.Target, 8, uint32(len(data)), data)
	} else {
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(c.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// fetch asks the selection owner for its targets and converts the first
// image format both sides know.
func (c *x11Clipboard) fetch() ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	raw, err := c.convert(conn, window, c.atoms.targets)
	if err != nil {
		return nil, err
	}
	offered := map[xproto.Atom]bool{}
	for i := 0; i+4 <= len(raw); i += 4 {
		offered[xproto.Atom(xgb.Get32(raw[i:]))] = true
	}
	for _, a := range c.atoms.images {
		if offered[a] {
			return c.convert(conn, window, a)
		}
	}
	return nil, ErrEmpty
}

func (c *x11Clipboard) convert(conn *xgb.Conn, window xproto.Window, target xproto.Atom) ([]byte, error) {
	if err := xproto.DeletePropertyChecked(conn, window, c.atoms.property).Check(); err != nil {
		return nil, err
	}
	if err := xproto.ConvertSelectionChecked(conn, window, c.atoms.clipboard, target, c.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	e, err := waitNotify(conn.WaitForEvent, c.atoms.property)
	if err != nil {
		return nil, err
	}
	if e.Property == xproto.AtomNone {
		return nil, ErrEmpty
	}
	reply, err := xproto.GetProperty(conn, false, window, c.atoms.property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), reply.Value...), nil
}

var errConnClosed = errors.New("X connection closed")

// waitNotify reads events until the owner answers a conversion into
// property, or refuses it with AtomNone.
func waitNotify(wait func() (xgb.Event, xgb.Error), property xproto.Atom) (xproto.SelectionNotifyEvent, error) {
	for {
		ev, xerr := wait()
		if xerr != nil {
			return xproto.SelectionNotifyEvent{}, xerr
		}
		if ev == nil {
			return xproto.SelectionNotifyEvent{}, errConnClosed
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone || e.Property == property {
			return e, nil
		}
	}
}

func atomsToBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(buf[i*4:], uint32(atom))
	}
	return buf
}
