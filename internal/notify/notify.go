// Package notify tells the desktop when a canvas has been written out or
// put on the clipboard.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/example/pixelmaker/internal/imageio"
	"github.com/example/pixelmaker/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires after a canvas is written to disk.
	EventSave Event = "save"
	// EventCopy fires after a canvas is placed on the clipboard.
	EventCopy Event = "copy"
)

// Canvas is the data a message template is rendered with.
type Canvas struct {
	Name   string // file base name, or a short label for clipboard copies
	Path   string // absolute path, empty for clipboard copies
	Format string // file format, empty for clipboard copies
	Width  int
	Height int
}

// Size renders the canvas dimensions as WxH.
func (c Canvas) Size() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// Preferences holds the notification title and one message template per
// event.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in messages.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Pixelmaker",
		Templates: map[Event]string{
			EventSave: "Saved {{.Name}} ({{.Size}} {{.Format}})",
			EventCopy: "Copied {{.Size}} {{.Name}} to the clipboard",
		},
	}
}

// LoadPreferences overrides the defaults from PIXELMAKER_NOTIFY_TITLE,
// PIXELMAKER_NOTIFY_SAVE and PIXELMAKER_NOTIFY_COPY.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("PIXELMAKER_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for key, event := range map[string]Event{
		"PIXELMAKER_NOTIFY_SAVE": EventSave,
		"PIXELMAKER_NOTIFY_COPY": EventCopy,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[event] = v
		}
	}
	return prefs
}

// Notifier sends desktop notifications for the events enabled on it.
type Notifier struct {
	title     string
	templates map[Event]*template.Template
	enabled   map[Event]bool
	logger    *slog.Logger
}

// New parses the templates in prefs. A template that fails to parse falls
// back to the default message for its event.
func New(prefs Preferences) *Notifier {
	n := &Notifier{
		title:     prefs.Title,
		templates: make(map[Event]*template.Template),
		enabled:   make(map[Event]bool),
		logger:    slog.New(discardHandler{}),
	}
	defaults := DefaultPreferences().Templates
	for event, text := range defaults {
		if custom, ok := prefs.Templates[event]; ok {
			text = custom
		}
		tmpl, err := template.New(string(event)).Parse(text)
		if err != nil {
			n.logger.Warn("bad notification template", "event", event, "err", err)
			tmpl = template.Must(template.New(string(event)).Parse(defaults[event]))
		}
		n.templates[event] = tmpl
	}
	return n
}

// SetLogger routes delivery failures to l.
func (n *Notifier) SetLogger(l *slog.Logger) {
	if n != nil && l != nil {
		n.logger = l
	}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Save announces that a canvas of the given size was written to path.
// Formats a notification daemon can display are shown as the icon.
func (n *Notifier) Save(path string, size image.Point) {
	if !n.enabledFor(EventSave) {
		return
	}
	c := Canvas{Path: strings.TrimSpace(path), Width: size.X, Height: size.Y}
	if abs, err := filepath.Abs(c.Path); err == nil {
		c.Path = abs
	}
	c.Name = filepath.Base(c.Path)
	opts := platform.Options{Category: "transfer.complete"}
	if f, err := imageio.FormatFor(c.Path); err == nil {
		c.Format = f.String()
		if displayable(f) {
			if _, err := os.Stat(c.Path); err == nil {
				opts.IconPath = c.Path
			}
		}
	}
	n.dispatch(EventSave, c, opts)
}

// Copy announces that img was placed on the clipboard. The image travels
// with the notification as a preview.
func (n *Notifier) Copy(label string, img image.Image) {
	if !n.enabledFor(EventCopy) {
		return
	}
	c := Canvas{Name: strings.TrimSpace(label)}
	if c.Name == "" {
		c.Name = "canvas"
	}
	opts := platform.Options{Image: img}
	if img != nil {
		c.Width, c.Height = img.Bounds().Dx(), img.Bounds().Dy()
		path, cleanup, err := createPreview(img)
		if err != nil {
			n.logger.Warn("notification preview", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, c, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, c Canvas, opts platform.Options) {
	tmpl := n.templates[event]
	if tmpl == nil {
		return
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, c); err != nil {
		n.logger.Warn("render notification", "event", event, "err", err)
		return
	}
	text := strings.TrimSpace(body.String())
	if text == "" {
		return
	}
	if err := send(n.title, text, opts); err != nil {
		n.logger.Warn("notification failed", "event", event, "err", err)
	}
}

// send is swapped out by tests.
var send = platform.Notify

// displayable reports whether notification daemons can load files of f as
// an icon.
func displayable(f imageio.Format) bool {
	return f == imageio.PNG || f == imageio.BMP
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "pixelmaker-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := imageio.EncodeTo(f, img, imageio.PNG); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
