// Package appstate runs the interactive editor window on top of a canvas
// engine.
package appstate

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"path/filepath"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/palette"
)

const (
	statusHeight = 20
	minWindow    = 320
	maxWindow    = 1024
)

// AppState holds application configuration for the UI.
type AppState struct {
	Image   *image.RGBA
	Output  string
	Palette *palette.Palette
	Color   color.RGBA
	Fill    color.RGBA

	engineOpts []canvas.Option
	onSave     func(path string, size image.Point)
	onCopy     func(img image.Image)
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithImage sets the image the editor starts from.
func WithImage(img *image.RGBA) Option { return func(a *AppState) { a.Image = img } }

// WithOutput sets the path used when saving.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithPalette sets the palette cycled through with [ and ].
func WithPalette(p *palette.Palette) Option { return func(a *AppState) { a.Palette = p } }

// WithColor sets the initial drawing color.
func WithColor(c color.RGBA) Option { return func(a *AppState) { a.Color = c } }

// WithFill sets the color used for pixels exposed by resizing.
func WithFill(c color.RGBA) Option { return func(a *AppState) { a.Fill = c } }

// WithEngineOptions passes options to the canvas engine.
func WithEngineOptions(opts ...canvas.Option) Option {
	return func(a *AppState) { a.engineOpts = append(a.engineOpts, opts...) }
}

// WithOnSave registers a callback invoked after a successful save.
func WithOnSave(fn func(path string, size image.Point)) Option { return func(a *AppState) { a.onSave = fn } }

// WithOnCopy registers a callback invoked after the canvas is copied.
func WithOnCopy(fn func(img image.Image)) Option { return func(a *AppState) { a.onCopy = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Output:  "out.png",
		Palette: palette.Default(),
		Color:   color.RGBA{A: 255},
		Fill:    color.RGBA{255, 255, 255, 255},
	}
	for _, o := range opts {
		o(a)
	}
	if a.Image == nil {
		a.Image = image.NewRGBA(image.Rect(0, 0, 32, 32))
	}
	return a
}

// Title returns the window title for the current output path.
func (a *AppState) Title() string {
	return fmt.Sprintf("%s - Image maker for angry programmers", filepath.Base(a.Output))
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the editor on s until the window is closed.
func (a *AppState) Main(s screen.Screen) {
	opts := append([]canvas.Option{canvas.WithSurface(canvas.TextureFactory(s))}, a.engineOpts...)
	eng, err := canvas.New(a.Image, opts...)
	if err != nil {
		log.Printf("editor: %v", err)
		return
	}
	defer eng.Close()

	ed := newEditor(a, eng)
	ed.window = image.Pt(
		min(max(minWindow, eng.Size().X*8), maxWindow),
		min(max(minWindow, eng.Size().Y*8), maxWindow)+statusHeight,
	)
	ed.fit()

	w, err := s.NewWindow(&screen.NewWindowOptions{Width: ed.window.X, Height: ed.window.Y, Title: a.Title()})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			ed.resizeWindow(image.Pt(e.WidthPx, e.HeightPx))
			w.Send(paint.Event{})
		case paint.Event:
			drawFrame(s, w, ed)
		case mouse.Event:
			if ed.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if ed.handleKey(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Print(e)
		}
	}
}
