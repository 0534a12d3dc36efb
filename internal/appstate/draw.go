package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/pixelmaker/internal/canvas"
	"github.com/example/pixelmaker/internal/render"
)

var (
	backgroundColor = color.RGBA{64, 64, 64, 255}
	statusColor     = color.RGBA{220, 220, 220, 255}
	backdrop        = &render.Backdrop{Light: color.RGBA{220, 220, 220, 255}, Dark: color.RGBA{192, 192, 192, 255}, Size: 8}
)

// drawFrame brings the canvas texture up to date, paints the window chrome
// into an upload buffer and scales the canvas texture on top of it.
func drawFrame(s screen.Screen, w screen.Window, ed *editor) {
	view, err := ed.eng.NextFrame()
	if err != nil {
		log.Printf("next frame: %v", err)
	}

	b, err := s.NewBuffer(ed.window)
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	dst := ed.canvasRect()
	paintChrome(b.RGBA(), ed, dst, time.Now())
	w.Upload(image.Point{}, b, b.Bounds())

	if ts, ok := view.(*canvas.TextureSurface); ok && ts.Texture() != nil {
		w.Scale(dst, ts.Texture(), ts.Texture().Bounds(), draw.Over, nil)
	}
	w.Publish()
}

// paintChrome draws everything except the canvas pixels: the background,
// the checkerboard behind the canvas and the status line.
func paintChrome(dst *image.RGBA, ed *editor, canvasRect image.Rectangle, now time.Time) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	backdrop.Draw(dst, canvasRect.Intersect(ed.view()))

	bar := image.Rect(0, dst.Bounds().Dy()-statusHeight, dst.Bounds().Dx(), dst.Bounds().Dy())
	draw.Draw(dst, bar, image.NewUniform(statusColor), image.Point{}, draw.Src)
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(bar.Min.X+6, bar.Min.Y+(statusHeight-face.Metrics().Height.Ceil())/2+ascent)
	d.DrawString(ed.status(now))
}
