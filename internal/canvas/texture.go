package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/exp/shiny/screen"
)

// TextureSurface keeps the canvas in a shiny texture. Texel updates are
// staged in an upload buffer and sent to the texture on Flush.
type TextureSurface struct {
	s     screen.Screen
	tex   screen.Texture
	buf   screen.Buffer
	dirty image.Rectangle

	// storage allocated by Reserve for the next Replace
	nextTex screen.Texture
	nextBuf screen.Buffer
}

// TextureFactory returns a SurfaceFactory allocating textures from s.
func TextureFactory(s screen.Screen) SurfaceFactory {
	return func(img *image.RGBA) (Surface, error) {
		t := &TextureSurface{s: s}
		if err := t.Replace(img); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Texture returns the texture to draw. It stays valid until the next
// NextFrame call.
func (t *TextureSurface) Texture() screen.Texture { return t.tex }

func (t *TextureSurface) Size() image.Point {
	if t.tex == nil {
		return image.Point{}
	}
	return t.tex.Size()
}

func (t *TextureSurface) Reserve(size image.Point) error {
	if t.tex != nil && t.tex.Size() == size {
		return nil
	}
	if t.nextTex != nil && t.nextTex.Size() == size {
		return nil
	}
	tex, buf, err := t.alloc(size)
	if err != nil {
		return err
	}
	t.releaseNext()
	t.nextTex, t.nextBuf = tex, buf
	return nil
}

func (t *TextureSurface) alloc(size image.Point) (screen.Texture, screen.Buffer, error) {
	buf, err := t.s.NewBuffer(size)
	if err != nil {
		return nil, nil, fmt.Errorf("new buffer: %w", err)
	}
	tex, err := t.s.NewTexture(size)
	if err != nil {
		buf.Release()
		return nil, nil, fmt.Errorf("new texture: %w", err)
	}
	return tex, buf, nil
}

func (t *TextureSurface) Replace(img *image.RGBA) error {
	b := img.Bounds()
	size := b.Size()
	if t.tex == nil || t.tex.Size() != size {
		if t.nextTex == nil || t.nextTex.Size() != size {
			if err := t.Reserve(size); err != nil {
				return err
			}
		}
		t.releaseCurrent()
		t.tex, t.buf = t.nextTex, t.nextBuf
		t.nextTex, t.nextBuf = nil, nil
	} else {
		// a reservation for a size that was undone before this frame
		t.releaseNext()
	}
	draw.Draw(t.buf.RGBA(), t.buf.Bounds(), img, b.Min, draw.Src)
	t.dirty = t.buf.Bounds()
	return nil
}

func (t *TextureSurface) SetPixel(p image.Point, c color.RGBA) {
	if t.buf == nil || !p.In(t.buf.Bounds()) {
		return
	}
	t.buf.RGBA().SetRGBA(p.X, p.Y, c)
	t.dirty = t.dirty.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
}

func (t *TextureSurface) Flush() error {
	if t.tex == nil || t.dirty.Empty() {
		return nil
	}
	t.tex.Upload(t.dirty.Min, t.buf, t.dirty)
	t.dirty = image.Rectangle{}
	return nil
}

func (t *TextureSurface) Release() {
	t.releaseNext()
	t.releaseCurrent()
}

func (t *TextureSurface) releaseCurrent() {
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
	if t.buf != nil {
		t.buf.Release()
		t.buf = nil
	}
}

func (t *TextureSurface) releaseNext() {
	if t.nextTex != nil {
		t.nextTex.Release()
		t.nextTex = nil
	}
	if t.nextBuf != nil {
		t.nextBuf.Release()
		t.nextBuf = nil
	}
}
