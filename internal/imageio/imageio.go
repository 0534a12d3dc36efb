// Package imageio reads and writes canvas images in the formats the editor
// supports: png, bmp, qoi and headerless raw RGBA.
package imageio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xfmoulet/qoi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for file names whose extension is not a
// supported image format, and for loading raw files.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format identifies an on-disk image encoding.
type Format int

const (
	PNG Format = iota
	BMP
	QOI
	// Raw is tightly packed RGBA8 rows without any header.
	Raw
)

var formats = []struct {
	f   Format
	ext string
}{
	{PNG, ".png"},
	{BMP, ".bmp"},
	{QOI, ".qoi"},
	{Raw, ".raw"},
}

func (f Format) String() string {
	for _, e := range formats {
		if e.f == f {
			return strings.TrimPrefix(e.ext, ".")
		}
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extensions lists the supported file extensions, dot included.
func Extensions() []string {
	out := make([]string, len(formats))
	for i, e := range formats {
		out[i] = e.ext
	}
	return out
}

// FormatFor picks the format from the extension of path.
func FormatFor(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range formats {
		if e.ext == ext {
			return e.f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions(), " "))
}

// EncodeTo writes img to w as format.
func EncodeTo(w io.Writer, img image.Image, format Format) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case QOI:
		return qoi.Encode(w, img)
	case Raw:
		_, err := w.Write(toRGBA(img).Pix)
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
}

// Decode reads a png, bmp or qoi image.
func Decode(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return toRGBA(img), nil
}

// Load reads the image stored at path.
func Load(path string) (*image.RGBA, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if format == Raw {
		return nil, fmt.Errorf("%w: raw files carry no dimensions", ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Codec saves images to disk. The file is written next to its destination
// and renamed into place so a failed save never leaves a truncated image.
type Codec struct{}

// Encode writes img to path in the format named by its extension.
func (Codec) Encode(ctx context.Context, img image.Image, path string) (err error) {
	b := img.Bounds()
	ctx, span := otel.Tracer("pixelmaker").Start(ctx, "imageio.Codec.Encode",
		trace.WithAttributes(
			attribute.String("path", path),
			attribute.Int("width", b.Dx()),
			attribute.Int("height", b.Dy()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode failed")
		}
		span.End()
	}()

	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("format", format.String()))
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	w := bufio.NewWriter(tmp)
	if err = EncodeTo(w, img, format); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err = w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
