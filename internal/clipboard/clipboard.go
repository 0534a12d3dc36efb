// Package clipboard exchanges canvas images with the system clipboard as
// PNG data.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/example/pixelmaker/internal/imageio"
)

// ErrEmpty is returned when the clipboard holds no image.
var ErrEmpty = errors.New("clipboard does not contain image data")

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := imageio.EncodeTo(&buf, img, imageio.PNG); err != nil {
		return err
	}
	return writePNG(buf.Bytes())
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (*image.RGBA, error) {
	data, err := readPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("clipboard image: %w", err)
	}
	return img, nil
}
