package platform

import (
	"image"
	"image/draw"
	"time"
)

// DefaultTimeout is how long a notification stays visible when Options
// does not say otherwise.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName identifies the sender. Empty means "Pixelmaker".
	AppName string
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Image is sent inline where the platform accepts raw pixels, so no file
	// has to outlive the call.
	Image image.Image
	// Category is a freedesktop notification category such as
	// "transfer.complete". Ignored elsewhere.
	Category string
	Timeout  time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "Pixelmaker"
	}
	return o.AppName
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// rawImage is the layout of the freedesktop "image-data" hint: width,
// height, row stride, has alpha, bits per sample, channels and the pixels.
type rawImage struct {
	Width, Height, Stride int32
	HasAlpha              bool
	BitsPerSample         int32
	Channels              int32
	Data                  []byte
}

// maxInlineSide bounds inline previews; larger images are sampled down.
const maxInlineSide = 128

func newRawImage(img image.Image) rawImage {
	b := img.Bounds()
	step := 1
	for b.Dx()/step > maxInlineSide || b.Dy()/step > maxInlineSide {
		step++
	}
	w, h := b.Dx()/step, b.Dy()/step
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if step == 1 {
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	} else {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				rgba.Set(x, y, img.At(b.Min.X+x*step, b.Min.Y+y*step))
			}
		}
	}
	return rawImage{
		Width:         int32(w),
		Height:        int32(h),
		Stride:        int32(rgba.Stride),
		HasAlpha:      true,
		BitsPerSample: 8,
		Channels:      4,
		Data:          rgba.Pix,
	}
}
