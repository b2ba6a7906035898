package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrOutOfBounds is returned when a pixel read falls outside the surface.
var ErrOutOfBounds = errors.New("pixel outside surface")

// Surface is the narrow read capability the classifier needs from a host
// raster: its pixel dimensions and a single-pixel read.
type Surface interface {
	Size() (width, height int)
	ReadPixel(x, y int) (color.RGBA, error)
}

// ImageSurface adapts an image.Image to Surface. Coordinates are relative
// to the image's bounds origin.
type ImageSurface struct {
	img    image.Image
	bounds image.Rectangle
	rgba   *image.RGBA // fast path when the image is already RGBA
}

// NewImageSurface wraps img.
func NewImageSurface(img image.Image) *ImageSurface {
	s := &ImageSurface{img: img, bounds: img.Bounds()}
	if rgba, ok := img.(*image.RGBA); ok {
		s.rgba = rgba
	}
	return s
}

// Size returns the image width and height.
func (s *ImageSurface) Size() (int, int) {
	return s.bounds.Dx(), s.bounds.Dy()
}

// ReadPixel returns the colour at (x, y) or ErrOutOfBounds.
func (s *ImageSurface) ReadPixel(x, y int) (color.RGBA, error) {
	px, py := s.bounds.Min.X+x, s.bounds.Min.Y+y
	if !(image.Point{X: px, Y: py}).In(s.bounds) {
		return color.RGBA{}, fmt.Errorf("read (%d,%d) on %dx%d: %w", x, y, s.bounds.Dx(), s.bounds.Dy(), ErrOutOfBounds)
	}
	if s.rgba != nil {
		return s.rgba.RGBAAt(px, py), nil
	}
	return color.RGBAModel.Convert(s.img.At(px, py)).(color.RGBA), nil
}
