package ports

import (
	"image"
)

// Renderer draws the detected marker trail onto frames for inspection.
type Renderer interface {
	// Annotate returns a copy of img with the trail drawn on top.
	// The source image is never modified.
	Annotate(img image.Image, trail []image.Point) image.Image

	// Scale resizes img by factor. A factor of 1 or less than or equal to 0 returns img unchanged.
	Scale(img image.Image, factor float64) image.Image

	// EncodePNG encodes an image as PNG.
	EncodePNG(img image.Image) ([]byte, error)
}
