// Package ggrenderer draws marker trails on frames using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/cursorscan/pkg/ports"
)

// Trail styling in frame pixels.
const (
	DotRadius = 5.0
	LineWidth = 3.0
)

// TrailColor is the color of trail dots and segments.
var TrailColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Annotate draws a dot at every trail point and joins consecutive points with a line.
func (r *Renderer) Annotate(img image.Image, trail []image.Point) image.Image {
	dc := gg.NewContextForImage(img)
	if len(trail) == 0 {
		return dc.Image()
	}

	dc.SetColor(TrailColor)
	for _, p := range trail {
		dc.DrawCircle(float64(p.X), float64(p.Y), DotRadius)
		dc.Fill()
	}

	if len(trail) > 1 {
		dc.SetLineWidth(LineWidth)
		dc.MoveTo(float64(trail[0].X), float64(trail[0].Y))
		for _, p := range trail[1:] {
			dc.LineTo(float64(p.X), float64(p.Y))
		}
		dc.Stroke()
	}

	return dc.Image()
}

// Scale resizes img by factor using Catmull-Rom resampling.
func (r *Renderer) Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}

	bounds := img.Bounds()
	width := int(float64(bounds.Dx())*factor + 0.5)
	height := int(float64(bounds.Dy())*factor + 0.5)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodePNG encodes an image as PNG.
func (r *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)
