package mocks

import (
	"image"
	"sync"

	"github.com/user/cursorscan/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// Without overrides it returns its inputs unchanged and encodes to an empty slice.
type Renderer struct {
	mu sync.Mutex

	AnnotateFunc  func(img image.Image, trail []image.Point) image.Image
	ScaleFunc     func(img image.Image, factor float64) image.Image
	EncodePNGFunc func(img image.Image) ([]byte, error)

	AnnotateCalls int
	ScaleCalls    int
}

func (m *Renderer) Annotate(img image.Image, trail []image.Point) image.Image {
	m.mu.Lock()
	m.AnnotateCalls++
	m.mu.Unlock()
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(img, trail)
	}
	return img
}

func (m *Renderer) Scale(img image.Image, factor float64) image.Image {
	m.mu.Lock()
	m.ScaleCalls++
	m.mu.Unlock()
	if m.ScaleFunc != nil {
		return m.ScaleFunc(img, factor)
	}
	return img
}

func (m *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	if m.EncodePNGFunc != nil {
		return m.EncodePNGFunc(img)
	}
	return []byte{}, nil
}

var _ ports.Renderer = (*Renderer)(nil)
