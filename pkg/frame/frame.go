// Package frame wraps raw decoder output in sized frame buffers.
//
// The decoder writes frames back to back with no header or delimiter, so a
// frame is simply the next Size(width, height) bytes of the stream.
package frame

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// BytesPerPixel is the size of one RGBA pixel in the raw stream.
const BytesPerPixel = 4

var (
	// ErrSizeMismatch is returned when the byte count does not match width*height*4.
	ErrSizeMismatch = errors.New("frame: buffer size mismatch")

	// ErrInvalidDimensions is returned for non-positive width or height.
	ErrInvalidDimensions = errors.New("frame: invalid dimensions")
)

// Buffer is one decoded picture in RGBA order, row-major, top to bottom.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// Size returns the number of bytes in one frame of the given dimensions.
func Size(width, height int) int {
	return width * height * BytesPerPixel
}

// New wraps pix without copying or converting it.
func New(width, height int, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if want := Size(width, height); len(pix) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(pix), want)
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// Read reads exactly one frame from r.
// It returns io.EOF when no bytes were available and io.ErrUnexpectedEOF on a partial frame.
func Read(r io.Reader, width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	pix := make([]byte, Size(width, height))
	if _, err := io.ReadFull(r, pix); err != nil {
		return nil, err
	}
	return New(width, height, pix)
}

// Stride returns the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.Width * BytesPerPixel
}

// Image returns an image.RGBA view sharing the buffer's pixels.
func (b *Buffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Stride(),
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
