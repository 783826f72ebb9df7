package ports

import (
	"image"
)

// DebugSink receives decoded frames for offline inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	// Callers skip building annotated frames when it returns false.
	Enabled() bool

	// SaveFrame saves frame number index with the marker trail seen so far.
	SaveFrame(index int, img image.Image, trail []image.Point) error
}
