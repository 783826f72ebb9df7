package mocks

import (
	"image"
	"sync"

	"github.com/user/cursorscan/pkg/ports"
)

// SavedFrame records one SaveFrame call.
type SavedFrame struct {
	Index int
	Image image.Image
	Trail []image.Point
}

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool
	frames  []SavedFrame

	SaveFrameFunc func(index int, img image.Image, trail []image.Point) error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveFrame(index int, img image.Image, trail []image.Point) error {
	m.mu.Lock()
	// The caller may keep appending to its trail.
	m.frames = append(m.frames, SavedFrame{
		Index: index,
		Image: img,
		Trail: append([]image.Point(nil), trail...),
	})
	m.mu.Unlock()
	if m.SaveFrameFunc != nil {
		return m.SaveFrameFunc(index, img, trail)
	}
	return nil
}

// Frames returns the recorded SaveFrame calls (for test verification).
func (m *DebugSink) Frames() []SavedFrame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SavedFrame(nil), m.frames...)
}

var _ ports.DebugSink = (*DebugSink)(nil)
