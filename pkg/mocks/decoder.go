package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/user/cursorscan/pkg/ports"
)

// Prober is a mock implementation of ports.MetadataProber.
type Prober struct {
	mu    sync.Mutex
	paths []string

	ProbeFunc func(ctx context.Context, path string) (ports.Metadata, error)
}

func (m *Prober) Probe(ctx context.Context, path string) (ports.Metadata, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	return ports.Metadata{}, nil
}

// Paths returns the probed paths in call order.
func (m *Prober) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

var _ ports.MetadataProber = (*Prober)(nil)

// OpenCall records one StreamOpener.Open call.
type OpenCall struct {
	Path   string
	Offset float64
}

// StreamOpener is a mock implementation of ports.StreamOpener.
// Without OpenFunc every Open returns an empty stream.
type StreamOpener struct {
	mu      sync.Mutex
	calls   []OpenCall
	streams []*FrameStream

	OpenFunc func(ctx context.Context, path string, offset float64) (ports.FrameStream, error)
}

func (m *StreamOpener) Open(ctx context.Context, path string, offset float64) (ports.FrameStream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, OpenCall{Path: path, Offset: offset})
	m.mu.Unlock()

	var (
		stream ports.FrameStream
		err    error
	)
	if m.OpenFunc != nil {
		stream, err = m.OpenFunc(ctx, path, offset)
	} else {
		stream = NewFrameStream(nil)
	}
	if err != nil {
		return nil, err
	}
	if fs, ok := stream.(*FrameStream); ok {
		m.mu.Lock()
		m.streams = append(m.streams, fs)
		m.mu.Unlock()
	}
	return stream, nil
}

// Calls returns the recorded Open calls.
func (m *StreamOpener) Calls() []OpenCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpenCall(nil), m.calls...)
}

// Streams returns the mock streams handed out so far.
func (m *StreamOpener) Streams() []*FrameStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*FrameStream(nil), m.streams...)
}

var _ ports.StreamOpener = (*StreamOpener)(nil)

// FrameStream is a mock implementation of ports.FrameStream backed by a byte slice.
// When Block is set, reads past the end wait until Close instead of returning io.EOF.
type FrameStream struct {
	mu     sync.Mutex
	data   *bytes.Reader
	closed bool
	done   chan struct{}
	closes int

	Block    bool
	CloseErr error
}

// NewFrameStream creates a stream that yields data and then io.EOF.
func NewFrameStream(data []byte) *FrameStream {
	return &FrameStream{
		data: bytes.NewReader(data),
		done: make(chan struct{}),
	}
}

// NewBlockingFrameStream creates a stream that yields data and then hangs until closed.
func NewBlockingFrameStream(data []byte) *FrameStream {
	s := NewFrameStream(data)
	s.Block = true
	return s
}

func (m *FrameStream) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	n, err := m.data.Read(p)
	m.mu.Unlock()
	if n > 0 || err != io.EOF || !m.Block {
		return n, err
	}

	<-m.done
	return 0, io.ErrClosedPipe
}

func (m *FrameStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return m.CloseErr
}

// Closed reports whether Close has been called.
func (m *FrameStream) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CloseCount returns how many times Close was called.
func (m *FrameStream) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

var _ ports.FrameStream = (*FrameStream)(nil)
