// Package decode manages the single live decoder stream for the loaded video.
//
// A Manager holds at most one ports.FrameStream. Starting a new stream always
// closes the previous one first, and closing a stream reaps its process, so a
// restart never leaves an orphaned decoder behind.
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/user/cursorscan/pkg/frame"
	"github.com/user/cursorscan/pkg/ports"
)

var (
	// ErrNoSession is returned when an operation needs a loaded video.
	ErrNoSession = errors.New("decode: no session loaded")

	// ErrInvalidSession is returned for a session without positive dimensions.
	ErrInvalidSession = errors.New("decode: session has invalid dimensions")
)

// Session is the currently loaded video. It is replaced wholesale on every load.
type Session struct {
	ID       string
	Path     string
	Duration float64
	Width    int
	Height   int
}

// NewSession creates a session with a fresh ID from probed metadata.
func NewSession(path string, meta ports.Metadata) Session {
	return Session{
		ID:       uuid.NewString(),
		Path:     path,
		Duration: meta.Duration,
		Width:    meta.Width,
		Height:   meta.Height,
	}
}

// Valid reports whether frames can be read for this session.
func (s Session) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// FrameSize returns the byte length of one frame.
func (s Session) FrameSize() int {
	return frame.Size(s.Width, s.Height)
}

// Options configures a Manager.
type Options struct {
	// ReadTimeout bounds a single ReadFrame. Zero waits indefinitely.
	ReadTimeout time.Duration
}

// Manager owns the decoder stream. It is not safe for concurrent use;
// the worker is its only caller.
type Manager struct {
	opener      ports.StreamOpener
	logger      ports.Logger
	readTimeout time.Duration

	session *Session
	stream  ports.FrameStream
	frames  int
}

// NewManager creates a manager that starts streams with opener.
func NewManager(opener ports.StreamOpener, logger ports.Logger, opts Options) *Manager {
	return &Manager{
		opener:      opener,
		logger:      logger.WithComponent("decoder"),
		readTimeout: opts.ReadTimeout,
	}
}

// Session returns the loaded session, if any.
func (m *Manager) Session() (Session, bool) {
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Active reports whether a decoder stream is live.
func (m *Manager) Active() bool {
	return m.stream != nil
}

// Start makes s the current session and starts decoding it at offset seconds.
// Any live stream is closed before the new one is opened. When opening fails
// the session is kept but no stream is live, so ReadFrame yields nothing.
func (m *Manager) Start(ctx context.Context, s Session, offset float64) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSession, s.Width, s.Height)
	}

	m.stop()
	m.session = &s

	stream, err := m.opener.Open(ctx, s.Path, offset)
	if err != nil {
		return fmt.Errorf("start decoder for %s: %w", s.Path, err)
	}
	m.stream = stream
	m.frames = 0
	m.logger.Debug("Started session %s at %.3fs", s.ID, offset)
	return nil
}

// Seek restarts the decoder for the current session at t seconds.
func (m *Manager) Seek(ctx context.Context, t float64) error {
	if m.session == nil {
		return ErrNoSession
	}
	m.logger.Debug("Seeking session %s to %.3fs", m.session.ID, t)
	return m.Start(ctx, *m.session, t)
}

// ReadFrame reads the next frame from the live stream.
// It returns false with no error at end of stream, on a short read, or when
// no stream is live. A stream that ended is closed, so later reads are no-ops
// until the next Start. A malformed frame is dropped and also reported as false.
func (m *Manager) ReadFrame() (*frame.Buffer, bool) {
	if m.stream == nil || m.session == nil {
		return nil, false
	}

	buf, err := m.read()
	switch {
	case err == nil:
		m.frames++
		return buf, true
	case errors.Is(err, frame.ErrSizeMismatch), errors.Is(err, frame.ErrInvalidDimensions):
		m.logger.Debug("Dropped malformed frame: %v", err)
		return nil, false
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		m.logger.Debug("End of stream after %d frames", m.frames)
	default:
		m.logger.Debug("Read failed: %v", err)
	}
	m.stop()
	return nil, false
}

// read performs one exact frame read, bounded by the read timeout if set.
func (m *Manager) read() (*frame.Buffer, error) {
	stream := m.stream
	width, height := m.session.Width, m.session.Height

	if m.readTimeout <= 0 {
		return frame.Read(stream, width, height)
	}

	type result struct {
		buf *frame.Buffer
		err error
	}
	done := make(chan result, 1)
	go func() {
		buf, err := frame.Read(stream, width, height)
		done <- result{buf, err}
	}()

	timer := time.NewTimer(m.readTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.buf, r.err
	case <-timer.C:
		m.logger.Warn("Frame read timed out after %s", m.readTimeout)
		// Closing the stream unblocks the pending read.
		m.stop()
		<-done
		return nil, io.ErrUnexpectedEOF
	}
}

// Close stops the live stream, if any. The session is kept.
func (m *Manager) Close() error {
	if m.stream == nil {
		return nil
	}
	err := m.stream.Close()
	m.stream = nil
	if err != nil {
		return fmt.Errorf("stop decoder: %w", err)
	}
	m.logger.Debug("Stopped decoder for session %s", m.sessionID())
	return nil
}

func (m *Manager) sessionID() string {
	if m.session == nil {
		return "-"
	}
	return m.session.ID
}

// stop closes the live stream and logs instead of returning failures.
func (m *Manager) stop() {
	if err := m.Close(); err != nil {
		m.logger.Warn("Failed to stop decoder: %v", err)
	}
}
