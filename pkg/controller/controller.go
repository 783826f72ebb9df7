// Package controller is the control side of a scan: it paces Step commands,
// polls worker events once per tick and keeps the marker trail.
package controller

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/user/cursorscan/pkg/ports"
	"github.com/user/cursorscan/pkg/worker"
)

// Pacing limits and defaults, matching the interactive controls.
const (
	MinSpeed        = 0.07
	MaxSpeed        = 2.0
	DefaultSpeed    = 1.0
	MinInterval     = time.Millisecond
	MaxInterval     = 10 * time.Second
	DefaultInterval = time.Second
	DefaultTick     = 16 * time.Millisecond
	DefaultStall    = 2 * time.Second

	// FrameRate is the nominal rate used to advance the current time per frame.
	FrameRate = 60.0
)

// ErrLoadFailed is returned by Run when the file could not be loaded.
var ErrLoadFailed = errors.New("controller: load failed")

// Mode selects how Step commands are paced.
type Mode int

const (
	// ModeIdle sends no Step commands.
	ModeIdle Mode = iota
	// ModePlay steps once per 1/(60*speed) seconds.
	ModePlay
	// ModeMagic steps once per interval.
	ModeMagic
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePlay:
		return "play"
	case ModeMagic:
		return "magic"
	default:
		return "unknown"
	}
}

// ParseMode parses "play" or "magic".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "play":
		return ModePlay, nil
	case "magic":
		return ModeMagic, nil
	default:
		return ModeIdle, fmt.Errorf("unknown mode %q", s)
	}
}

// Channel is the worker handle the controller drives.
type Channel interface {
	Send(cmd worker.Command) bool
	Poll() (worker.Event, bool)
}

// Options configures a Controller.
type Options struct {
	Mode        Mode
	Speed       float64
	Interval    time.Duration
	StartOffset float64

	// MaxFrames stops Run after that many frames. Zero means until the stream ends.
	MaxFrames int

	// Tick is the polling period of Run.
	Tick time.Duration

	// Stall stops Run when no frame arrives for this long.
	Stall time.Duration
}

// DefaultOptions returns the options of a plain play-mode scan.
func DefaultOptions() Options {
	return Options{
		Mode:     ModePlay,
		Speed:    DefaultSpeed,
		Interval: DefaultInterval,
		Tick:     DefaultTick,
		Stall:    DefaultStall,
	}
}

// Summary describes a finished scan.
type Summary struct {
	SessionID   string
	Path        string
	Duration    float64
	Width       int
	Height      int
	Frames      int
	Markers     int
	CurrentTime float64
	Positions   []image.Point
}

// Controller holds the control-side state. All methods must be called from one goroutine.
type Controller struct {
	ch     Channel
	sink   ports.DebugSink
	logger ports.Logger
	opts   Options

	path      string
	mode      Mode
	speed     float64
	interval  time.Duration
	lastStep  time.Time
	lastFrame time.Time

	loaded      bool
	sessionID   string
	duration    float64
	width       int
	height      int
	currentTime float64
	frames      int
	markers     int
	positions   []image.Point
	loadErr     error

	// pendingSeek discards the frame emitted by the load and seeks to seekOffset instead.
	pendingSeek bool
	seekOffset  float64
}

// New creates a controller that drives ch.
func New(ch Channel, sink ports.DebugSink, logger ports.Logger, opts Options) *Controller {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Stall <= 0 {
		opts.Stall = DefaultStall
	}
	c := &Controller{
		ch:     ch,
		sink:   sink,
		logger: logger.WithComponent("controller"),
		opts:   opts,
	}
	c.SetSpeed(opts.Speed)
	c.SetInterval(opts.Interval)
	return c
}

// Open loads path. The trail and the frame counters are cleared and stepping stops.
func (c *Controller) Open(path string) {
	c.path = path
	c.positions = nil
	c.frames = 0
	c.markers = 0
	c.currentTime = 0
	c.mode = ModeIdle
	c.loaded = false
	c.sessionID = ""
	c.loadErr = nil
	c.pendingSeek = false
	c.ch.Send(worker.LoadFile{Path: path})
}

// OpenAt loads path and continues from offset seconds. The frame the load
// decodes at 0 is dropped, so nothing before offset reaches the trail.
func (c *Controller) OpenAt(path string, offset float64) {
	c.Open(path)
	if offset > 0 {
		c.pendingSeek = true
		c.seekOffset = offset
	}
}

// TogglePlay starts or stops play pacing. Starting play stops magic mode.
func (c *Controller) TogglePlay(now time.Time) {
	if c.mode == ModePlay {
		c.mode = ModeIdle
		c.ch.Send(worker.Pause{})
		return
	}
	c.mode = ModePlay
	c.lastStep = now
	c.ch.Send(worker.Play{})
}

// ToggleMagic starts or stops fixed-interval stepping. Starting it stops play.
func (c *Controller) ToggleMagic(now time.Time) {
	if c.mode == ModeMagic {
		c.mode = ModeIdle
		return
	}
	c.mode = ModeMagic
	c.lastStep = now
}

// Mode returns the current pacing mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SetSpeed sets the play speed, clamped to [MinSpeed, MaxSpeed]. Zero selects DefaultSpeed.
func (c *Controller) SetSpeed(speed float64) {
	switch {
	case speed == 0:
		speed = DefaultSpeed
	case speed < MinSpeed:
		speed = MinSpeed
	case speed > MaxSpeed:
		speed = MaxSpeed
	}
	c.speed = speed
}

// SetInterval sets the magic-mode interval, clamped to [MinInterval, MaxInterval]. Zero selects DefaultInterval.
func (c *Controller) SetInterval(d time.Duration) {
	switch {
	case d == 0:
		d = DefaultInterval
	case d < MinInterval:
		d = MinInterval
	case d > MaxInterval:
		d = MaxInterval
	}
	c.interval = d
}

// StepInterval returns the delay between Step commands in the current mode.
func (c *Controller) StepInterval() time.Duration {
	switch c.mode {
	case ModePlay:
		return time.Duration(float64(time.Second) / (FrameRate * c.speed))
	case ModeMagic:
		return c.interval
	default:
		return 0
	}
}

// SeekTo restarts decoding at t seconds.
func (c *Controller) SeekTo(t float64) {
	c.currentTime = t
	c.ch.Send(worker.Seek{Seconds: t})
}

// ClearPositions empties the trail.
func (c *Controller) ClearPositions() {
	c.positions = nil
}

// Positions returns a copy of the trail.
func (c *Controller) Positions() []image.Point {
	return append([]image.Point(nil), c.positions...)
}

// CurrentTime returns the playback position estimated from received frames.
func (c *Controller) CurrentTime() float64 {
	return c.currentTime
}

// Duration returns the duration of the loaded video.
func (c *Controller) Duration() float64 {
	return c.duration
}

// FrameSize returns the frame dimensions of the loaded video.
func (c *Controller) FrameSize() (int, int) {
	return c.width, c.height
}

// Tick drains pending events and sends a Step when one is due.
func (c *Controller) Tick(now time.Time) {
	for {
		ev, ok := c.ch.Poll()
		if !ok {
			break
		}
		c.handle(now, ev)
	}

	if interval := c.StepInterval(); interval > 0 && now.Sub(c.lastStep) >= interval {
		c.ch.Send(worker.Step{})
		c.lastStep = now
	}
}

func (c *Controller) handle(now time.Time, ev worker.Event) {
	switch e := ev.(type) {
	case worker.Metadata:
		c.loaded = true
		c.sessionID = e.SessionID
		c.duration = e.Duration
		c.width, c.height = e.Width, e.Height
		c.currentTime = 0
		c.lastFrame = now
	case worker.FrameReady:
		if c.pendingSeek {
			c.pendingSeek = false
			c.lastFrame = now
			c.SeekTo(c.seekOffset)
			return
		}
		c.frame(now, e)
	case worker.Error:
		c.logger.Error("Video error: %s", e.Message)
		// Until a frame arrives the load has not succeeded, whether probing or spawning failed.
		if c.frames == 0 && c.loadErr == nil {
			c.loadErr = e.Err
			if c.loadErr == nil {
				c.loadErr = errors.New(e.Message)
			}
		}
	}
}

func (c *Controller) frame(now time.Time, e worker.FrameReady) {
	index := c.frames
	c.frames++
	c.lastFrame = now

	if e.Position != nil {
		c.positions = append(c.positions, *e.Position)
		c.markers++
		c.logger.Info("Frame %d at %.2fs: marker at (%d, %d)", index, c.currentTime, e.Position.X, e.Position.Y)
	}
	c.currentTime += 1 / FrameRate

	if c.sink.Enabled() && e.Frame != nil {
		if err := c.sink.SaveFrame(index, e.Frame.Image(), c.positions); err != nil {
			c.logger.Warn("Failed to save debug frame %d: %v", index, err)
		}
	}
}

// Summary returns the current scan totals.
func (c *Controller) Summary() Summary {
	return Summary{
		SessionID:   c.sessionID,
		Path:        c.path,
		Duration:    c.duration,
		Width:       c.width,
		Height:      c.height,
		Frames:      c.frames,
		Markers:     c.markers,
		CurrentTime: c.currentTime,
		Positions:   c.Positions(),
	}
}

// Run scans path until the stream stops producing frames, MaxFrames is
// reached or ctx is cancelled. It fails only when the file cannot be loaded.
func (c *Controller) Run(ctx context.Context, path string) (Summary, error) {
	c.OpenAt(path, c.opts.StartOffset)

	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	started := false
	for {
		select {
		case <-ctx.Done():
			return c.Summary(), ctx.Err()
		case now := <-ticker.C:
			c.Tick(now)

			if c.loadErr != nil {
				return c.Summary(), fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, c.loadErr)
			}

			if !c.loaded {
				continue
			}

			// With a start offset, pacing waits until the Seek has been sent.
			if !started && !c.pendingSeek {
				started = true
				c.startPacing(now)
			}

			if c.opts.MaxFrames > 0 && c.frames >= c.opts.MaxFrames {
				return c.Summary(), nil
			}

			if stall := c.stallLimit(); now.Sub(c.lastFrame) >= stall {
				c.logger.Info("No frame for %s, stopping", stall)
				return c.Summary(), nil
			}
		}
	}
}

func (c *Controller) startPacing(now time.Time) {
	switch c.opts.Mode {
	case ModeMagic:
		c.ToggleMagic(now)
	default:
		c.TogglePlay(now)
	}
}

// stallLimit keeps the stall window longer than the slowest step interval.
func (c *Controller) stallLimit() time.Duration {
	limit := c.opts.Stall
	if step := 3 * c.StepInterval(); step > limit {
		limit = step
	}
	return limit
}
