package controller

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/user/cursorscan/pkg/adapters/logger"
	"github.com/user/cursorscan/pkg/frame"
	"github.com/user/cursorscan/pkg/mocks"
	"github.com/user/cursorscan/pkg/worker"
)

// fakeChannel records commands and hands out scripted events.
type fakeChannel struct {
	mu     sync.Mutex
	sent   []worker.Command
	events []worker.Event

	// OnSend, if set, runs for every command and may queue events.
	OnSend func(ch *fakeChannel, cmd worker.Command)
}

func (f *fakeChannel) Send(cmd worker.Command) bool {
	f.mu.Lock()
	f.sent = append(f.sent, cmd)
	f.mu.Unlock()
	if f.OnSend != nil {
		f.OnSend(f, cmd)
	}
	return true
}

func (f *fakeChannel) Poll() (worker.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

func (f *fakeChannel) push(evs ...worker.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evs...)
}

func (f *fakeChannel) commands() []worker.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]worker.Command(nil), f.sent...)
}

func (f *fakeChannel) steps() int {
	n := 0
	for _, cmd := range f.commands() {
		if _, ok := cmd.(worker.Step); ok {
			n++
		}
	}
	return n
}

func testFrame(pos *image.Point) worker.FrameReady {
	buf, _ := frame.New(2, 2, make([]byte, frame.Size(2, 2)))
	return worker.FrameReady{Frame: buf, Width: 2, Height: 2, Position: pos}
}

func pt(x, y int) *image.Point {
	return &image.Point{X: x, Y: y}
}

func newController(ch Channel, opts Options) *Controller {
	return New(ch, mocks.NewDebugSink(false), logger.NewNoop(), opts)
}

func TestController_OpenClearsTrailAndStops(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, DefaultOptions())
	now := time.Now()

	c.TogglePlay(now)
	ch.push(testFrame(pt(1, 2)))
	c.Tick(now)
	if len(c.Positions()) != 1 {
		t.Fatalf("expected 1 position, got %d", len(c.Positions()))
	}

	c.Open("clip.mp4")

	if len(c.Positions()) != 0 {
		t.Error("expected Open to clear the trail")
	}
	if c.Mode() != ModeIdle {
		t.Errorf("expected Open to stop playback, got %s", c.Mode())
	}
	cmds := ch.commands()
	if load, ok := cmds[len(cmds)-1].(worker.LoadFile); !ok || load.Path != "clip.mp4" {
		t.Errorf("expected LoadFile(clip.mp4), got %#v", cmds[len(cmds)-1])
	}
}

func TestController_MetadataResetsTime(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, DefaultOptions())
	now := time.Now()

	ch.push(testFrame(nil), testFrame(nil))
	c.Tick(now)
	if c.CurrentTime() == 0 {
		t.Fatal("expected current time to advance with frames")
	}

	ch.push(worker.Metadata{Duration: 12.5, Width: 1280, Height: 720})
	c.Tick(now)

	if c.CurrentTime() != 0 {
		t.Errorf("expected Metadata to reset current time, got %v", c.CurrentTime())
	}
	if c.Duration() != 12.5 {
		t.Errorf("expected duration 12.5, got %v", c.Duration())
	}
	if w, h := c.FrameSize(); w != 1280 || h != 720 {
		t.Errorf("expected 1280x720, got %dx%d", w, h)
	}
}

func TestController_TrailAndTime(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, DefaultOptions())

	ch.push(testFrame(pt(3, 4)), testFrame(nil), testFrame(pt(5, 6)))
	c.Tick(time.Now())

	want := []image.Point{{X: 3, Y: 4}, {X: 5, Y: 6}}
	got := c.Positions()
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if diff := c.CurrentTime() - 3.0/60.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected current time 3/60, got %v", c.CurrentTime())
	}

	s := c.Summary()
	if s.Frames != 3 || s.Markers != 2 {
		t.Errorf("expected 3 frames and 2 markers, got %+v", s)
	}

	c.ClearPositions()
	if len(c.Positions()) != 0 {
		t.Error("expected ClearPositions to empty the trail")
	}
}

func TestController_PlayPacing(t *testing.T) {
	ch := &fakeChannel{}
	opts := DefaultOptions()
	opts.Speed = 0.5
	c := newController(ch, opts)
	start := time.Now()

	c.TogglePlay(start)
	if c.StepInterval() != time.Second/30 {
		t.Fatalf("expected step interval 1/30s at half speed, got %s", c.StepInterval())
	}

	c.Tick(start.Add(10 * time.Millisecond))
	if ch.steps() != 0 {
		t.Errorf("expected no step before the interval, got %d", ch.steps())
	}

	c.Tick(start.Add(40 * time.Millisecond))
	if ch.steps() != 1 {
		t.Errorf("expected one step after the interval, got %d", ch.steps())
	}

	c.Tick(start.Add(50 * time.Millisecond))
	if ch.steps() != 1 {
		t.Errorf("expected pacing to restart from the last step, got %d", ch.steps())
	}
}

func TestController_MagicPacing(t *testing.T) {
	ch := &fakeChannel{}
	opts := DefaultOptions()
	opts.Interval = 200 * time.Millisecond
	c := newController(ch, opts)
	start := time.Now()

	c.TogglePlay(start)
	c.ToggleMagic(start)
	if c.Mode() != ModeMagic {
		t.Fatalf("expected magic mode, got %s", c.Mode())
	}

	c.Tick(start.Add(100 * time.Millisecond))
	c.Tick(start.Add(200 * time.Millisecond))
	c.Tick(start.Add(300 * time.Millisecond))
	c.Tick(start.Add(400 * time.Millisecond))
	if ch.steps() != 2 {
		t.Errorf("expected 2 steps in 400ms at 200ms interval, got %d", ch.steps())
	}

	c.TogglePlay(start)
	if c.Mode() != ModePlay {
		t.Errorf("expected play to replace magic mode, got %s", c.Mode())
	}

	c.TogglePlay(start)
	if c.Mode() != ModeIdle {
		t.Errorf("expected second toggle to pause, got %s", c.Mode())
	}
	if c.StepInterval() != 0 {
		t.Error("expected no stepping while idle")
	}
}

func playInterval(speed float64) time.Duration {
	return time.Duration(float64(time.Second) / (FrameRate * speed))
}

func TestController_Clamps(t *testing.T) {
	c := newController(&fakeChannel{}, DefaultOptions())

	c.SetSpeed(10)
	c.TogglePlay(time.Now())
	if got := c.StepInterval(); got != playInterval(MaxSpeed) {
		t.Errorf("expected speed clamped to %v, got interval %s", MaxSpeed, got)
	}

	c.SetSpeed(0.001)
	if got := c.StepInterval(); got != playInterval(MinSpeed) {
		t.Errorf("expected speed clamped to %v, got interval %s", MinSpeed, got)
	}

	c.ToggleMagic(time.Now())
	c.SetInterval(time.Hour)
	if c.StepInterval() != MaxInterval {
		t.Errorf("expected interval clamped to %s, got %s", MaxInterval, c.StepInterval())
	}
	c.SetInterval(time.Microsecond)
	if c.StepInterval() != MinInterval {
		t.Errorf("expected interval clamped to %s, got %s", MinInterval, c.StepInterval())
	}
}

func TestController_SeekTo(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, DefaultOptions())

	c.SeekTo(7.5)

	if c.CurrentTime() != 7.5 {
		t.Errorf("expected current time 7.5, got %v", c.CurrentTime())
	}
	cmds := ch.commands()
	if seek, ok := cmds[0].(worker.Seek); !ok || seek.Seconds != 7.5 {
		t.Errorf("expected Seek(7.5), got %#v", cmds[0])
	}
}

func TestController_DebugSink(t *testing.T) {
	ch := &fakeChannel{}
	sink := mocks.NewDebugSink(true)
	c := New(ch, sink, logger.NewNoop(), DefaultOptions())

	ch.push(testFrame(pt(1, 1)), testFrame(nil))
	c.Tick(time.Now())

	saved := sink.Frames()
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved frames, got %d", len(saved))
	}
	if saved[0].Index != 0 || saved[1].Index != 1 {
		t.Errorf("expected indices 0 and 1, got %d and %d", saved[0].Index, saved[1].Index)
	}
	if len(saved[0].Trail) != 1 || len(saved[1].Trail) != 1 {
		t.Errorf("expected the trail to be passed with each frame, got %v and %v", saved[0].Trail, saved[1].Trail)
	}
	if saved[0].Image.Bounds().Dx() != 2 {
		t.Errorf("expected 2px wide image, got %v", saved[0].Image.Bounds())
	}
}

func TestController_DebugSinkFailureIsNotFatal(t *testing.T) {
	ch := &fakeChannel{}
	sink := mocks.NewDebugSink(true)
	sink.SaveFrameFunc = func(index int, img image.Image, trail []image.Point) error {
		return errors.New("disk full")
	}
	c := New(ch, sink, logger.NewNoop(), DefaultOptions())

	ch.push(testFrame(pt(1, 1)), testFrame(pt(2, 2)))
	c.Tick(time.Now())

	if c.Summary().Frames != 2 {
		t.Errorf("expected both frames to be counted, got %d", c.Summary().Frames)
	}
}

// scriptedWorker answers LoadFile with metadata and a frame, and every Step with the
// next scripted frame until they run out.
func scriptedWorker(frames ...worker.FrameReady) func(*fakeChannel, worker.Command) {
	next := 0
	return func(ch *fakeChannel, cmd worker.Command) {
		switch cmd.(type) {
		case worker.LoadFile:
			ch.push(worker.Metadata{Duration: 1, Width: 2, Height: 2}, testFrame(nil))
		case worker.Step:
			if next < len(frames) {
				ch.push(frames[next])
				next++
			}
		}
	}
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.Tick = time.Millisecond
	opts.Stall = 100 * time.Millisecond
	opts.Speed = MaxSpeed
	return opts
}

func TestController_RunUntilStall(t *testing.T) {
	ch := &fakeChannel{OnSend: scriptedWorker(testFrame(pt(1, 1)), testFrame(pt(2, 2)), testFrame(nil))}
	c := newController(ch, fastOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary, err := c.Run(ctx, "clip.mp4")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Frames != 4 {
		t.Errorf("expected 4 frames, got %d", summary.Frames)
	}
	if summary.Markers != 2 {
		t.Errorf("expected 2 markers, got %d", summary.Markers)
	}
	if summary.Path != "clip.mp4" || summary.Width != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestController_RunMaxFrames(t *testing.T) {
	var many []worker.FrameReady
	for i := 0; i < 100; i++ {
		many = append(many, testFrame(nil))
	}
	ch := &fakeChannel{OnSend: scriptedWorker(many...)}
	opts := fastOptions()
	opts.MaxFrames = 5
	c := newController(ch, opts)

	summary, err := c.Run(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Frames != 5 {
		t.Errorf("expected to stop at 5 frames, got %d", summary.Frames)
	}
}

func TestController_RunStartOffset(t *testing.T) {
	ch := &fakeChannel{OnSend: func(ch *fakeChannel, cmd worker.Command) {
		switch cmd.(type) {
		case worker.LoadFile:
			ch.push(worker.Metadata{SessionID: "s-1", Duration: 10, Width: 2, Height: 2}, testFrame(pt(1, 1)))
		case worker.Seek:
			ch.push(testFrame(pt(7, 7)))
		}
	}}
	opts := fastOptions()
	opts.StartOffset = 5
	c := newController(ch, opts)

	summary, err := c.Run(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var seeks []float64
	seekIndex, firstStep := -1, -1
	for i, cmd := range ch.commands() {
		switch v := cmd.(type) {
		case worker.Seek:
			seeks = append(seeks, v.Seconds)
			seekIndex = i
		case worker.Step:
			if firstStep < 0 {
				firstStep = i
			}
		}
	}
	if len(seeks) != 1 || seeks[0] != 5 {
		t.Fatalf("expected one Seek to 5s, got %v", seeks)
	}
	if firstStep >= 0 && firstStep < seekIndex {
		t.Error("expected no Step before the start offset Seek")
	}

	// The frame decoded at 0 is dropped; only the frame at the offset counts.
	if summary.Frames != 1 || summary.Markers != 1 {
		t.Errorf("expected 1 frame with 1 marker, got %d frames and %d markers", summary.Frames, summary.Markers)
	}
	if len(summary.Positions) != 1 || summary.Positions[0] != (image.Point{X: 7, Y: 7}) {
		t.Errorf("expected positions [(7,7)], got %v", summary.Positions)
	}
	if diff := summary.CurrentTime - (5 + 1/FrameRate); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected current time %v, got %v", 5+1/FrameRate, summary.CurrentTime)
	}
}

func TestController_RunStartOffsetWithoutFirstFrame(t *testing.T) {
	ch := &fakeChannel{OnSend: func(ch *fakeChannel, cmd worker.Command) {
		if _, ok := cmd.(worker.LoadFile); ok {
			ch.push(worker.Metadata{Duration: 1, Width: 2, Height: 2})
		}
	}}
	opts := fastOptions()
	opts.StartOffset = 5
	c := newController(ch, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary, err := c.Run(ctx, "empty.mp4")
	if err != nil {
		t.Fatalf("expected Run to stop on stall, got %v", err)
	}
	if summary.Frames != 0 {
		t.Errorf("expected no frames, got %d", summary.Frames)
	}
}

func TestController_RunMagicMode(t *testing.T) {
	ch := &fakeChannel{OnSend: scriptedWorker(testFrame(nil))}
	opts := fastOptions()
	opts.Mode = ModeMagic
	opts.Interval = 10 * time.Millisecond
	c := newController(ch, opts)

	summary, err := c.Run(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", summary.Frames)
	}
	for _, cmd := range ch.commands() {
		if _, ok := cmd.(worker.Play); ok {
			t.Error("expected magic mode not to send Play")
		}
	}
}

func TestController_RunLoadFailure(t *testing.T) {
	boom := errors.New("ffmpeg: could not parse video metadata")
	ch := &fakeChannel{OnSend: func(ch *fakeChannel, cmd worker.Command) {
		if _, ok := cmd.(worker.LoadFile); ok {
			ch.push(worker.Error{Message: boom.Error(), Err: boom})
		}
	}}
	c := newController(ch, fastOptions())

	_, err := c.Run(context.Background(), "broken.mp4")
	if !errors.Is(err, ErrLoadFailed) || !errors.Is(err, boom) {
		t.Errorf("expected load failure wrapping the worker error, got %v", err)
	}
}

func TestController_RunSpawnFailure(t *testing.T) {
	boom := errors.New("ffmpeg: failed to start decoder")
	ch := &fakeChannel{OnSend: func(ch *fakeChannel, cmd worker.Command) {
		if _, ok := cmd.(worker.LoadFile); ok {
			ch.push(worker.Metadata{Duration: 1, Width: 2, Height: 2}, worker.Error{Message: boom.Error(), Err: boom})
		}
	}}
	c := newController(ch, fastOptions())

	_, err := c.Run(context.Background(), "clip.mp4")
	if !errors.Is(err, ErrLoadFailed) || !errors.Is(err, boom) {
		t.Errorf("expected a spawn failure after Metadata to fail the load, got %v", err)
	}
}

func TestController_ErrorAfterFrameIsNotALoadFailure(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, DefaultOptions())
	now := time.Now()

	c.Open("clip.mp4")
	ch.push(worker.Metadata{Duration: 1, Width: 2, Height: 2}, testFrame(nil), worker.Error{Message: "seek failed"})
	c.Tick(now)

	if c.loadErr != nil {
		t.Errorf("expected an error after the first frame to be reported only, got %v", c.loadErr)
	}
}

func TestController_SummarySessionID(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, DefaultOptions())

	c.Open("clip.mp4")
	ch.push(worker.Metadata{SessionID: "9b2f", Duration: 1, Width: 2, Height: 2})
	c.Tick(time.Now())
	if got := c.Summary().SessionID; got != "9b2f" {
		t.Errorf("expected session ID from Metadata, got %q", got)
	}

	c.Open("other.mp4")
	if got := c.Summary().SessionID; got != "" {
		t.Errorf("expected Open to clear the session ID, got %q", got)
	}
}

func TestController_RunCancelled(t *testing.T) {
	ch := &fakeChannel{}
	c := newController(ch, fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Run(ctx, "clip.mp4"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"play", ModePlay, false},
		{"", ModePlay, false},
		{"Magic", ModeMagic, false},
		{"rewind", ModeIdle, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
