// Package worker runs the single consumer that owns the decoder.
//
// The control side talks to it only through a Channel: commands go in on one
// unbounded queue, events come out on another. Commands are executed one at a
// time in arrival order, so the worker never has more than one decoder alive.
package worker

import (
	"context"

	"github.com/user/cursorscan/pkg/decode"
	"github.com/user/cursorscan/pkg/marker"
	"github.com/user/cursorscan/pkg/ports"
	"github.com/user/cursorscan/pkg/queue"
)

// Worker executes commands against a decode.Manager.
type Worker struct {
	prober   ports.MetadataProber
	manager  *decode.Manager
	logger   ports.Logger
	commands *queue.Queue[Command]
	events   *queue.Queue[Event]
}

// Channel is the control-side handle to a Worker.
type Channel struct {
	commands *queue.Queue[Command]
	events   *queue.Queue[Event]
}

// New creates a worker and the channel used to drive it.
func New(prober ports.MetadataProber, manager *decode.Manager, logger ports.Logger) (*Worker, *Channel) {
	commands := queue.New[Command]()
	events := queue.New[Event]()

	w := &Worker{
		prober:   prober,
		manager:  manager,
		logger:   logger.WithComponent("worker"),
		commands: commands,
		events:   events,
	}
	return w, &Channel{commands: commands, events: events}
}

// Send queues cmd for the worker. It never blocks and returns false once the channel is closed.
func (c *Channel) Send(cmd Command) bool {
	return c.commands.Push(cmd)
}

// Poll returns the next pending event without blocking.
func (c *Channel) Poll() (Event, bool) {
	return c.events.TryPop()
}

// Events returns the event stream. It is closed when the worker exits.
func (c *Channel) Events() <-chan Event {
	return c.events.Out()
}

// Close stops accepting commands. The worker finishes the queued ones and exits.
func (c *Channel) Close() {
	c.commands.Close()
}

// Run processes commands until ctx is cancelled or the channel is closed.
// Command failures become Error events; they never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	defer w.events.Close()
	defer func() {
		if err := w.manager.Close(); err != nil {
			w.logger.Warn("Failed to stop decoder: %v", err)
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-w.commands.Out():
			if !ok {
				return nil
			}
			w.handle(ctx, cmd)
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case LoadFile:
		w.load(ctx, c.Path)
	case Step:
		w.step()
	case Seek:
		w.seek(ctx, c.Seconds)
	case Play, Pause:
		// Pacing is owned by the control side.
	default:
		w.logger.Warn("Unknown command %T", cmd)
	}
}

// load runs probe, Metadata, start at 0, then emits the first frame.
// A failed probe leaves the previous session untouched.
func (w *Worker) load(ctx context.Context, path string) {
	w.logger.Info("Loading %s", path)

	meta, err := w.prober.Probe(ctx, path)
	if err != nil {
		w.fail(err)
		return
	}

	session := decode.NewSession(path, meta)
	if !session.Valid() {
		w.fail(decode.ErrInvalidSession)
		return
	}

	w.logger.Info("Loaded %s as session %s: %.2fs, %dx%d", path, session.ID, session.Duration, session.Width, session.Height)
	w.emit(Metadata{
		SessionID: session.ID,
		Path:      session.Path,
		Duration:  session.Duration,
		Width:     session.Width,
		Height:    session.Height,
	})

	if err := w.manager.Start(ctx, session, 0); err != nil {
		w.fail(err)
		return
	}
	w.step()
}

func (w *Worker) seek(ctx context.Context, t float64) {
	if _, ok := w.manager.Session(); !ok {
		w.logger.Debug("Ignoring seek without a loaded file")
		return
	}
	if err := w.manager.Seek(ctx, t); err != nil {
		w.fail(err)
		return
	}
	w.step()
}

// step reads one frame and emits it with the marker position, if any.
// No frame means no event.
func (w *Worker) step() {
	buf, ok := w.manager.ReadFrame()
	if !ok {
		return
	}

	ev := FrameReady{
		Frame:  buf,
		Width:  buf.Width,
		Height: buf.Height,
	}
	if pos, found := marker.Find(buf.Pix, buf.Width); found {
		ev.Position = &pos
	}
	w.emit(ev)
}

func (w *Worker) fail(err error) {
	w.logger.Error("Video error: %s", err)
	w.emit(Error{Message: err.Error(), Err: err})
}

func (w *Worker) emit(ev Event) {
	w.events.Push(ev)
}
