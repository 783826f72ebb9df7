package worker

import (
	"image"

	"github.com/user/cursorscan/pkg/frame"
)

// Command is an intent sent from the control side to the worker.
// The set is closed: LoadFile, Step, Seek, Play and Pause.
type Command interface {
	isCommand()
}

// LoadFile probes path, replaces the session and emits its first frame.
type LoadFile struct {
	Path string
}

// Step reads and emits one frame.
type Step struct{}

// Seek restarts the decoder at Seconds and emits one frame.
type Seek struct {
	Seconds float64
}

// Play is accepted for completeness. Pacing belongs to the control side,
// which sends Step at its own cadence.
type Play struct{}

// Pause is accepted for completeness, like Play.
type Pause struct{}

func (LoadFile) isCommand() {}
func (Step) isCommand()     {}
func (Seek) isCommand()     {}
func (Play) isCommand()     {}
func (Pause) isCommand()    {}

// Event is an observation sent from the worker to the control side.
// The set is closed: Metadata, FrameReady and Error.
type Event interface {
	isEvent()
}

// Metadata announces a newly loaded session.
type Metadata struct {
	SessionID string
	Path      string
	Duration  float64
	Width     int
	Height    int
}

// FrameReady carries one decoded frame. Ownership of Frame passes to the receiver.
// Position is nil when no marker was found.
type FrameReady struct {
	Frame    *frame.Buffer
	Width    int
	Height   int
	Position *image.Point
}

// Error reports a failed command. The worker keeps running.
type Error struct {
	Message string
	Err     error
}

func (Metadata) isEvent()   {}
func (FrameReady) isEvent() {}
func (Error) isEvent()      {}
