package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/cursorscan/pkg/ports"
)

// readBufferSize keeps pipe reads large relative to a 1080p RGBA frame.
const readBufferSize = 1 << 20

// StreamArgs returns the decoder arguments for a raw RGBA stream of path starting at offset seconds.
func StreamArgs(path string, offset float64) []string {
	args := []string{"-i", path}
	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset, 'f', -1, 64))
	}
	return append(args,
		"-f", "image2pipe",
		"-pix_fmt", "rgba",
		"-vcodec", "rawvideo",
		"-",
	)
}

// Stream owns one running decoder process and its stdout pipe.
// Close kills the process and waits for it, so a closed Stream never leaves a child behind.
type Stream struct {
	cmd    *exec.Cmd
	reader *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

// startStream spawns ffmpegPath with args and wires its stdout.
// Stderr is discarded.
func startStream(ctx context.Context, ffmpegPath string, args []string) (*Stream, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawnFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	return &Stream{
		cmd:    cmd,
		reader: bufio.NewReaderSize(stdout, readBufferSize),
	}, nil
}

// Read reads decoded bytes from the process output.
func (s *Stream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Pid returns the process id of the decoder.
func (s *Stream) Pid() int {
	return s.cmd.Process.Pid
}

// Close terminates the decoder and blocks until it has been reaped.
// Exit errors caused by the kill are not reported.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.closeErr = fmt.Errorf("kill decoder: %w", err)
		}
		// Wait also closes the stdout pipe.
		_ = s.cmd.Wait()
	})
	return s.closeErr
}

// Opener starts raw RGBA decode streams.
type Opener struct {
	ffmpegPath string
	logger     ports.Logger
}

// NewOpener creates an opener that runs the binary at ffmpegPath.
func NewOpener(ffmpegPath string, logger ports.Logger) *Opener {
	return &Opener{
		ffmpegPath: ffmpegPath,
		logger:     logger.WithComponent("decoder"),
	}
}

// Open spawns a decoder for path starting at offset seconds.
func (o *Opener) Open(ctx context.Context, path string, offset float64) (ports.FrameStream, error) {
	stream, err := startStream(ctx, o.ffmpegPath, StreamArgs(path, offset))
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Started decoder pid %d at %.3fs", stream.Pid(), offset)
	return stream, nil
}

// Ensure the adapters implement the ports
var (
	_ ports.StreamOpener = (*Opener)(nil)
	_ ports.FrameStream  = (*Stream)(nil)
)
