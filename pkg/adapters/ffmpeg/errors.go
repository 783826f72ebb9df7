package ffmpeg

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: ffmpeg not found")

	// ErrProbeFailed is returned when the diagnostics contain no recognizable video stream.
	ErrProbeFailed = errors.New("ffmpeg: could not parse video metadata")

	// ErrSpawnFailed is returned when the decoder process cannot be started.
	ErrSpawnFailed = errors.New("ffmpeg: failed to start decoder")
)
