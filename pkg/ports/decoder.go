package ports

import (
	"context"
	"io"
)

// Metadata describes a probed media file.
type Metadata struct {
	Duration float64 // Duration in seconds, 0 when unknown
	Width    int     // Frame width in pixels
	Height   int     // Frame height in pixels
}

// MetadataProber extracts duration and frame resolution from a media file.
type MetadataProber interface {
	// Probe inspects the file at path without decoding pixel data.
	Probe(ctx context.Context, path string) (Metadata, error)
}

// FrameStream is the readable output of one live decoder process.
// Close terminates the producer and returns only after it has exited.
type FrameStream interface {
	io.Reader

	// Close stops the decoder and releases the pipe. It is safe to call more than once.
	Close() error
}

// StreamOpener starts decoders that emit raw RGBA frames (4 bytes per pixel, row-major).
type StreamOpener interface {
	// Open starts decoding path from offset seconds. An offset of 0 starts at the beginning.
	Open(ctx context.Context, path string, offset float64) (FrameStream, error)
}
