// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/cursorscan/pkg/ports"
)

// FramesDir is the subdirectory of the base directory that receives annotated frames.
const FramesDir = "frames"

// Sink saves annotated frames as PNG files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	scale    float64
}

// New creates a new FileSink. A scale of 0 or 1 keeps frames at their decoded size.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, scale float64) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		scale:    scale,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame draws the trail on img and writes it to frames/frame-NNNNN.png.
func (s *Sink) SaveFrame(index int, img image.Image, trail []image.Point) error {
	dir := filepath.Join(s.baseDir, FramesDir)
	exists, err := s.fs.Exists(dir)
	if err != nil {
		return fmt.Errorf("check %s: %w", dir, err)
	}
	if !exists {
		if err := s.fs.MkdirAll(dir); err != nil {
			return err
		}
	}

	annotated := s.renderer.Annotate(img, trail)
	if s.scale > 0 && s.scale != 1 {
		annotated = s.renderer.Scale(annotated, s.scale)
	}

	data, err := s.renderer.EncodePNG(annotated)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("frame-%05d.png", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
