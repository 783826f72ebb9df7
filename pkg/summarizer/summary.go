// Package summarizer provides report generation for scan results.
package summarizer

import (
	"image"
	"time"

	"github.com/user/cursorscan/pkg/controller"
)

// Summary contains the data collected during one scan.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Video information
	Video VideoInfo

	// Detection results
	Detection DetectionInfo

	// Scan settings
	Settings Settings
}

// VideoInfo describes the scanned file.
type VideoInfo struct {
	SessionID string
	Path      string
	Duration  float64 // seconds
	Width     int
	Height    int
}

// DetectionInfo aggregates marker results. Individual positions are not kept.
type DetectionInfo struct {
	Frames      int
	Markers     int
	ScannedTime float64 // seconds, at the nominal 60 fps

	// Bounds is the smallest rectangle containing every marker, empty when none was found.
	Bounds image.Rectangle
}

// Rate returns the share of frames with a marker, between 0 and 1.
func (d DetectionInfo) Rate() float64 {
	if d.Frames == 0 {
		return 0
	}
	return float64(d.Markers) / float64(d.Frames)
}

// Settings contains the scan configuration.
type Settings struct {
	Mode        string
	Speed       float64
	IntervalMs  int
	StartOffset float64
	MaxFrames   int
	Prober      string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithScan fills video and detection information from a controller summary.
func (b *Builder) WithScan(s controller.Summary) *Builder {
	b.summary.Video = VideoInfo{
		SessionID: s.SessionID,
		Path:      s.Path,
		Duration:  s.Duration,
		Width:     s.Width,
		Height:    s.Height,
	}
	b.summary.Detection = DetectionInfo{
		Frames:      s.Frames,
		Markers:     s.Markers,
		ScannedTime: s.CurrentTime,
		Bounds:      bounds(s.Positions),
	}
	return b
}

// WithSettings sets scan settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// bounds returns the rectangle covering every point, inclusive of the last pixel.
func bounds(points []image.Point) image.Rectangle {
	var r image.Rectangle
	for i, p := range points {
		cell := image.Rect(p.X, p.Y, p.X+1, p.Y+1)
		if i == 0 {
			r = cell
			continue
		}
		r = r.Union(cell)
	}
	return r
}
