package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Scan Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Video\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| File | %s |\n", s.Video.Path)
	if s.Video.SessionID != "" {
		fmt.Fprintf(&b, "| Session | %s |\n", s.Video.SessionID)
	}
	fmt.Fprintf(&b, "| Duration | %.2f s |\n", s.Video.Duration)
	fmt.Fprintf(&b, "| Frame Size | %dx%d |\n\n", s.Video.Width, s.Video.Height)

	b.WriteString("## Detection\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| Frames | %d |\n", s.Detection.Frames)
	fmt.Fprintf(&b, "| Markers | %d |\n", s.Detection.Markers)
	fmt.Fprintf(&b, "| Detection Rate | %.1f%% |\n", s.Detection.Rate()*100)
	fmt.Fprintf(&b, "| Scanned Time | %.2f s |\n", s.Detection.ScannedTime)
	if s.Detection.Markers > 0 {
		r := s.Detection.Bounds
		fmt.Fprintf(&b, "| Marker Area | (%d, %d) - (%d, %d) |\n", r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
	} else {
		b.WriteString("| Marker Area | - |\n")
	}
	b.WriteString("\n")

	b.WriteString("## Settings\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| Mode | %s |\n", s.Settings.Mode)
	if s.Settings.Mode == "magic" {
		fmt.Fprintf(&b, "| Interval | %d ms |\n", s.Settings.IntervalMs)
	} else {
		fmt.Fprintf(&b, "| Speed | %.2fx |\n", s.Settings.Speed)
	}
	if s.Settings.StartOffset > 0 {
		fmt.Fprintf(&b, "| Start Offset | %.2f s |\n", s.Settings.StartOffset)
	}
	if s.Settings.MaxFrames > 0 {
		fmt.Fprintf(&b, "| Max Frames | %d |\n", s.Settings.MaxFrames)
	}
	fmt.Fprintf(&b, "| Prober | %s |\n", s.Settings.Prober)

	return b.String()
}
