package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/user/cursorscan/pkg/ports"
)

// These patterns match the stderr banner of the ffmpeg builds we ship against.
// Requiring 3+ digits on both sides of the "x" skips codec tags like 0x31637661.
var (
	durationPattern   = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2}\.\d+)`)
	resolutionPattern = regexp.MustCompile(`Video:.* (\d{3,})x(\d{3,})`)
)

// ParseDiagnostics extracts duration and resolution from ffmpeg's stderr text.
// A missing duration yields 0; a missing video stream line is ErrProbeFailed.
func ParseDiagnostics(text string) (ports.Metadata, error) {
	var md ports.Metadata

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		mins, _ := strconv.ParseFloat(m[2], 64)
		s, _ := strconv.ParseFloat(m[3], 64)
		md.Duration = h*3600 + mins*60 + s
	}

	if m := resolutionPattern.FindStringSubmatch(text); m != nil {
		md.Width, _ = strconv.Atoi(m[1])
		md.Height, _ = strconv.Atoi(m[2])
	}

	if md.Width <= 0 || md.Height <= 0 {
		return ports.Metadata{}, ErrProbeFailed
	}
	return md, nil
}

// Prober reads metadata from the diagnostics ffmpeg prints for "-i <path>".
type Prober struct {
	ffmpegPath string
	logger     ports.Logger
}

// NewProber creates a prober that runs the binary at ffmpegPath.
func NewProber(ffmpegPath string, logger ports.Logger) *Prober {
	return &Prober{
		ffmpegPath: ffmpegPath,
		logger:     logger.WithComponent("prober"),
	}
}

// Probe runs ffmpeg once with no output file and scrapes its stderr.
// ffmpeg exits non-zero in this mode, so the exit status is not inspected.
func (p *Prober) Probe(ctx context.Context, path string) (ports.Metadata, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.ffmpegPath, "-i", path)
	cmd.Stderr = &stderr

	p.logger.Debug("Probing %s", path)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return ports.Metadata{}, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
		}
	}

	md, err := ParseDiagnostics(stderr.String())
	if err != nil {
		return ports.Metadata{}, fmt.Errorf("probe %s: %w", path, err)
	}

	p.logger.Debug("Probed %s: %.2fs, %dx%d", path, md.Duration, md.Width, md.Height)
	return md, nil
}

// Ensure Prober implements ports.MetadataProber
var _ ports.MetadataProber = (*Prober)(nil)
