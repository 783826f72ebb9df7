// Package mp4probe reads duration and frame size from MP4 container headers
// without starting an external process.
package mp4probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/cursorscan/pkg/ports"
)

var (
	// ErrNoVideoTrack is returned when the file has no track with a "vide" handler.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")

	// ErrNoDimensions is returned when the video track carries no usable frame size.
	ErrNoDimensions = errors.New("mp4probe: video track has no dimensions")
)

// Prober implements ports.MetadataProber by parsing the moov box.
type Prober struct {
	logger ports.Logger
}

// New creates a new MP4 prober.
func New(logger ports.Logger) *Prober {
	return &Prober{logger: logger.WithComponent("mp4probe")}
}

// Probe opens path and reads its metadata.
func (p *Prober) Probe(ctx context.Context, path string) (ports.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return ports.Metadata{}, err
	}

	p.logger.Debug("Probing %s", path)

	f, err := os.Open(path)
	if err != nil {
		return ports.Metadata{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	meta, err := ProbeReader(f)
	if err != nil {
		return ports.Metadata{}, fmt.Errorf("probe %s: %w", path, err)
	}

	p.logger.Debug("Probed %s: %.2fs, %dx%d", path, meta.Duration, meta.Width, meta.Height)
	return meta, nil
}

// ProbeReader reads metadata from an MP4 stream. Media data is skipped, not read.
func ProbeReader(reader io.ReadSeeker) (ports.Metadata, error) {
	mp4File, err := mp4.DecodeFile(reader, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return ports.Metadata{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return ports.Metadata{}, ErrNoVideoTrack
	}

	return metadataFromMoov(moov)
}

func metadataFromMoov(moov *mp4.MoovBox) (ports.Metadata, error) {
	trak := videoTrack(moov)
	if trak == nil {
		return ports.Metadata{}, ErrNoVideoTrack
	}

	width, height := trackDimensions(trak)
	if width <= 0 || height <= 0 {
		return ports.Metadata{}, ErrNoDimensions
	}

	return ports.Metadata{
		Duration: trackDuration(moov, trak),
		Width:    width,
		Height:   height,
	}, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// trackDimensions prefers the sample entry size and falls back to the 16.16 track header.
func trackDimensions(trak *mp4.TrakBox) (int, int) {
	if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			if entry, ok := child.(*mp4.VisualSampleEntryBox); ok && entry.Width > 0 && entry.Height > 0 {
				return int(entry.Width), int(entry.Height)
			}
		}
	}

	if trak.Tkhd != nil {
		return int(uint32(trak.Tkhd.Width) >> 16), int(uint32(trak.Tkhd.Height) >> 16)
	}
	return 0, 0
}

// trackDuration returns seconds from the media header, then the movie header, or 0.
func trackDuration(moov *mp4.MoovBox, trak *mp4.TrakBox) float64 {
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 && mdhd.Duration > 0 {
		return float64(mdhd.Duration) / float64(mdhd.Timescale)
	}
	if mvhd := moov.Mvhd; mvhd != nil && mvhd.Timescale > 0 && mvhd.Duration > 0 {
		return float64(mvhd.Duration) / float64(mvhd.Timescale)
	}
	return 0
}

// Ensure Prober implements ports.MetadataProber
var _ ports.MetadataProber = (*Prober)(nil)
