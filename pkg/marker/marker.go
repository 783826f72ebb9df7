// Package marker locates the on-screen cursor glyph in raw RGBA frames.
//
// The glyph is recognised by four local tests around a candidate pixel:
// a bright core, a dark pixel to its right, a bright column running down from
// it and a dark border along its left side. The thresholds and geometry are
// tuned for one glyph at one rendering scale.
package marker

import "image"

const (
	// BrightThreshold is the per-channel floor for core and column pixels.
	BrightThreshold = 210

	// DarkThreshold is the per-channel ceiling for border pixels.
	DarkThreshold = 90

	// ColumnHeight is the number of rows, candidate included, the glyph spans.
	ColumnHeight = 14

	// ScanMarginRows is the number of trailing rows never used as a candidate row.
	ScanMarginRows = 20

	bytesPerPixel = 4
)

// MinRows is the smallest frame height that can contain a match.
const MinRows = ColumnHeight + ScanMarginRows

// Find scans pix in row-major order and returns the first pixel that matches
// the glyph, in pixel units. width is the frame width in pixels.
func Find(pix []byte, width int) (image.Point, bool) {
	if width <= 0 {
		return image.Point{}, false
	}
	stride := width * bytesPerPixel
	if len(pix) < MinRows*stride {
		return image.Point{}, false
	}

	limit := len(pix) - ScanMarginRows*stride
	for i := 0; i < limit; i += bytesPerPixel {
		if !atLeast(pix, i, BrightThreshold) {
			continue
		}
		if !darkRight(pix, i) {
			continue
		}
		if !brightColumn(pix, i, stride) {
			continue
		}
		if !darkLeftBorder(pix, i, stride) {
			continue
		}

		x := i % stride
		return image.Pt(x/bytesPerPixel, i/stride), true
	}
	return image.Point{}, false
}

// atLeast reports whether the three color channels at i are all >= limit.
func atLeast(pix []byte, i int, limit byte) bool {
	if i < 0 || i+2 >= len(pix) {
		return false
	}
	return pix[i] >= limit && pix[i+1] >= limit && pix[i+2] >= limit
}

// above reports whether the three color channels at i are all > limit.
func above(pix []byte, i int, limit byte) bool {
	if i < 0 || i+2 >= len(pix) {
		return false
	}
	return pix[i] > limit && pix[i+1] > limit && pix[i+2] > limit
}

// below reports whether the three color channels at i are all < limit.
func below(pix []byte, i int, limit byte) bool {
	if i < 0 || i+2 >= len(pix) {
		return false
	}
	return pix[i] < limit && pix[i+1] < limit && pix[i+2] < limit
}

// darkRight rejects candidates inside a solid bright area.
func darkRight(pix []byte, i int) bool {
	return below(pix, i+bytesPerPixel, DarkThreshold)
}

// brightColumn checks the ColumnHeight-1 rows under the candidate.
func brightColumn(pix []byte, i, stride int) bool {
	for row := 1; row < ColumnHeight; row++ {
		if !above(pix, i+row*stride, BrightThreshold) {
			return false
		}
	}
	return true
}

// darkLeftBorder checks the pixel left of the candidate on every glyph row.
func darkLeftBorder(pix []byte, i, stride int) bool {
	for row := 0; row < ColumnHeight; row++ {
		base := i + row*stride
		if base < bytesPerPixel {
			return false
		}
		if !below(pix, base-bytesPerPixel, DarkThreshold) {
			return false
		}
	}
	return true
}
