// Package blob holds run-length blobs: line model, packed transport form,
// cached geometry, moments, background recount and pixel materialization.
package blob

import (
	"fmt"
	"sort"
)

// HorizontalLine is a single run of contiguous pixels [X0, X1] on row Y
type HorizontalLine struct {
	Y  uint16
	X0 uint16
	X1 uint16
}

func NewHorizontalLine(y, x0, x1 uint16) HorizontalLine {
	return HorizontalLine{
		Y:  y,
		X0: x0,
		X1: x1,
	}
}

// Width returns number of pixels covered by the line
func (line HorizontalLine) Width() int {
	return int(line.X1) - int(line.X0) + 1
}

// Less orders lines by (y, x0)
func (line HorizontalLine) Less(other HorizontalLine) bool {
	if line.Y != other.Y {
		return line.Y < other.Y
	}
	return line.X0 < other.X0
}

// Overlaps reports whether both lines are on the same row and share or touch a column
func (line HorizontalLine) Overlaps(other HorizontalLine) bool {
	return line.Y == other.Y && int(line.X0) <= int(other.X1)+1 && int(other.X0) <= int(line.X1)+1
}

func (line HorizontalLine) String() string {
	return fmt.Sprintf("[y=%d, %d-%d]", line.Y, line.X0, line.X1)
}

// countPixels returns Σ(x1-x0+1)
func countPixels(lines []HorizontalLine) uint64 {
	var n uint64
	for _, line := range lines {
		n += uint64(line.Width())
	}
	return n
}

// linesIllegal reports whether lines are unsorted, inverted or touch another run of their row
func linesIllegal(lines []HorizontalLine) bool {
	for i := range lines {
		if lines[i].X0 > lines[i].X1 {
			return true
		}
		if i == 0 {
			continue
		}
		prev := lines[i-1]
		if lines[i].Less(prev) {
			return true
		}
		if prev.Y == lines[i].Y && int(lines[i].X0) <= int(prev.X1)+1 {
			return true
		}
	}
	return false
}

// RepairLines sorts lines by (y, x0), swaps inverted ends and fuses runs that overlap
// on the same row. Pixel runs (channels bytes per pixel) are kept aligned with
// their lines; on overlap the pixels of the earlier run win.
// The input slices are left untouched.
func RepairLines(lines []HorizontalLine, pixels []byte, channels int) ([]HorizontalLine, []byte) {
	if len(lines) == 0 {
		return lines, pixels
	}
	withPixels := pixels != nil && channels > 0

	type run struct {
		line   HorizontalLine
		offset int
	}
	runs := make([]run, len(lines))
	offset := 0
	for i, line := range lines {
		if line.X0 > line.X1 {
			line.X0, line.X1 = line.X1, line.X0
		}
		runs[i] = run{line: line, offset: offset}
		offset += line.Width() * channels
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].line.Less(runs[j].line)
	})

	outLines := make([]HorizontalLine, 0, len(lines))
	var outPixels []byte
	if withPixels {
		outPixels = make([]byte, 0, len(pixels))
	}
	for _, r := range runs {
		last := len(outLines) - 1
		if last >= 0 && outLines[last].Y == r.line.Y && int(r.line.X0) <= int(outLines[last].X1)+1 {
			if r.line.X1 <= outLines[last].X1 {
				continue
			}
			// append the part of r that sticks out to the right
			skip := int(outLines[last].X1) + 1 - int(r.line.X0)
			if skip < 0 {
				skip = 0
			}
			outLines[last].X1 = r.line.X1
			if withPixels {
				from := r.offset + skip*channels
				to := r.offset + r.line.Width()*channels
				outPixels = append(outPixels, pixels[from:to]...)
			}
			continue
		}
		outLines = append(outLines, r.line)
		if withPixels {
			outPixels = append(outPixels, pixels[r.offset:r.offset+r.line.Width()*channels]...)
		}
	}
	return outLines, outPixels
}
