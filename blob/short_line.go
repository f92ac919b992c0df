package blob

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ShortHorizontalLine is the packed transport form of a HorizontalLine:
// bits 0-15 hold x0, bits 16-30 hold x1 and bit 31 is set when the next element
// starts row y+1. The row itself is reconstructed from an external start y.
type ShortHorizontalLine uint32

const (
	shortX1Mask  = 0x7FFF
	shortEOLBit  = 1 << 31
	maxShortX    = 1 << 15
	uncompressBy = 8
)

func NewShortHorizontalLine(x0, x1 uint16, eol bool) ShortHorizontalLine {
	s := ShortHorizontalLine(x0) | ShortHorizontalLine(x1&shortX1Mask)<<16
	if eol {
		s |= shortEOLBit
	}
	return s
}

// X0 returns the first covered column
func (s ShortHorizontalLine) X0() uint16 {
	return uint16(s)
}

// X1 returns the last covered column
func (s ShortHorizontalLine) X1() uint16 {
	return uint16(s>>16) & shortX1Mask
}

// EOL reports whether the next element starts a new row
func (s ShortHorizontalLine) EOL() bool {
	return s&shortEOLBit != 0
}

// Uncompress expands the packed line to a full line on row y
func (s ShortHorizontalLine) Uncompress(y uint16) HorizontalLine {
	return HorizontalLine{Y: y, X0: s.X0(), X1: s.X1()}
}

// CompressLines packs lines sorted by (y, x0) against the first line's row.
// Rows must be consecutive and x must fit into 15 bits.
func CompressLines(lines []HorizontalLine) (uint16, []ShortHorizontalLine, error) {
	if len(lines) == 0 {
		return 0, nil, nil
	}
	startY := lines[0].Y
	out := make([]ShortHorizontalLine, len(lines))
	for i, line := range lines {
		if line.X0 >= maxShortX || line.X1 >= maxShortX {
			return 0, nil, errors.Wrapf(ErrCoordinateRange, "Can't compress line %s", line)
		}
		eol := false
		if i+1 < len(lines) {
			next := lines[i+1].Y
			if next != line.Y {
				if next != line.Y+1 {
					return 0, nil, errors.Wrapf(ErrRowGap, "Can't compress line %s followed by row %d", line, next)
				}
				eol = true
			}
		}
		out[i] = NewShortHorizontalLine(line.X0, line.X1, eol)
	}
	return startY, out, nil
}

// UncompressLines expands packed lines starting at startY
func UncompressLines(startY uint16, lines []ShortHorizontalLine) []HorizontalLine {
	out := make([]HorizontalLine, len(lines))
	UncompressBatched(out, startY, lines)
	return out
}

// UncompressScalar writes len(src) lines into dst one element at a time
func UncompressScalar(dst []HorizontalLine, startY uint16, src []ShortHorizontalLine) {
	dst = dst[:len(src)]
	y := startY
	for i, s := range src {
		dst[i] = s.Uncompress(y)
		if s.EOL() {
			y++
		}
	}
}

// UncompressBatched produces the same output as UncompressScalar, eight elements per step.
// The eol bits of a batch are gathered into one byte and every row offset is a popcount
// of the bits below it, so the inner loop carries no dependency on the previous element.
func UncompressBatched(dst []HorizontalLine, startY uint16, src []ShortHorizontalLine) {
	dst = dst[:len(src)]
	y := startY
	i := 0
	for ; i+uncompressBy <= len(src); i += uncompressBy {
		batch := src[i : i+uncompressBy : i+uncompressBy]
		var mask uint8
		for k, s := range batch {
			mask |= uint8(s>>31) << k
		}
		out := dst[i : i+uncompressBy : i+uncompressBy]
		for k, s := range batch {
			below := mask & (uint8(1)<<k - 1)
			out[k] = HorizontalLine{
				Y:  y + uint16(bits.OnesCount8(below)),
				X0: uint16(s),
				X1: uint16(s>>16) & shortX1Mask,
			}
		}
		y += uint16(bits.OnesCount8(mask))
	}
	UncompressScalar(dst[i:], y, src[i:])
}
