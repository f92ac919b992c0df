package blob

import (
	"image"

	"github.com/pkg/errors"
)

// ThresholdedLines returns the runs of pixels passing threshold against bg (or against
// the raw value when bg is nil) together with their pixel bytes.
// Binary blobs are returned as they are.
func (blob *Blob) ThresholdedLines(threshold int32, bg Background) ([]HorizontalLine, []byte, error) {
	if blob.IsBinary() {
		return append(GetLineBuffer(len(blob.lines)), blob.lines...), nil, nil
	}
	lines := GetLineBuffer(len(blob.lines))
	pixels := make([]byte, 0, len(blob.pixels))
	err := blob.walkPixels(&kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(_ []byte, s *pixelSample) {
			last := len(lines) - 1
			if last >= 0 && int(lines[last].Y) == s.Y && int(lines[last].X1)+1 == s.X {
				lines[last].X1 = uint16(s.X)
			} else {
				lines = append(lines, HorizontalLine{Y: uint16(s.Y), X0: uint16(s.X), X1: uint16(s.X)})
			}
			pixels = append(pixels, s.Px...)
		},
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Can't threshold %s", blob.blobID)
	}
	return lines, pixels, nil
}

// Threshold returns a new blob with only the pixels passing threshold. Runs are split
// at failing pixels, encoding flags and prediction are copied.
func (blob *Blob) Threshold(threshold int32, bg Background) (*Blob, error) {
	lines, pixels, err := blob.ThresholdedLines(threshold, bg)
	if err != nil {
		return nil, err
	}
	return NewBlob(lines, pixels, blob.flags.EncodingFlags(),
		WithOptions(*blob.opts),
		WithPrediction(blob.prediction.Clone()),
	)
}

// CalculatePixels gathers pixels under lines (moved by offset) from a frame image.
// Pixels outside of img are left zero.
func CalculatePixels(img *Image, lines []HorizontalLine, offset image.Point) []byte {
	channels := img.Channels
	out := make([]byte, int(countPixels(lines))*channels)
	i := 0
	for _, line := range lines {
		width := line.Width() * channels
		y := int(line.Y) + offset.Y
		x0 := int(line.X0) + offset.X
		x1 := int(line.X1) + offset.X
		if y >= img.Rect.Min.Y && y < img.Rect.Max.Y {
			from := maxInt(x0, img.Rect.Min.X)
			to := minInt(x1, img.Rect.Max.X-1)
			if from <= to {
				start := img.PixOffset(from, y)
				copy(out[i+(from-x0)*channels:], img.Pix[start:start+(to-from+1)*channels])
			}
		}
		i += width
	}
	return out
}

// TransferBackgrounds re-bases stored grey pixels from background from onto background to,
// whose frame is shifted by offset: v' = v - from(x, y) + to(x+dx, y+dy)
func (blob *Blob) TransferBackgrounds(from, to Background, offset image.Point) error {
	if blob.Encoding() != EncodingGray {
		return errors.Wrapf(ErrChannelMismatch, "Can't transfer backgrounds of %s encoded pixels", blob.Encoding())
	}
	err := blob.walkPixels(&kernelCall{
		bg:          from,
		keepFailing: true,
		sink: func(_ []byte, s *pixelSample) {
			s.Px[0] = clampByte(int(s.Px[0]) - s.Ref + to.Color(s.X+offset.X, s.Y+offset.Y))
		},
	})
	if err != nil {
		return errors.Wrapf(err, "Can't transfer backgrounds of %s", blob.blobID)
	}
	blob.recountReady = false
	return nil
}
