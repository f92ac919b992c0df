package labeling

import (
	"image"

	"github.com/LdDl/pvblob/blob"
	"github.com/pkg/errors"
)

// RunImage labels the non-zero pixels of img. Pixel values are kept as grey pixels
func RunImage(cache *ListCache, img *image.Gray) ([]Pair, error) {
	r := img.Rect
	if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > 1<<16 || r.Max.Y > 1<<16 {
		return nil, errors.Wrapf(blob.ErrCoordinateRange, "Can't label image with bounds %v", r)
	}
	lines := make([]blob.HorizontalLine, 0, r.Dy())
	pixels := make([]byte, 0, len(img.Pix)/4)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Min.X, y)+r.Dx()]
		start := -1
		for i, v := range row {
			switch {
			case v != 0 && start < 0:
				start = i
			case v == 0 && start >= 0:
				lines = append(lines, blob.NewHorizontalLine(uint16(y), uint16(r.Min.X+start), uint16(r.Min.X+i-1)))
				pixels = append(pixels, row[start:i]...)
				start = -1
			}
		}
		if start >= 0 {
			lines = append(lines, blob.NewHorizontalLine(uint16(y), uint16(r.Min.X+start), uint16(r.Max.X-1)))
			pixels = append(pixels, row[start:]...)
		}
	}
	return Run(cache, lines, pixels, 1), nil
}
