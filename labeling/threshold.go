package labeling

import (
	"math"

	"github.com/LdDl/pvblob/blob"
	"github.com/pkg/errors"
)

// SizeRange filters components by pixel count. A negative End keeps every component
// with more than one pixel, otherwise Start < count < End is required
type SizeRange struct {
	Start int
	End   int
}

// AnySize keeps every component of at least two pixels
var AnySize = SizeRange{Start: 0, End: -1}

// Contains reports whether a component of n pixels passes
func (r SizeRange) Contains(n int) bool {
	if r.End < 0 {
		return n > 1
	}
	return n > r.Start && n < r.End
}

// ThresholdBlob thresholds the pixels of b against bg (against raw values when bg is nil)
// and relabels what is left. Encoding flags and prediction of b are copied to every
// result. A binary blob has nothing to threshold and comes back as a single copy.
func ThresholdBlob(cache *ListCache, b *blob.Blob, threshold int32, bg blob.Background, sizes SizeRange, options ...blob.Option) ([]*blob.Blob, error) {
	if b.IsBinary() {
		return []*blob.Blob{b.Clone()}, nil
	}
	lines, pixels, err := b.ThresholdedLines(threshold, bg)
	if err != nil {
		return nil, err
	}
	pairs := Run(cache, lines, pixels, b.Channels())
	options = append([]blob.Option{blob.WithOptions(b.Options())}, options...)
	out := make([]*blob.Blob, 0, len(pairs))
	for _, pair := range pairs {
		if !sizes.Contains(int(countLinePixels(pair.Lines))) {
			continue
		}
		pair.Flags = b.GetFlags().EncodingFlags()
		pair.Prediction = b.GetPrediction().Clone()
		child, err := pair.Blob(options...)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't wrap thresholded part of %s", b.GetBlobID())
		}
		out = append(out, child)
	}
	return out, nil
}

// ThresholdBiggestBlob is ThresholdBlob keeping only the component with the most pixels.
// An empty blob with the flags and prediction of b is returned when nothing passes.
func ThresholdBiggestBlob(cache *ListCache, b *blob.Blob, threshold int32, bg blob.Background, options ...blob.Option) (*blob.Blob, error) {
	parts, err := ThresholdBlob(cache, b, threshold, bg, SizeRange{Start: 0, End: math.MaxInt}, options...)
	if err != nil {
		return nil, err
	}
	var biggest *blob.Blob
	for _, part := range parts {
		if biggest == nil || part.GetNumPixels() > biggest.GetNumPixels() {
			biggest = part
		}
	}
	if biggest != nil {
		return biggest, nil
	}
	options = append([]blob.Option{blob.WithOptions(b.Options()), blob.WithPrediction(b.GetPrediction().Clone())}, options...)
	return blob.NewBlob(nil, nil, b.GetFlags().EncodingFlags(), options...)
}

func countLinePixels(lines []blob.HorizontalLine) uint64 {
	var n uint64
	for _, line := range lines {
		n += uint64(line.Width())
	}
	return n
}
