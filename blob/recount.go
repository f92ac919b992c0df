package blob

import "github.com/pkg/errors"

// RawRecount counts pixels whose difference to bg passes threshold and caches the result.
// Threshold 0 counts every pixel without looking at bg. Threshold -1 returns the cached
// value of the last computation.
func (blob *Blob) RawRecount(threshold int32, bg Background) (float64, error) {
	if threshold == -1 {
		return blob.RawRecountCached(-1)
	}
	if blob.recountReady && blob.recountThreshold == threshold {
		return blob.recountValue, nil
	}
	value, err := blob.countAbove(threshold, bg)
	if err != nil {
		return 0, errors.Wrapf(err, "Can't recount %s at threshold %d", blob.blobID, threshold)
	}
	blob.ForceSetRecount(threshold, value)
	return value, nil
}

// RawRecountCached returns the cached count without computing anything.
// Threshold -1 accepts whatever threshold was used last.
func (blob *Blob) RawRecountCached(threshold int32) (float64, error) {
	if threshold == 0 {
		return float64(blob.GetNumPixels()), nil
	}
	if !blob.recountReady {
		return 0, errors.Wrapf(ErrRecountNotReady, "Can't read recount of %s", blob.blobID)
	}
	if threshold != -1 && threshold != blob.recountThreshold {
		return 0, errors.Wrapf(ErrRecountThreshold, "Can't read recount of %s at %d (cached %d)", blob.blobID, threshold, blob.recountThreshold)
	}
	return blob.recountValue, nil
}

// Recount is RawRecount converted to square centimeters by Options.CMPerPixel
func (blob *Blob) Recount(threshold int32, bg Background) (float64, error) {
	if blob.opts.CMPerPixel == 0 {
		return 0, errors.Wrapf(ErrZeroCalibration, "Can't recount %s", blob.blobID)
	}
	raw, err := blob.RawRecount(threshold, bg)
	if err != nil {
		return 0, err
	}
	return raw * blob.opts.CMPerPixel * blob.opts.CMPerPixel, nil
}

// ForceSetRecount stores value as the count for threshold
func (blob *Blob) ForceSetRecount(threshold int32, value float64) {
	blob.recountThreshold = threshold
	blob.recountValue = value
	blob.recountReady = true
}

// LastRecountThreshold returns the threshold of the cached count, -1 if there is none
func (blob *Blob) LastRecountThreshold() int32 {
	if !blob.recountReady {
		return -1
	}
	return blob.recountThreshold
}

func (blob *Blob) countAbove(threshold int32, bg Background) (float64, error) {
	if threshold == 0 {
		return float64(blob.GetNumPixels()), nil
	}
	if threshold < 0 {
		return 0, errors.Errorf("negative threshold %d", threshold)
	}
	var count uint64
	err := blob.walkPixels(&kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(_ []byte, _ *pixelSample) {
			count++
		},
	})
	return float64(count), err
}
