package blob

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// imageRect returns the pixel bounds of the blob padded and clipped to bg
func (blob *Blob) imageRect(padding int, bg Background) image.Rectangle {
	var limit image.Rectangle
	if bg != nil {
		limit = bg.Bounds()
	}
	return padRect(blob.GetBounds().ImageRect(), padding, limit)
}

func fillBackground(img *Image, bg Background) {
	if bg == nil {
		return
	}
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			v := uint8(bg.Color(x, y))
			px := img.Pix[img.PixOffset(x, y):]
			for c := 0; c < img.Channels; c++ {
				px[c] = v
			}
		}
	}
}

func (blob *Blob) materialize(name string, channels, padding int, c *kernelCall, fill Background) (image.Point, *Image, error) {
	rect := blob.imageRect(padding, c.bg)
	img := NewImage(rect, channels)
	fillBackground(img, fill)
	c.img = img
	if err := blob.walkPixels(c); err != nil {
		return image.Point{}, nil, errors.Wrapf(err, "Can't create %s image of %s", name, blob.blobID)
	}
	return rect.Min, img, nil
}

// GrayImage draws the grey value of every pixel over bg (or over zeros when bg is nil)
func (blob *Blob) GrayImage(bg Background, padding int) (image.Point, *Image, error) {
	return blob.materialize("gray", 1, padding, &kernelCall{
		sink: func(dst []byte, s *pixelSample) {
			dst[0] = uint8(s.Grey)
		},
	}, bg)
}

// ColorImage draws pixels as RGB over bg (or over zeros when bg is nil)
func (blob *Blob) ColorImage(bg Background, padding int) (image.Point, *Image, error) {
	return blob.materialize("color", 3, padding, &kernelCall{
		sink: func(dst []byte, s *pixelSample) {
			dst[0], dst[1], dst[2] = s.RGB[0], s.RGB[1], s.RGB[2]
		},
	}, bg)
}

// DifferenceImage writes the background difference of pixels passing threshold
func (blob *Blob) DifferenceImage(bg Background, threshold int32) (image.Point, *Image, error) {
	return blob.materialize("difference", 1, 1, &kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(dst []byte, s *pixelSample) {
			dst[0] = clampByte(s.Diff)
		},
	}, nil)
}

// ThresholdedImage writes the grey value of pixels passing threshold
func (blob *Blob) ThresholdedImage(bg Background, threshold int32) (image.Point, *Image, error) {
	return blob.materialize("thresholded", 1, 1, &kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(dst []byte, s *pixelSample) {
			dst[0] = uint8(s.Grey)
		},
	}, nil)
}

// BinaryImageOf writes 255 for pixels passing threshold
func (blob *Blob) BinaryImageOf(bg Background, threshold int32) (image.Point, *Image, error) {
	return blob.materialize("binary", 1, 1, &kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(dst []byte, _ *pixelSample) {
			dst[0] = 255
		},
	}, nil)
}

// BinaryImage writes 255 for every covered pixel. Stored pixels are not needed
func (blob *Blob) BinaryImage() (image.Point, *Image) {
	rect := blob.imageRect(1, nil)
	img := NewImage(rect, 1)
	blob.walkEncoded(&kernelCall{
		img: img,
		sink: func(dst []byte, _ *pixelSample) {
			dst[0] = 255
		},
	}, EncodingBinary)
	return rect.Min, img
}

// AlphaImage writes RGBA pixels: colour of the pixel and its background difference as alpha,
// stretched so that 60% of the largest difference is fully opaque
func (blob *Blob) AlphaImage(bg Background, threshold int32) (image.Point, *Image, error) {
	maxDiff := 0
	origin, img, err := blob.materialize("alpha", 4, 1, &kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(dst []byte, s *pixelSample) {
			dst[0], dst[1], dst[2] = s.RGB[0], s.RGB[1], s.RGB[2]
			dst[3] = clampByte(s.Diff)
			maxDiff = maxInt(maxDiff, s.Diff)
		},
	}, nil)
	if err != nil || maxDiff == 0 {
		return origin, img, err
	}
	scale := 255.0 / (float64(maxDiff) * 0.6)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = saturate(float64(img.Pix[i]) * scale)
	}
	return origin, img, nil
}

// LuminanceAlphaImage writes grey and an alpha rising quadratically with the difference
func (blob *Blob) LuminanceAlphaImage(bg Background, threshold int32, padding int) (image.Point, *Image, error) {
	return blob.materialize("luminance alpha", 2, padding, &kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(dst []byte, s *pixelSample) {
			dst[0] = uint8(s.Grey)
			dst[1] = saturate(diffAlpha(s.Diff) * 2)
		},
	}, nil)
}

// EqualizedLuminanceAlphaImage is LuminanceAlphaImage with grey stretched from [minValue/2, maxValue] to [0, 510]
func (blob *Blob) EqualizedLuminanceAlphaImage(bg Background, threshold int32, minValue, maxValue float64, padding int) (image.Point, *Image, error) {
	if maxValue <= minValue {
		return image.Point{}, nil, errors.Errorf("Can't equalize %s with range [%f, %f]", blob.blobID, minValue, maxValue)
	}
	factor := 1.0 / ((maxValue - minValue) * 0.5) * 255.0
	low := minValue * 0.5
	return blob.materialize("equalized luminance alpha", 2, padding, &kernelCall{
		bg:        bg,
		threshold: threshold,
		sink: func(dst []byte, s *pixelSample) {
			dst[0] = saturate((float64(s.Grey) - low) * factor)
			dst[1] = saturate(diffAlpha(s.Diff))
		},
	}, nil)
}

// diffAlpha maps a difference in [0, 255] to 255 - (1 - d/255)^2 * 255
func diffAlpha(diff int) float64 {
	v := 1 - float64(clampByte(diff))/255.0
	return 255 - math.Pow(v, 2)*255
}
