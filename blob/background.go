package blob

import (
	"image"

	"github.com/pkg/errors"
)

// DifferenceMethod tells how a pixel is compared with the background
type DifferenceMethod uint8

const (
	// DifferenceAbsolute uses |bg - value|
	DifferenceAbsolute DifferenceMethod = iota
	// DifferenceSign uses max(0, bg - value): only pixels darker than the background count
	DifferenceSign
	// DifferenceNone uses the value itself
	DifferenceNone
	numMethods
)

func (method DifferenceMethod) String() string {
	switch method {
	case DifferenceAbsolute:
		return "absolute"
	case DifferenceSign:
		return "sign"
	}
	return "none"
}

// Diff returns the difference of value to the background reference bg
func Diff(method DifferenceMethod, bg, value int) int {
	switch method {
	case DifferenceAbsolute:
		return absoluteDiff{}.diff(bg, value)
	case DifferenceSign:
		return signDiff{}.diff(bg, value)
	}
	return value
}

// Background is the reference a blob's pixels are compared against
type Background interface {
	// Bounds of the reference image
	Bounds() image.Rectangle
	// Color returns grey reference value at (x, y), 0 outside Bounds
	Color(x, y int) int
	Method() DifferenceMethod
	// IsValueDifferent reports whether an already computed difference passes threshold at (x, y)
	IsValueDifferent(x, y, value int, threshold int32) bool
}

// ImageBackground is a Background backed by a grey image with an optional
// per-pixel threshold factor grid
type ImageBackground struct {
	img    *image.Gray
	method DifferenceMethod
	grid   []float32
}

// NewImageBackground wraps img. grid is nil or holds one factor per pixel of img (row major)
func NewImageBackground(img *image.Gray, method DifferenceMethod, grid []float32) (*ImageBackground, error) {
	if img == nil {
		return nil, errors.New("Can't create background without image")
	}
	size := img.Rect.Dx() * img.Rect.Dy()
	if grid != nil && len(grid) != size {
		return nil, errors.Errorf("Can't use threshold grid of %d values for %d pixels", len(grid), size)
	}
	return &ImageBackground{
		img:    img,
		method: method,
		grid:   grid,
	}, nil
}

func (bg *ImageBackground) Bounds() image.Rectangle {
	return bg.img.Rect
}

func (bg *ImageBackground) Color(x, y int) int {
	if !image.Pt(x, y).In(bg.img.Rect) {
		return 0
	}
	return int(bg.img.Pix[bg.img.PixOffset(x, y)])
}

func (bg *ImageBackground) Method() DifferenceMethod {
	return bg.method
}

func (bg *ImageBackground) IsValueDifferent(x, y, value int, threshold int32) bool {
	factor := float32(1)
	if bg.grid != nil && image.Pt(x, y).In(bg.img.Rect) {
		r := bg.img.Rect
		factor = bg.grid[(y-r.Min.Y)*r.Dx()+(x-r.Min.X)]
	}
	return float32(value) >= factor*float32(threshold)
}
