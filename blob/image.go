package blob

import (
	"image"
	"image/color"
)

// Image is an interleaved 8-bit image with 1 (grey), 2 (grey+alpha), 3 (rgb) or 4 (rgba) channels
type Image struct {
	Pix      []uint8
	Stride   int
	Channels int
	Rect     image.Rectangle
}

func NewImage(rect image.Rectangle, channels int) *Image {
	return &Image{
		Pix:      make([]uint8, rect.Dx()*rect.Dy()*channels),
		Stride:   rect.Dx() * channels,
		Channels: channels,
		Rect:     rect,
	}
}

// PixOffset returns the index of the first channel of pixel (x, y)
func (m *Image) PixOffset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x-m.Rect.Min.X)*m.Channels
}

// Pixel returns channels of pixel (x, y), nil outside of the image
func (m *Image) Pixel(x, y int) []uint8 {
	if !image.Pt(x, y).In(m.Rect) {
		return nil
	}
	i := m.PixOffset(x, y)
	return m.Pix[i : i+m.Channels : i+m.Channels]
}

func (m *Image) Bounds() image.Rectangle {
	return m.Rect
}

func (m *Image) ColorModel() color.Model {
	switch m.Channels {
	case 1:
		return color.GrayModel
	case 3:
		return color.RGBAModel
	}
	return color.NRGBAModel
}

func (m *Image) At(x, y int) color.Color {
	px := m.Pixel(x, y)
	if px == nil {
		return color.Transparent
	}
	switch m.Channels {
	case 1:
		return color.Gray{Y: px[0]}
	case 2:
		return color.NRGBA{R: px[0], G: px[0], B: px[0], A: px[1]}
	case 3:
		return color.RGBA{R: px[0], G: px[1], B: px[2], A: 255}
	}
	return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
}
