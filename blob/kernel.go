package blob

import "image"

// pixelInput decodes one stored pixel of an encoding
type pixelInput interface {
	channels() int
	decode(px []byte) (grey int, rgb [3]uint8)
}

type grayInput struct{}

func (grayInput) channels() int { return 1 }
func (grayInput) decode(px []byte) (int, [3]uint8) {
	return int(px[0]), [3]uint8{px[0], px[0], px[0]}
}

type rgbInput struct{}

func (rgbInput) channels() int { return 3 }
func (rgbInput) decode(px []byte) (int, [3]uint8) {
	return (int(px[0]) + int(px[1]) + int(px[2])) / 3, [3]uint8{px[0], px[1], px[2]}
}

// r3g3b2Input unpacks 2 bits of the first channel and 3 bits of each other channel
type r3g3b2Input struct{}

func (r3g3b2Input) channels() int { return 1 }
func (r3g3b2Input) decode(px []byte) (int, [3]uint8) {
	rgb := decodeR3G3B2(px[0])
	return (int(rgb[0]) + int(rgb[1]) + int(rgb[2])) / 3, rgb
}

// binaryInput has no stored bytes; every covered pixel is fully on
type binaryInput struct{}

func (binaryInput) channels() int { return 0 }
func (binaryInput) decode([]byte) (int, [3]uint8) {
	return 255, [3]uint8{255, 255, 255}
}

func decodeR3G3B2(v uint8) [3]uint8 {
	return [3]uint8{
		(v >> 6 & 0x3) * 64,
		(v >> 3 & 0x7) * 32,
		(v & 0x7) * 32,
	}
}

// EncodeR3G3B2 packs a colour into one byte: 2 bits for c0, 3 for c1, 3 for c2
func EncodeR3G3B2(c [3]uint8) uint8 {
	return (c[0]/64)<<6 | (c[1]/32)<<3 | c[2]/32
}

type differ interface {
	diff(bg, value int) int
}

type absoluteDiff struct{}

func (absoluteDiff) diff(bg, value int) int {
	d := bg - value
	if d < 0 {
		return -d
	}
	return d
}

type signDiff struct{}

func (signDiff) diff(bg, value int) int {
	d := bg - value
	if d < 0 {
		return 0
	}
	return d
}

type noDiff struct{}

func (noDiff) diff(_, value int) int {
	return value
}

// pixelSample is what the kernel knows about one covered pixel
type pixelSample struct {
	X, Y int
	// Px aliases the stored bytes of the pixel (nil for binary blobs)
	Px   []byte
	Grey int
	RGB  [3]uint8
	// Ref is the background reference, 0 without background
	Ref int
	// Diff is the difference to Ref (or Grey without background)
	Diff int
	// Pass is the threshold test result
	Pass bool
}

// pixelSink consumes a sample. dst is the target pixel or nil when the call has no image
type pixelSink func(dst []byte, s *pixelSample)

type kernelCall struct {
	lines     []HorizontalLine
	pixels    []byte
	bg        Background
	threshold int32
	// keepFailing hands pixels failing the threshold to the sink as well
	keepFailing bool
	img         *Image
	sink        pixelSink
}

// kernel walks every covered pixel once. It is instantiated per input encoding and difference method
func kernel[I pixelInput, D differ](c *kernelCall) {
	var in I
	var d D
	step := in.channels()
	offset := 0
	var s pixelSample
	for _, line := range c.lines {
		s.Y = int(line.Y)
		for x := int(line.X0); x <= int(line.X1); x++ {
			s.X = x
			if step > 0 {
				s.Px = c.pixels[offset : offset+step : offset+step]
				offset += step
			}
			s.Grey, s.RGB = in.decode(s.Px)
			s.Diff = s.Grey
			if c.bg != nil {
				s.Ref = c.bg.Color(x, s.Y)
				s.Diff = d.diff(s.Ref, s.Grey)
				s.Pass = c.threshold == 0 || c.bg.IsValueDifferent(x, s.Y, s.Diff, c.threshold)
			} else {
				s.Pass = c.threshold == 0 || s.Diff >= int(c.threshold)
			}
			if !s.Pass && !c.keepFailing {
				continue
			}
			var dst []byte
			if c.img != nil {
				if !image.Pt(x, s.Y).In(c.img.Rect) {
					continue
				}
				i := c.img.PixOffset(x, s.Y)
				dst = c.img.Pix[i : i+c.img.Channels : i+c.img.Channels]
			}
			c.sink(dst, &s)
		}
	}
}

var kernels = [numEncodings][numMethods]func(*kernelCall){
	EncodingGray: {
		DifferenceAbsolute: kernel[grayInput, absoluteDiff],
		DifferenceSign:     kernel[grayInput, signDiff],
		DifferenceNone:     kernel[grayInput, noDiff],
	},
	EncodingRGB: {
		DifferenceAbsolute: kernel[rgbInput, absoluteDiff],
		DifferenceSign:     kernel[rgbInput, signDiff],
		DifferenceNone:     kernel[rgbInput, noDiff],
	},
	EncodingR3G3B2: {
		DifferenceAbsolute: kernel[r3g3b2Input, absoluteDiff],
		DifferenceSign:     kernel[r3g3b2Input, signDiff],
		DifferenceNone:     kernel[r3g3b2Input, noDiff],
	},
	EncodingBinary: {
		DifferenceAbsolute: kernel[binaryInput, absoluteDiff],
		DifferenceSign:     kernel[binaryInput, signDiff],
		DifferenceNone:     kernel[binaryInput, noDiff],
	},
}

// walkPixels dispatches c to the kernel matching the blob's encoding and the background's method
func (blob *Blob) walkPixels(c *kernelCall) error {
	encoding := blob.Encoding()
	if encoding != EncodingBinary && blob.pixels == nil {
		return ErrPixelsMissing
	}
	blob.walkEncoded(c, encoding)
	return nil
}

func (blob *Blob) walkEncoded(c *kernelCall, encoding Encoding) {
	method := DifferenceNone
	if c.bg != nil {
		method = c.bg.Method()
	}
	c.lines = blob.lines
	c.pixels = blob.pixels
	kernels[encoding][method](c)
}
