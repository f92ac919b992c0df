package blob

import "strings"

// Flag is a bit position inside Flags
type Flag uint8

const (
	FlagSplit                Flag = 1
	FlagTag                  Flag = 2
	FlagInstanceSegmentation Flag = 4
	FlagRGB                  Flag = 5
	FlagR3G3B2               Flag = 6
	FlagBinary               Flag = 7
)

const encodingMask Flags = 1<<FlagRGB | 1<<FlagR3G3B2 | 1<<FlagBinary | 1<<FlagTag | 1<<FlagInstanceSegmentation

// Flags is the bit set a blob carries about its pixel encoding and split state
type Flags uint8

// FlagsForChannels returns encoding flags matching a pixel channel count (0 = binary, 3 = rgb)
func FlagsForChannels(channels int) Flags {
	var f Flags
	switch channels {
	case 0:
		f.Set(FlagBinary, true)
	case 3:
		f.Set(FlagRGB, true)
	}
	return f
}

// Has reports whether flag is set
func (f Flags) Has(flag Flag) bool {
	return f&(1<<flag) != 0
}

// Set sets or clears flag
func (f *Flags) Set(flag Flag, v bool) {
	if v {
		*f |= 1 << flag
	} else {
		*f &^= 1 << flag
	}
}

// EncodingFlags returns the flags describing pixel encoding only (split state removed)
func (f Flags) EncodingFlags() Flags {
	return f & encodingMask
}

// Encoding returns how stored pixels have to be decoded
func (f Flags) Encoding() Encoding {
	switch {
	case f.Has(FlagBinary):
		return EncodingBinary
	case f.Has(FlagRGB):
		return EncodingRGB
	case f.Has(FlagR3G3B2):
		return EncodingR3G3B2
	}
	return EncodingGray
}

func (f Flags) String() string {
	names := make([]string, 0, 6)
	for _, it := range []struct {
		flag Flag
		name string
	}{
		{FlagSplit, "split"},
		{FlagTag, "tag"},
		{FlagInstanceSegmentation, "instance"},
		{FlagRGB, "rgb"},
		{FlagR3G3B2, "r3g3b2"},
		{FlagBinary, "binary"},
	} {
		if f.Has(it.flag) {
			names = append(names, it.name)
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Encoding is the channel convention of stored pixel data
type Encoding uint8

const (
	EncodingGray Encoding = iota
	EncodingRGB
	EncodingR3G3B2
	EncodingBinary
	numEncodings
)

// Channels returns bytes stored per pixel
func (e Encoding) Channels() int {
	switch e {
	case EncodingRGB:
		return 3
	case EncodingBinary:
		return 0
	}
	return 1
}

func (e Encoding) String() string {
	switch e {
	case EncodingRGB:
		return "rgb"
	case EncodingR3G3B2:
		return "r3g3b2"
	case EncodingBinary:
		return "binary"
	}
	return "gray"
}
