package blob

import "image"

// padRect grows rect by padding on every side and clips it to limit (if limit is not empty)
func padRect(rect image.Rectangle, padding int, limit image.Rectangle) image.Rectangle {
	rect = rect.Inset(-padding)
	if !limit.Empty() {
		rect = rect.Intersect(limit)
	}
	return rect
}

func saturate(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
