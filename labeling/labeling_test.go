package labeling

import (
	"image"
	"image/color"
	"sort"
	"testing"

	"github.com/LdDl/pvblob/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rasterize turns rectangles (min inclusive, max exclusive) into sorted lines
func rasterize(rects ...image.Rectangle) []blob.HorizontalLine {
	var lines []blob.HorizontalLine
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			lines = append(lines, blob.NewHorizontalLine(uint16(y), uint16(r.Min.X), uint16(r.Max.X-1)))
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Less(lines[j]) })
	return lines
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Lines[0].Less(pairs[j].Lines[0]) })
}

func pairBlob(t *testing.T, pair Pair) *blob.Blob {
	b, err := pair.Blob(blob.WithOptions(blob.Options{Logger: blob.NoopLogger{}}))
	require.NoError(t, err)
	return b
}

func TestDisjointRectangles(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 4, 3),
		image.Rect(6, 1, 9, 6),
		image.Rect(0, 5, 3, 8),
		image.Rect(10, 7, 20, 9),
	}
	pairs := Run(NewListCache(), rasterize(rects...), nil, 0)
	require.Len(t, pairs, len(rects))
	sortPairs(pairs)
	expected := append([]image.Rectangle(nil), rects...)
	sort.Slice(expected, func(i, j int) bool {
		if expected[i].Min.Y != expected[j].Min.Y {
			return expected[i].Min.Y < expected[j].Min.Y
		}
		return expected[i].Min.X < expected[j].Min.X
	})
	for i, pair := range pairs {
		b := pairBlob(t, pair)
		assert.Equal(t, blob.NewRectFrom(expected[i]), b.GetBounds())
		assert.Equal(t, uint64(expected[i].Dx()*expected[i].Dy()), b.GetNumPixels())
		assert.True(t, b.IsBinary())
	}
}

func TestDiagonalTouchMerges(t *testing.T) {
	touching := rasterize(image.Rect(0, 0, 3, 3), image.Rect(3, 3, 6, 6))
	pairs := Run(NewListCache(), touching, nil, 0)
	require.Len(t, pairs, 1)
	assert.Len(t, pairs[0].Lines, 6)

	apart := rasterize(image.Rect(0, 0, 3, 3), image.Rect(4, 3, 7, 6))
	pairs = Run(NewListCache(), apart, nil, 0)
	assert.Len(t, pairs, 2)

	below := rasterize(image.Rect(0, 0, 3, 3), image.Rect(3, 4, 6, 6))
	pairs = Run(NewListCache(), below, nil, 0)
	assert.Len(t, pairs, 2, "a skipped row separates components")
}

func TestUnionOfBranches(t *testing.T) {
	// two columns joined by a bar at the bottom: "U"
	lines := []blob.HorizontalLine{
		{Y: 0, X0: 0, X1: 1}, {Y: 0, X0: 5, X1: 6},
		{Y: 1, X0: 0, X1: 1}, {Y: 1, X0: 5, X1: 6},
		{Y: 2, X0: 0, X1: 6},
		{Y: 3, X0: 3, X1: 3},
	}
	pixels := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
		10, 11, 12, 13, 14, 15, 16,
		20,
	}
	pairs := Run(NewListCache(), lines, pixels, 1)
	require.Len(t, pairs, 1)
	assert.Equal(t, lines, pairs[0].Lines)
	assert.Equal(t, pixels, pairs[0].Pixels)
	assert.False(t, pairs[0].Flags.Has(blob.FlagBinary))
}

func TestUnionRelinksCurrentRow(t *testing.T) {
	// "W": three columns merged through two bridges; the last column joins after the first union
	lines := rasterize(
		image.Rect(0, 0, 1, 3), image.Rect(4, 0, 5, 3), image.Rect(8, 0, 9, 3),
		image.Rect(0, 3, 5, 4), image.Rect(6, 3, 9, 4),
	)
	pairs := Run(NewListCache(), lines, nil, 0)
	require.Len(t, pairs, 2)

	lines = append(lines, blob.NewHorizontalLine(4, 2, 7))
	pairs = Run(NewListCache(), lines, nil, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, uint64(3*3+5+3+6), pairBlob(t, pairs[0]).GetNumPixels())
}

func TestCompactsTouchingRuns(t *testing.T) {
	lines := []blob.HorizontalLine{
		{Y: 0, X0: 0, X1: 5},
		{Y: 1, X0: 0, X1: 2}, {Y: 1, X0: 3, X1: 5},
	}
	pixels := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	pairs := Run(NewListCache(), lines, pixels, 1)
	require.Len(t, pairs, 1)
	assert.Equal(t, []blob.HorizontalLine{{Y: 0, X0: 0, X1: 5}, {Y: 1, X0: 0, X1: 5}}, pairs[0].Lines)
	assert.Equal(t, pixels, pairs[0].Pixels)
}

func TestRGBPixelsFollowComponents(t *testing.T) {
	lines := []blob.HorizontalLine{{Y: 0, X0: 0, X1: 0}, {Y: 0, X0: 5, X1: 6}}
	pixels := []byte{1, 1, 1, 2, 2, 2, 3, 3, 3}
	pairs := Run(nil, lines, pixels, 3)
	require.Len(t, pairs, 2)
	sortPairs(pairs)
	assert.Equal(t, []byte{1, 1, 1}, pairs[0].Pixels)
	assert.Equal(t, []byte{2, 2, 2, 3, 3, 3}, pairs[1].Pixels)
	assert.True(t, pairs[1].Flags.Has(blob.FlagRGB))
	assert.Equal(t, 3, pairBlob(t, pairs[1]).Channels())
}

func TestCacheReuse(t *testing.T) {
	cache := NewListCache()
	first := rasterize(image.Rect(0, 0, 3, 3), image.Rect(10, 0, 12, 2))
	second := rasterize(image.Rect(0, 0, 2, 2))
	assert.Len(t, Run(cache, first, nil, 0), 2)
	pairs := Run(cache, second, nil, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, second, pairs[0].Lines)
	assert.Empty(t, Run(cache, nil, nil, 0))
}

func TestRunImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 4))
	set := func(x, y int, v uint8) { img.SetGray(x, y, color.Gray{Y: v}) }
	set(0, 0, 10)
	set(1, 0, 20)
	set(1, 1, 30)
	set(7, 3, 40)
	set(6, 2, 50)
	set(4, 0, 60)

	pairs, err := RunImage(NewListCache(), img)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	sortPairs(pairs)
	assert.Equal(t, []blob.HorizontalLine{{Y: 0, X0: 0, X1: 1}, {Y: 1, X0: 1, X1: 1}}, pairs[0].Lines)
	assert.Equal(t, []byte{10, 20, 30}, pairs[0].Pixels)
	assert.Equal(t, []byte{60}, pairs[1].Pixels)
	assert.Equal(t, []byte{50, 40}, pairs[2].Pixels)
}
