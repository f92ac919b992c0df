package blob

import (
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareLines(x, y, size uint16) []HorizontalLine {
	lines := make([]HorizontalLine, 0, size)
	for row := uint16(0); row < size; row++ {
		lines = append(lines, HorizontalLine{Y: y + row, X0: x, X1: x + size - 1})
	}
	return lines
}

func greyPixels(lines []HorizontalLine, value func(x, y int) uint8) []byte {
	out := make([]byte, 0, countPixels(lines))
	for _, line := range lines {
		for x := int(line.X0); x <= int(line.X1); x++ {
			out = append(out, value(x, int(line.Y)))
		}
	}
	return out
}

func quietOptions() Option {
	return WithOptions(Options{Logger: NoopLogger{}})
}

func TestSquareProperties(t *testing.T) {
	blob, err := NewBlobFromLines(squareLines(0, 0, 3), quietOptions())
	require.NoError(t, err)

	if bounds := blob.GetBounds(); bounds != NewRect(0, 0, 3, 3) {
		t.Errorf("Expected bounds (0,0,3,3), got %v", bounds)
	}
	if n := blob.GetNumPixels(); n != 9 {
		t.Errorf("Expected 9 pixels, got %d", n)
	}
	moments := blob.GetMoments()
	if math.Abs(moments.Center.X-1) > eps || math.Abs(moments.Center.Y-1) > eps {
		t.Errorf("Expected moment center (1,1), got %v", moments.Center)
	}
	if math.Abs(moments.M[0][0]-9) > eps {
		t.Errorf("Expected m00 = 9, got %v", moments.M[0][0])
	}
	if blob.GetCenter() != moments.Center {
		t.Error("Center should come from moments once they are computed")
	}
}

func TestMomentsMatchBruteForce(t *testing.T) {
	lines := []HorizontalLine{
		{Y: 10, X0: 3, X1: 9},
		{Y: 11, X0: 4, X1: 12},
		{Y: 12, X0: 8, X1: 20},
		{Y: 13, X0: 15, X1: 22},
	}
	blob, err := NewBlobFromLines(lines, quietOptions())
	require.NoError(t, err)
	moments := blob.GetMoments()

	var m [3][3]float64
	for _, line := range lines {
		for x := int(line.X0); x <= int(line.X1); x++ {
			for p := 0; p < 3; p++ {
				for q := 0; q < 3; q++ {
					m[p][q] += math.Pow(float64(x), float64(p)) * math.Pow(float64(line.Y), float64(q))
				}
			}
		}
	}
	cx, cy := m[1][0]/m[0][0], m[0][1]/m[0][0]
	var mu [3][3]float64
	for _, line := range lines {
		for x := int(line.X0); x <= int(line.X1); x++ {
			for p := 0; p < 3; p++ {
				for q := 0; q < 3; q++ {
					mu[p][q] += math.Pow(float64(x)-cx, float64(p)) * math.Pow(float64(line.Y)-cy, float64(q))
				}
			}
		}
	}
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			assert.InDelta(t, m[p][q], moments.M[p][q], 1e-6*math.Max(1, math.Abs(m[p][q])), "m[%d][%d]", p, q)
			assert.InDelta(t, mu[p][q], moments.Mu[p][q], 1e-6*math.Max(1, math.Abs(mu[p][q])), "mu[%d][%d]", p, q)
		}
	}
	angle := 0.5 * math.Atan2(2*mu[1][1]/mu[0][0], (mu[2][0]-mu[0][2])/mu[0][0])
	assert.InDelta(t, angle, moments.Angle, eps)
	assert.Greater(t, moments.Angle, 0.0, "blob is slanted down to the right")
}

func TestMomentsChunked(t *testing.T) {
	lines := make([]HorizontalLine, 0, 5000)
	for y := 0; y < 5000; y++ {
		lines = append(lines, HorizontalLine{Y: uint16(y), X0: uint16(y / 10), X1: uint16(y/10 + y%7)})
	}
	single, err := NewBlobFromLines(append([]HorizontalLine(nil), lines...), WithOptions(Options{MomentChunkLines: 1 << 20}))
	require.NoError(t, err)
	chunked, err := NewBlobFromLines(lines, WithOptions(Options{MomentChunkLines: 100, MomentWorkers: 3}))
	require.NoError(t, err)

	require.Equal(t, []int{0, 1250, 2500, 3750, 5000}, momentChunks(5000, 100))
	a, b := single.GetMoments(), chunked.GetMoments()
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			assert.InEpsilon(t, a.M[p][q], b.M[p][q], 1e-9)
		}
	}
	assert.InDelta(t, a.Angle, b.Angle, 1e-9)
}

func TestOrientationInvariantUnderOffset(t *testing.T) {
	lines := []HorizontalLine{
		{Y: 0, X0: 0, X1: 3},
		{Y: 1, X0: 2, X1: 6},
		{Y: 2, X0: 5, X1: 9},
		{Y: 3, X0: 8, X1: 11},
	}
	blob, err := NewBlobFromLines(lines, quietOptions())
	require.NoError(t, err)
	before := blob.GetOrientation()
	beforeCenter := blob.GetCenter()

	require.NoError(t, blob.AddOffset(image.Pt(37, 120)))
	after := blob.GetOrientation()
	assert.InDelta(t, before, after, 1e-9)
	assert.InDelta(t, beforeCenter.X+37, blob.GetCenter().X, 1e-9)
	assert.InDelta(t, beforeCenter.Y+120, blob.GetCenter().Y, 1e-9)
	assert.Equal(t, NewRect(37, 120, 12, 4), blob.GetBounds())

	err = blob.AddOffset(image.Pt(-1000, 0))
	assert.Equal(t, ErrCoordinateRange, errors.Cause(err))
}

func TestPrincipalAxes(t *testing.T) {
	bar, err := NewBlobFromLines([]HorizontalLine{{Y: 0, X0: 0, X1: 19}, {Y: 1, X0: 0, X1: 19}}, quietOptions())
	require.NoError(t, err)
	moments := bar.GetMoments()
	major, minor, err := moments.PrincipalAxes()
	require.NoError(t, err)
	assert.Greater(t, major, minor)
	assert.InDelta(t, 0, moments.Angle, eps)
	// variance of 0..19 is (20^2-1)/12, axis length is 4*sigma
	assert.InDelta(t, 4*math.Sqrt(399.0/12.0), major, 1e-9)

	square, err := NewBlobFromLines(squareLines(5, 5, 4), quietOptions())
	require.NoError(t, err)
	squareMoments := square.GetMoments()
	e, err := squareMoments.Eccentricity()
	require.NoError(t, err)
	assert.InDelta(t, 0, e, 1e-6)

	var empty Moments
	_, _, err = empty.PrincipalAxes()
	assert.Error(t, err)
}

func TestNewBlobChecksPixels(t *testing.T) {
	lines := squareLines(0, 0, 2)
	_, err := NewBlob(lines, make([]byte, 3), 0, quietOptions())
	assert.Equal(t, ErrChannelMismatch, errors.Cause(err))

	rgb, err := NewBlob(squareLines(0, 0, 2), make([]byte, 12), FlagsForChannels(3), quietOptions())
	require.NoError(t, err)
	assert.True(t, rgb.IsRGB())
	assert.Equal(t, 3, rgb.Channels())
	assert.Equal(t, ErrChannelMismatch, errors.Cause(rgb.SetPixels(make([]byte, 4))))
}

func TestNewBlobRepairsIllegalLines(t *testing.T) {
	lines := []HorizontalLine{{Y: 1, X0: 0, X1: 2}, {Y: 0, X0: 0, X1: 2}, {Y: 1, X0: 2, X1: 4}}
	repaired, err := NewBlobFromLines(append([]HorizontalLine(nil), lines...), WithOptions(Options{CorrectIllegalLines: true, Logger: NoopLogger{}}))
	require.NoError(t, err)
	assert.Equal(t, []HorizontalLine{{Y: 0, X0: 0, X1: 2}, {Y: 1, X0: 0, X1: 4}}, repaired.GetLines())

	kept, err := NewBlobFromLines(append([]HorizontalLine(nil), lines...), quietOptions())
	require.NoError(t, err)
	assert.Equal(t, lines, kept.GetLines())
	assert.True(t, illegalLinesWarned.Load())
}

func TestNewBlobRepairChecksPixelsFirst(t *testing.T) {
	lines := []HorizontalLine{{Y: 1, X0: 0, X1: 3}, {Y: 0, X0: 0, X1: 3}}
	_, err := NewBlob(lines, make([]byte, 2), FlagsForChannels(1), WithOptions(Options{CorrectIllegalLines: true, Logger: NoopLogger{}}))
	require.Error(t, err)
	assert.Equal(t, ErrChannelMismatch, errors.Cause(err))
}

func TestParentAndSplit(t *testing.T) {
	blob, err := NewBlobFromLines(squareLines(0, 0, 2), quietOptions())
	require.NoError(t, err)
	assert.False(t, blob.IsSplit())
	assert.False(t, blob.GetParentID().Valid())

	blob.SetParentID(BlobID(42))
	assert.True(t, blob.IsSplit())
	assert.Equal(t, BlobID(42), blob.GetParentID())

	blob.SetParentID(InvalidBlobID)
	assert.False(t, blob.IsSplit())
}

func TestReleaseReturnsBuffer(t *testing.T) {
	sharedLines.mu.Lock()
	sharedLines.free = nil
	sharedLines.mu.Unlock()

	lines := GetLineBuffer(16)
	lines = append(lines, squareLines(0, 0, 4)...)
	blob, err := NewBlobFromLines(lines, WithOptions(Options{PoolCapacity: 1, Logger: NoopLogger{}}))
	require.NoError(t, err)
	clone := blob.Clone()
	blob.Release()
	assert.True(t, blob.Empty())
	assert.Len(t, sharedLines.free, 1)

	clone.Release()
	assert.Len(t, sharedLines.free, 1, "pool is bounded by PoolCapacity")

	reused := GetLineBuffer(8)
	assert.Equal(t, 0, len(reused))
	assert.GreaterOrEqual(t, cap(reused), 16)
	assert.Len(t, sharedLines.free, 0)
}

func TestEqualAndClone(t *testing.T) {
	lines := squareLines(3, 3, 3)
	blob, err := NewBlob(lines, greyPixels(lines, func(x, y int) uint8 { return uint8(x + y) }), 0, quietOptions())
	require.NoError(t, err)
	clone := blob.Clone()
	assert.True(t, blob.Equal(clone))
	clone.GetPixels()[0]++
	assert.False(t, blob.Equal(clone))
	assert.Greater(t, blob.MemorySize(), uint64(len(blob.GetPixels())))
	assert.Contains(t, blob.String(), "pixels=9")
}

func TestScaleCoordinates(t *testing.T) {
	lines := squareLines(2, 2, 4)
	blob, err := NewBlob(lines, make([]byte, 16), 0, quietOptions())
	require.NoError(t, err)
	require.NoError(t, blob.ScaleCoordinates(NewPoint(0.5, 0.5)))
	assert.Equal(t, []HorizontalLine{{Y: 1, X0: 1, X1: 2}, {Y: 2, X0: 1, X1: 2}}, blob.GetLines())
	assert.False(t, blob.HasPixels())
	assert.Equal(t, uint64(4), blob.GetNumPixels())

	err = blob.ScaleCoordinates(NewPoint(0, 1))
	require.Error(t, err)
	assert.NotEqual(t, ErrCoordinateRange, errors.Cause(err))
	assert.Equal(t, []HorizontalLine{{Y: 1, X0: 1, X1: 2}, {Y: 2, X0: 1, X1: 2}}, blob.GetLines())
}

func TestBlobID(t *testing.T) {
	id := NewBlobID([]HorizontalLine{{Y: 7, X0: 10, X1: 20}, {Y: 8, X0: 10, X1: 20}})
	assert.Equal(t, image.Pt(15, 7), id.Position())
	assert.Equal(t, uint32(2), uint32(id)&0xFF)
	assert.True(t, id.Valid())
	assert.Equal(t, id.UUID(), id.UUID())
	assert.NotEqual(t, id.UUID(), BlobID(1).UUID())
	assert.False(t, NewBlobID(nil).Valid())
}
