package blob

import "math"

// CalculateProperties computes bounds, pixel count and a placeholder center in one pass.
// It does nothing when the cache is ready.
func (blob *Blob) CalculateProperties() {
	if blob.properties.ready {
		return
	}
	props := properties{ready: true}
	if len(blob.lines) > 0 {
		minX, maxX := math.MaxInt, math.MinInt
		minY, maxY := math.MaxInt, math.MinInt
		for _, line := range blob.lines {
			minX = minInt(minX, int(line.X0))
			maxX = maxInt(maxX, int(line.X1))
			minY = minInt(minY, int(line.Y))
			maxY = maxInt(maxY, int(line.Y))
			props.numPixels += uint64(line.Width())
		}
		props.bounds = NewRect(float64(minX), float64(minY), float64(maxX-minX+1), float64(maxY-minY+1))
		props.center = props.bounds.Center()
	}
	blob.properties = props
}

// GetBounds returns (min_x, min_y, width, height) of covered pixels
func (blob *Blob) GetBounds() Rectangle {
	blob.CalculateProperties()
	return blob.properties.bounds
}

// GetNumPixels returns number of covered pixels
func (blob *Blob) GetNumPixels() uint64 {
	blob.CalculateProperties()
	return blob.properties.numPixels
}

// GetCenter returns the moment centroid when moments are computed, the bounds center otherwise
func (blob *Blob) GetCenter() Point {
	if blob.moments.ready {
		return blob.moments.Center
	}
	blob.CalculateProperties()
	return blob.properties.center
}

// GetDiagonal returns length of the bounds diagonal
func (blob *Blob) GetDiagonal() float64 {
	bounds := blob.GetBounds()
	return math.Sqrt(math.Pow(bounds.Width, 2) + math.Pow(bounds.Height, 2))
}
