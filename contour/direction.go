package contour

import "github.com/LdDl/pvblob/blob"

// Direction is one of the 8 compass directions, clockwise from TOP
type Direction uint8

const (
	Top Direction = iota
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
	TopLeft
)

// rotate returns the direction steps*45° clockwise (negative steps rotate counter-clockwise)
func (d Direction) rotate(steps int) Direction {
	return Direction((int(d) + steps + 8) % 8)
}

func (d Direction) String() string {
	return [...]string{"top", "top-right", "right", "bottom-right", "bottom", "bottom-left", "left", "top-left"}[d]
}

// neighborIndex maps a direction to its cell in a row-major 3x3 neighborhood
var neighborIndex = [8]int{1, 2, 5, 8, 7, 6, 3, 0}

var vectors = [8]blob.Point{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

// Vector returns the unit step towards d
func (d Direction) Vector() blob.Point {
	return vectors[d]
}

// halfVector points from a pixel center to the middle of its side (or corner) d
func (d Direction) halfVector() blob.Point {
	return vectors[d].Scale(0.5)
}

// borderSides are the orthogonal sides in the order of Node.Border
var borderSides = [4]Direction{Top, Left, Right, Bottom}
