package blob

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned box given by its top-left corner and size
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Center returns the middle of the rectangle
func (rect Rectangle) Center() Point {
	return Point{
		X: rect.X + rect.Width/2.0,
		Y: rect.Y + rect.Height/2.0,
	}
}

// Pos returns the top-left corner
func (rect Rectangle) Pos() Point {
	return Point{X: rect.X, Y: rect.Y}
}

// Empty reports whether the rectangle covers no area
func (rect Rectangle) Empty() bool {
	return rect.Width <= 0 || rect.Height <= 0
}

// ImageRect converts to integer image coordinates (the rectangle is expected to be pixel aligned)
func (rect Rectangle) ImageRect() image.Rectangle {
	x := int(math.Floor(rect.X))
	y := int(math.Floor(rect.Y))
	return image.Rect(x, y, x+int(math.Ceil(rect.Width)), y+int(math.Ceil(rect.Height)))
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale multiplies both coordinates by s
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Distance returns euclidean distance between two points
func (p Point) Distance(q Point) float64 {
	return euclideanDistance(p, q)
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(float64(p1.X-p2.X), 2) + math.Pow(float64(p1.Y-p2.Y), 2))
}
