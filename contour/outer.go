package contour

import (
	"math"

	"github.com/LdDl/pvblob/blob"
	"github.com/pkg/errors"
)

// LineSource is anything carrying sorted run-length lines, *blob.Blob for instance
type LineSource interface {
	GetLines() []blob.HorizontalLine
}

// window keeps the occupancy of three consecutive rows. A column is set for row y
// when its stamp in slot y mod 3 equals y+1, so stale rows never need clearing.
// Cells start at emptyStamp, which no row (including the virtual row -1) produces
type window struct {
	minX  int
	slots [3][]int32
}

const emptyStamp = math.MinInt32

func newWindow(minX, maxX int) *window {
	w := &window{minX: minX - 1}
	for i := range w.slots {
		cells := make([]int32, maxX-minX+3)
		for j := range cells {
			cells[j] = emptyStamp
		}
		w.slots[i] = cells
	}
	return w
}

func slot(y int) int {
	return ((y % 3) + 3) % 3
}

func (w *window) fill(y int, lines []blob.HorizontalLine) {
	cells := w.slots[slot(y)]
	for _, line := range lines {
		for x := int(line.X0); x <= int(line.X1); x++ {
			cells[x-w.minX] = int32(y) + 1
		}
	}
}

func (w *window) has(x, y int) bool {
	col := x - w.minX
	cells := w.slots[slot(y)]
	if col < 0 || col >= len(cells) {
		return false
	}
	return cells[col] == int32(y)+1
}

// neighborhood returns the 3x3 occupancy around (x, y) in row-major order
func (w *window) neighborhood(x, y int) [9]bool {
	var n [9]bool
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			n[(dy+1)*3+dx+1] = w.has(x+dx, y+dy)
		}
	}
	return n
}

// rows splits sorted lines into per-row groups
func rows(lines []blob.HorizontalLine) [][]blob.HorizontalLine {
	var out [][]blob.HorizontalLine
	start := 0
	for i := 1; i <= len(lines); i++ {
		if i == len(lines) || lines[i].Y != lines[start].Y {
			out = append(out, lines[start:i])
			start = i
		}
	}
	return out
}

// BorderTree classifies the pixels of src and registers every border pixel in a new Tree
func BorderTree(src LineSource) *Tree {
	tree := NewTree()
	lines := src.GetLines()
	if len(lines) == 0 {
		return tree
	}
	minX, maxX := int(lines[0].X0), int(lines[0].X1)
	for _, line := range lines[1:] {
		if int(line.X0) < minX {
			minX = int(line.X0)
		}
		if int(line.X1) > maxX {
			maxX = int(line.X1)
		}
	}
	w := newWindow(minX, maxX)
	groups := rows(lines)
	filled := -1
	for i, group := range groups {
		y := int(group[0].Y)
		if filled < i {
			w.fill(y, group)
			filled = i
		}
		// the next row shares a slot with y-2 only, so it is safe to load early when adjacent
		if i+1 < len(groups) && int(groups[i+1][0].Y) == y+1 {
			w.fill(y+1, groups[i+1])
			filled = i + 1
		}
		for _, line := range group {
			for x := int(line.X0); x <= int(line.X1); x++ {
				n := w.neighborhood(x, y)
				if !n[1] || !n[3] || !n[5] || !n[7] {
					tree.Add(x, y, n)
				}
			}
		}
	}
	return tree
}

// FindOuterPoints traces every boundary of src: the outer hull and each hole become
// separate closed polygons with vertices on pixel side midpoints.
// A 3x3 square yields 12 midpoints; SimplifyCollinear reduces them to an octagon with 4 diagonal corner cuts
func FindOuterPoints(src LineSource) ([][]blob.Point, error) {
	if len(src.GetLines()) == 0 {
		return nil, nil
	}
	polygons, err := BorderTree(src).GenerateEdges()
	if err != nil {
		return nil, errors.Wrap(err, "Can't trace outline")
	}
	return polygons, nil
}
