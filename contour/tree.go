// Package contour traces outlines of run-length blobs on a half-pixel graph.
package contour

import (
	"math"

	"github.com/LdDl/pvblob/blob"
	"github.com/pkg/errors"
)

// ErrInvalidGraph is returned when border edges do not close into simple cycles
var ErrInvalidGraph = errors.New("inconsistent border graph")

type NodeID uint32

type SubnodeID uint32

// NoSubnode marks an unused edge slot
const NoSubnode SubnodeID = math.MaxUint32

// Node is a border pixel: its center, 3x3 occupancy (row-major, center at 4)
// and which of its sides [Top, Left, Right, Bottom] face the outside
type Node struct {
	Position  blob.Point
	Neighbors [9]bool
	Border    [4]bool
}

// Has reports whether the neighbor towards d belongs to the blob
func (node *Node) Has(d Direction) bool {
	return node.Neighbors[neighborIndex[d]]
}

// Subnode is a vertex in the middle of a pixel side
type Subnode struct {
	Position blob.Point
	Edges    [2]SubnodeID
	Walked   bool
}

func (sub *Subnode) degree() int {
	n := 0
	for _, e := range sub.Edges {
		if e != NoSubnode {
			n++
		}
	}
	return n
}

// Edge joins side Out of node A to side In of node B
type Edge struct {
	A, B    NodeID
	Out, In Direction
}

// Tree owns nodes and subnodes of one tracing run
type Tree struct {
	nodes    []Node
	index    map[uint64]NodeID
	subnodes []Subnode
	lookup   map[uint64]SubnodeID
}

func NewTree() *Tree {
	return &Tree{
		index:  make(map[uint64]NodeID),
		lookup: make(map[uint64]SubnodeID),
	}
}

// leafIndex packs two integer coordinates into one key
func leafIndex(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

// Add registers the border pixel (x, y) with its 3x3 neighborhood
func (tree *Tree) Add(x, y int, neighbors [9]bool) NodeID {
	id := NodeID(len(tree.nodes))
	tree.nodes = append(tree.nodes, Node{
		Position:  blob.NewPoint(float64(x)+0.5, float64(y)+0.5),
		Neighbors: neighbors,
		Border:    [4]bool{!neighbors[1], !neighbors[3], !neighbors[5], !neighbors[7]},
	})
	tree.index[leafIndex(int32(x), int32(y))] = id
	return id
}

// Nodes returns registered border pixels in insertion order
func (tree *Tree) Nodes() []Node {
	return tree.nodes
}

func (tree *Tree) find(p blob.Point) (NodeID, bool) {
	id, ok := tree.index[leafIndex(int32(math.Floor(p.X)), int32(math.Floor(p.Y)))]
	return id, ok
}

// subnodeAt returns the subnode at p, creating it when needed. Side midpoints lie on a
// half-pixel grid so doubled coordinates are exact integers
func (tree *Tree) subnodeAt(p blob.Point) SubnodeID {
	key := leafIndex(int32(math.Round(p.X*2)), int32(math.Round(p.Y*2)))
	if id, ok := tree.lookup[key]; ok {
		return id
	}
	id := SubnodeID(len(tree.subnodes))
	tree.subnodes = append(tree.subnodes, Subnode{Position: p, Edges: [2]SubnodeID{NoSubnode, NoSubnode}})
	tree.lookup[key] = id
	return id
}

func (tree *Tree) link(a, b SubnodeID) error {
	for _, id := range [2]SubnodeID{a, b} {
		if tree.subnodes[id].degree() == 2 {
			return errors.Wrapf(ErrInvalidGraph, "Can't add third edge to vertex %v", tree.subnodes[id].Position)
		}
	}
	tree.attach(a, b)
	tree.attach(b, a)
	return nil
}

func (tree *Tree) attach(from, to SubnodeID) {
	sub := &tree.subnodes[from]
	if sub.Edges[0] == NoSubnode {
		sub.Edges[0] = to
	} else {
		sub.Edges[1] = to
	}
}

// addEdge registers both side midpoints of e and links them
func (tree *Tree) addEdge(e Edge) error {
	out := tree.nodes[e.A].Position.Add(e.Out.halfVector())
	in := tree.nodes[e.B].Position.Add(e.In.halfVector())
	return tree.link(tree.subnodeAt(out), tree.subnodeAt(in))
}

// resolve turns border side d of node id into an edge
func (tree *Tree) resolve(id NodeID, d Direction) (Edge, error) {
	node := &tree.nodes[id]
	left := d.rotate(-1)
	if node.Has(left) {
		// outside corner: continue on the diagonal neighbor
		other, ok := tree.find(node.Position.Add(left.Vector()))
		if !ok {
			return Edge{}, errors.Wrapf(ErrInvalidGraph, "Can't find %s neighbor of %v", left, node.Position)
		}
		return Edge{A: id, B: other, Out: d, In: d.rotate(2)}, nil
	}
	leftLeft := d.rotate(-2)
	if node.Has(leftLeft) {
		// straight: the same side of the next pixel
		other, ok := tree.find(node.Position.Add(leftLeft.Vector()))
		if !ok {
			return Edge{}, errors.Wrapf(ErrInvalidGraph, "Can't find %s neighbor of %v", leftLeft, node.Position)
		}
		return Edge{A: id, B: other, Out: d, In: d}, nil
	}
	// inner corner: wrap around the pixel itself
	return Edge{A: id, B: id, Out: d, In: leftLeft}, nil
}

// GenerateEdges links every border side and walks the resulting cycles.
// Each cycle is returned as one polygon of side midpoints.
func (tree *Tree) GenerateEdges() ([][]blob.Point, error) {
	for id := range tree.nodes {
		for i, side := range borderSides {
			if !tree.nodes[id].Border[i] {
				continue
			}
			e, err := tree.resolve(NodeID(id), side)
			if err != nil {
				return nil, err
			}
			if err := tree.addEdge(e); err != nil {
				return nil, err
			}
		}
	}
	for i := range tree.subnodes {
		if tree.subnodes[i].degree() != 2 {
			return nil, errors.Wrapf(ErrInvalidGraph, "Vertex %v has %d edges", tree.subnodes[i].Position, tree.subnodes[i].degree())
		}
	}

	var polygons [][]blob.Point
	for i := range tree.subnodes {
		if tree.subnodes[i].Walked {
			continue
		}
		polygon, err := tree.walk(SubnodeID(i))
		if err != nil {
			return nil, err
		}
		polygons = append(polygons, polygon)
	}
	return polygons, nil
}

// walk follows the cycle through start, preferring the second edge first
func (tree *Tree) walk(start SubnodeID) ([]blob.Point, error) {
	polygon := make([]blob.Point, 0, 16)
	current := start
	for {
		sub := &tree.subnodes[current]
		sub.Walked = true
		polygon = append(polygon, sub.Position)
		next := NoSubnode
		for _, e := range [2]SubnodeID{sub.Edges[1], sub.Edges[0]} {
			if !tree.subnodes[e].Walked {
				next = e
				break
			}
		}
		if next == NoSubnode {
			if sub.Edges[0] != start && sub.Edges[1] != start {
				return nil, errors.Wrapf(ErrInvalidGraph, "Cycle through %v does not close", tree.subnodes[start].Position)
			}
			return polygon, nil
		}
		current = next
	}
}
