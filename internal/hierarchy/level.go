package hierarchy

import "github.com/MadAppGang/kdbush"

// Level is one zoom slice of the tree: its nodes in derivation order plus
// a static spatial index over them. Nodes must not be appended after the
// index is built; the index takes pointers into the slice.
type Level struct {
	Nodes []Node
	bush  *kdbush.KDBush
}

// build indexes the level's nodes. Empty levels keep a nil index.
func (l *Level) build(nodeSize int) {
	if len(l.Nodes) == 0 {
		return
	}
	points := make([]kdbush.Point, len(l.Nodes))
	for i := range l.Nodes {
		points[i] = &l.Nodes[i]
	}
	l.bush = kdbush.NewBush(points, nodeSize)
}

// Range returns the indices of nodes inside the rectangle, bounds inclusive.
func (l *Level) Range(minX, minY, maxX, maxY float64) []int {
	if l.bush == nil {
		return nil
	}
	return l.bush.Range(minX, minY, maxX, maxY)
}

// Within returns the indices of nodes within distance r of (x, y). The
// result can include the node at (x, y) itself.
func (l *Level) Within(x, y, r float64) []int {
	if l.bush == nil {
		return nil
	}
	return l.bush.Within(&kdbush.SimplePoint{X: x, Y: y}, r)
}
