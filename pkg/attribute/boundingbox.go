// Package attribute supplies attribute families beyond area for use with
// maxtree.DirectFilter and maxtree.CutFirstFilter, following the
// accumulate-in-reverse-order pattern maxtree.ComputeArea itself uses.
package attribute

import "math"

// box is the per-node running min/max coordinate state accumulated
// during BoundingBoxDiagonal's reverse sweep.
type box struct {
	min, max []int
}

func newBox(coord []int) box {
	min := make([]int, len(coord))
	max := make([]int, len(coord))
	copy(min, coord)
	copy(max, coord)
	return box{min: min, max: max}
}

func (b *box) merge(o box) {
	for d := range b.min {
		if o.min[d] < b.min[d] {
			b.min[d] = o.min[d]
		}
		if o.max[d] > b.max[d] {
			b.max[d] = o.max[d]
		}
	}
}

func (b box) diagonal() float64 {
	sum := 0.0
	for d := range b.min {
		diff := float64(b.max[d] - b.min[d])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// BoundingBoxDiagonal computes, for every node of a canonical max-tree
// over an image of the given shape, the Euclidean diagonal length of the
// axis-aligned bounding box spanning the node's own component. A child's
// box is always contained in its parent's, so this attribute is
// increasing and is a valid DirectFilter input.
func BoundingBoxDiagonal(shape []int, parent, sortedIndices []int64) []float64 {
	p := len(parent)
	boxes := make([]box, p)
	for i := 0; i < p; i++ {
		boxes[i] = newBox(unravel(i, shape))
	}
	for i := len(sortedIndices) - 1; i >= 0; i-- {
		px := sortedIndices[i]
		if parent[px] != px {
			pb := boxes[parent[px]]
			pb.merge(boxes[px])
			boxes[parent[px]] = pb
		}
	}
	out := make([]float64, p)
	for i, b := range boxes {
		out[i] = b.diagonal()
	}
	return out
}

func unravel(index int, shape []int) []int {
	coord := make([]int, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		coord[d] = index % shape[d]
		index /= shape[d]
	}
	return coord
}
