// Package sortindex supplies the external sorted-index collaborator the
// max-tree engine depends on but deliberately does not implement itself
// (see maxtree.BuildMaxTree's precondition on sortedIndices).
package sortindex

import (
	"sort"

	"maxtree/pkg/maxtree"
)

// Ascending returns a permutation of [0, image.Len()) that visits pixel
// indices in non-decreasing intensity order, ties broken by original
// index so repeated calls on the same image are deterministic.
func Ascending[T maxtree.Numeric](image maxtree.Image[T]) []int64 {
	n := image.Len()
	idx := make([]int64, n)
	for i := range idx {
		idx[i] = int64(i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := image.Data[idx[a]], image.Data[idx[b]]
		if va != vb {
			return va < vb
		}
		return idx[a] < idx[b]
	})
	return idx
}
