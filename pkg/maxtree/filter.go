package maxtree

// DirectFilter reconstructs image after pruning every node whose
// attribute falls below threshold, writing the result into output.
//
// This variant is only correct for an increasing attribute — one for
// which every child's value is no greater than its parent's along every
// root-to-leaf path (area is increasing). For a non-increasing
// attribute use CutFirstFilter instead.
func DirectFilter[T Numeric](image Image[T], parent []int64, sortedIndices []int64, attribute []float64, threshold float64, output []T) error {
	if err := validateFilterInputs(image, parent, sortedIndices, attribute, output); err != nil {
		return err
	}

	root := findRootOf(parent)

	if attribute[root] < threshold {
		output[root] = 0
	} else {
		output[root] = image.Data[root]
	}

	for _, p := range sortedIndices {
		if p == root {
			continue
		}
		q := parent[p]
		switch {
		case image.Data[p] == image.Data[q]:
			output[p] = output[q]
		case attribute[p] < threshold:
			output[p] = output[q]
		default:
			output[p] = image.Data[p]
		}
	}
	return nil
}

// CutFirstFilter reconstructs image after pruning from the root down,
// monotonically: once an ancestor has been cut, none of its descendants
// may be reinstated at a higher level even if their own attribute would
// otherwise pass the threshold. Correct for both increasing and
// non-increasing attributes.
func CutFirstFilter[T Numeric](image Image[T], parent []int64, sortedIndices []int64, attribute []float64, threshold float64, output []T) error {
	if err := validateFilterInputs(image, parent, sortedIndices, attribute, output); err != nil {
		return err
	}

	root := findRootOf(parent)

	if attribute[root] < threshold {
		output[root] = 0
	} else {
		output[root] = image.Data[root]
	}

	for _, p := range sortedIndices {
		if p == root {
			continue
		}
		q := parent[p]
		switch {
		case image.Data[p] == image.Data[q]:
			output[p] = output[q]
		case attribute[p] < threshold || output[q] < image.Data[q]:
			output[p] = output[q]
		default:
			output[p] = image.Data[p]
		}
	}
	return nil
}

// findRootOf returns the pixel index that is its own parent. A
// well-formed canonical max-tree has exactly one.
func findRootOf(parent []int64) int64 {
	for i, pi := range parent {
		if pi == int64(i) {
			return int64(i)
		}
	}
	return -1
}

func validateFilterInputs[T Numeric](image Image[T], parent []int64, sortedIndices []int64, attribute []float64, output []T) error {
	p := image.Len()
	if len(parent) != p {
		return ShapeMismatchf("parent has length %d, want %d", len(parent), p)
	}
	if len(sortedIndices) != p {
		return ShapeMismatchf("sortedIndices has length %d, want %d", len(sortedIndices), p)
	}
	if len(attribute) != p {
		return ShapeMismatchf("attribute has length %d, want %d", len(attribute), p)
	}
	if len(output) != p {
		return ShapeMismatchf("output has length %d, want %d", len(output), p)
	}
	return nil
}
