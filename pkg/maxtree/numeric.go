// Package maxtree implements max-tree construction and attribute filtering
// over N-dimensional scalar images, following the Berger/Najman union-find
// sweep: pixels are visited in descending intensity order and attached to a
// growing forest whose canonical form encodes one node per connected
// component of every upper level set.
package maxtree

// Numeric is the set of scalar pixel types the engine operates on: signed
// and unsigned integers of every stdlib width, plus both float widths.
// The algorithms only ever need a total order and an additive zero, both
// of which every type in this constraint provides. Deliberately narrower
// than constraints.Integer|constraints.Float: plain int/uint/uintptr are
// excluded since their width is platform-dependent rather than one of
// the fixed pixel widths this engine supports.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Image is a flat, row-major (C-order) N-dimensional array of scalar
// pixels together with its shape. Shape and the length of Data are fixed
// once an Image is constructed; nothing in this package mutates Shape.
type Image[T Numeric] struct {
	Data  []T
	Shape []int
}

// NewImage validates that Data's length matches the product of Shape and
// returns an Image wrapping both. It never copies Data.
func NewImage[T Numeric](data []T, shape []int) (Image[T], error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return Image[T]{}, ShapeMismatchf("image has %d elements but shape %v implies %d", len(data), shape, n)
	}
	return Image[T]{Data: data, Shape: shape}, nil
}

// Len returns the number of pixels in the image.
func (img Image[T]) Len() int { return len(img.Data) }
