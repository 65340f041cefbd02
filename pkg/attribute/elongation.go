package attribute

import (
	"gonum.org/v1/gonum/mat"

	"maxtree/pkg/maxtree"
)

// moments is the per-node running coordinate second-moment state
// accumulated during Elongation's reverse sweep: count, per-dimension
// sum, and the sum of every pairwise coordinate product (including a
// dimension with itself, i.e. the sum of squares).
type moments struct {
	count float64
	sum   []float64
	prod  [][]float64 // prod[i][j] = sum over pixels of coord[i]*coord[j]
}

func newMoments(coord []int) moments {
	d := len(coord)
	sum := make([]float64, d)
	prod := make([][]float64, d)
	for i := range coord {
		sum[i] = float64(coord[i])
		prod[i] = make([]float64, d)
		for j := range coord {
			prod[i][j] = float64(coord[i]) * float64(coord[j])
		}
	}
	return moments{count: 1, sum: sum, prod: prod}
}

func (m *moments) merge(o moments) {
	m.count += o.count
	for i := range m.sum {
		m.sum[i] += o.sum[i]
		for j := range m.sum {
			m.prod[i][j] += o.prod[i][j]
		}
	}
}

// covariance returns the accumulated coordinate covariance matrix.
func (m moments) covariance() *mat.SymDense {
	d := len(m.sum)
	cov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		meanI := m.sum[i] / m.count
		for j := i; j < d; j++ {
			meanJ := m.sum[j] / m.count
			cov.SetSym(i, j, m.prod[i][j]/m.count-meanI*meanJ)
		}
	}
	return cov
}

// Elongation computes, for every node of a canonical max-tree, the ratio
// of the largest to the smallest eigenvalue of the coordinate covariance
// matrix of the node's own component — a shape-elongation measure that
// is 1 for an isotropic blob and grows without bound for a thin,
// stretched-out component.
//
// This attribute is not increasing: merging two elongated but
// differently oriented components can be less elongated than either
// parent alone. It is intended for use with CutFirstFilter only, never
// DirectFilter.
func Elongation[T maxtree.Numeric](image maxtree.Image[T], parent, sortedIndices []int64) []float64 {
	p := len(parent)
	acc := make([]moments, p)
	for i := 0; i < p; i++ {
		acc[i] = newMoments(unravel(i, image.Shape))
	}
	for i := len(sortedIndices) - 1; i >= 0; i-- {
		px := sortedIndices[i]
		if parent[px] != px {
			pm := acc[parent[px]]
			pm.merge(acc[px])
			acc[parent[px]] = pm
		}
	}

	out := make([]float64, p)
	var eig mat.EigenSym
	for i, m := range acc {
		if m.count < 2 || len(m.sum) < 2 {
			out[i] = 1
			continue
		}
		if !eig.Factorize(m.covariance(), false) {
			out[i] = 1
			continue
		}
		values := eig.Values(nil)
		lo, hi := values[0], values[0]
		for _, v := range values {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		// A degenerate (perfectly collinear) component has zero variance
		// along its narrow axis; floor it instead of dividing by zero so
		// the ratio still reads as extreme elongation rather than a
		// finite, easily-mistaken-for-isotropic eigenvalue.
		const epsilon = 1e-9
		if lo < epsilon {
			lo = epsilon
		}
		out[i] = hi / lo
	}
	return out
}
