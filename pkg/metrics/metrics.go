// Package metrics computes quality measures comparing an image before
// and after max-tree filtering, in the manner of the teacher's
// reconstruction.ValidationMetrics.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"maxtree/pkg/maxtree"
)

// ValidationMetrics summarizes how much a filtered image diverges from
// its source, and how much of the original foreground survived.
type ValidationMetrics struct {
	// RMSE is the root mean square error between original and filtered
	// intensities.
	RMSE float64

	// Correlation is the Pearson correlation between original and
	// filtered intensities. 1 indicates a perfectly linear relationship.
	Correlation float64

	// RetainedAreaFraction is the fraction of pixels whose filtered
	// value still differs from the additive zero, i.e. survived pruning.
	RetainedAreaFraction float64
}

// Compute derives ValidationMetrics from an original image and its
// filtered counterpart. Both must have the same length.
func Compute[T maxtree.Numeric](original, filtered maxtree.Image[T]) (ValidationMetrics, error) {
	if original.Len() != filtered.Len() {
		return ValidationMetrics{}, maxtree.ShapeMismatchf(
			"original has length %d, filtered has length %d", original.Len(), filtered.Len())
	}

	n := original.Len()
	orig := make([]float64, n)
	filt := make([]float64, n)
	retained := 0
	for i := 0; i < n; i++ {
		orig[i] = float64(original.Data[i])
		filt[i] = float64(filtered.Data[i])
		if filtered.Data[i] != 0 {
			retained++
		}
	}

	return ValidationMetrics{
		RMSE:                 rmse(orig, filt),
		Correlation:          correlation(orig, filt),
		RetainedAreaFraction: float64(retained) / float64(n),
	}, nil
}

func rmse(a, b []float64) float64 {
	n := len(a)
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// correlation returns the Pearson correlation of a and b, or 1 when
// either series is constant (stat.Correlation is undefined there).
func correlation(a, b []float64) float64 {
	if stat.Variance(a, nil) == 0 || stat.Variance(b, nil) == 0 {
		return 1
	}
	return stat.Correlation(a, b, nil)
}
