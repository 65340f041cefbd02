// Package denoise provides optional frequency-domain smoothing a caller
// may run on an image before handing it to the max-tree engine, to
// reduce noise-driven over-segmentation of the tree.
package denoise

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SmoothGaussian2D low-pass filters a flat, row-major width*height image
// by multiplying its 2-D FFT with a Gaussian kernel of the given sigma
// (in pixels) and transforming back. sigma<=0 returns a copy of data
// unchanged.
func SmoothGaussian2D(data []float64, width, height int, sigma float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	if sigma <= 0 {
		return out
	}

	spectrum, rowFFT := forward2D(out, width, height)
	applyGaussianKernel(spectrum, width, height, sigma)
	return inverse2D(spectrum, rowFFT, width, height)
}

// forward2D performs a row-then-column real-to-complex 2D FFT, mirroring
// the teacher's fft2D row/column decomposition but built on gonum's FFT
// type end to end (real rows, complex columns) instead of a hand-rolled
// recursive Cooley-Tukey pass for the column direction.
func forward2D(data []float64, width, height int) ([]complex128, *fourier.FFT) {
	rowFFT := fourier.NewFFT(width)
	colFFT := fourier.NewCmplxFFT(height)

	result := make([]complex128, width*height)
	rowInput := make([]float64, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			rowInput[x] = data[y*width+x]
		}
		rowOutput := rowFFT.Coefficients(nil, rowInput)
		expandConjugateSymmetric(result[y*width:(y+1)*width], rowOutput, width)
	}

	colInput := make([]complex128, height)
	colOutput := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			colInput[y] = result[y*width+x]
		}
		colFFT.Coefficients(colOutput, colInput)
		for y := 0; y < height; y++ {
			result[y*width+x] = colOutput[y]
		}
	}
	return result, rowFFT
}

// expandConjugateSymmetric fills a full-length spectrum from gonum's
// half-spectrum real-FFT output using Hermitian symmetry, exactly as the
// teacher's fft2D does for its row pass.
func expandConjugateSymmetric(dst []complex128, half []complex128, n int) {
	for j := 0; j < len(half); j++ {
		dst[j] = half[j]
	}
	for j := len(half); j < n; j++ {
		k := n - j
		if k < len(half) {
			dst[j] = complex(real(half[k]), -imag(half[k]))
		}
	}
}

func applyGaussianKernel(spectrum []complex128, width, height int, sigma float64) {
	for y := 0; y < height; y++ {
		fy := frequency(y, height)
		for x := 0; x < width; x++ {
			fx := frequency(x, width)
			g := math.Exp(-2 * math.Pi * math.Pi * sigma * sigma * (fx*fx + fy*fy))
			spectrum[y*width+x] *= complex(g, 0)
		}
	}
}

// frequency maps a bin index to a normalized frequency in [-0.5, 0.5),
// matching the standard FFT bin ordering (DC first, then positive
// frequencies, then the wraparound negative ones).
func frequency(bin, n int) float64 {
	if bin > n/2 {
		bin -= n
	}
	return float64(bin) / float64(n)
}

func inverse2D(spectrum []complex128, rowFFT *fourier.FFT, width, height int) []float64 {
	colFFT := fourier.NewCmplxFFT(height)
	colInput := make([]complex128, height)
	colOutput := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			colInput[y] = spectrum[y*width+x]
		}
		colFFT.Sequence(colOutput, colInput)
		for y := 0; y < height; y++ {
			spectrum[y*width+x] = colOutput[y] / complex(float64(height), 0)
		}
	}

	out := make([]float64, width*height)
	rowHalf := make([]complex128, width/2+1)
	for y := 0; y < height; y++ {
		copy(rowHalf, spectrum[y*width:y*width+width/2+1])
		row := rowFFT.Sequence(nil, rowHalf)
		for x := 0; x < width; x++ {
			out[y*width+x] = row[x] / float64(width)
		}
	}
	return out
}
