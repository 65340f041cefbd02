// Package imageio loads and saves the grayscale images the maxtree CLI
// operates on, converting between Go's image.Image and the flat
// row-major arrays maxtree.Image wraps.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"maxtree/pkg/maxtree"
)

// Load decodes a grayscale image file (PNG or JPEG, detected from the
// file's contents) into a maxtree.Image[uint16], along with its 2-D shape
// as [height, width] to match maxtree's row-major convention.
func Load(path string) (maxtree.Image[uint16], error) {
	file, err := os.Open(path)
	if err != nil {
		return maxtree.Image[uint16]{}, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return maxtree.Image[uint16]{}, fmt.Errorf("decoding image %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			data[y*width+x] = uint16(r)
		}
	}

	return maxtree.NewImage(data, []int{height, width})
}

// Save encodes a maxtree.Image[uint16] with a 2-D shape [height, width]
// as a grayscale PNG or JPEG, chosen by the destination's extension.
func Save(path string, img maxtree.Image[uint16]) error {
	if len(img.Shape) != 2 {
		return maxtree.PreconditionViolationf("Save requires a 2-D image, got shape %v", img.Shape)
	}
	height, width := img.Shape[0], img.Shape[1]

	out := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Set(x, y, color.Gray16{Y: img.Data[y*width+x]})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, out, &jpeg.Options{Quality: 95})
	default:
		return png.Encode(file, out)
	}
}

// SaveIntermediary writes an intermediary pipeline stage (denoised
// input, raw attribute map rescaled to the image's dynamic range) to
// stageDir/<stage>.png, mirroring the teacher's
// saveIntermediaryResult, but only when enabled is true.
func SaveIntermediary(enabled bool, stageDir, stage string, data []float64, shape []int) error {
	if !enabled {
		return nil
	}
	if len(shape) != 2 {
		return maxtree.PreconditionViolationf("SaveIntermediary requires a 2-D shape, got %v", shape)
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	rescaled := make([]uint16, len(data))
	for i, v := range data {
		rescaled[i] = uint16((v - lo) / span * 65535.0)
	}

	img, err := maxtree.NewImage(rescaled, shape)
	if err != nil {
		return err
	}
	return Save(filepath.Join(stageDir, stage+".png"), img)
}
