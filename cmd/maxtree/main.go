// Command maxtree builds and filters the max-tree of one or more
// grayscale images.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"maxtree/internal/models"
	"maxtree/pkg/attribute"
	"maxtree/pkg/config"
	"maxtree/pkg/denoise"
	"maxtree/pkg/imageio"
	"maxtree/pkg/maxtree"
	"maxtree/pkg/metrics"
	"maxtree/pkg/sortindex"
)

func main() {
	inputPath := flag.String("input", "", "Input grayscale image, or a directory of images")
	outputDir := flag.String("output", "filtered", "Directory to write filtered output images to")
	configPath := flag.String("config", "", "Path to a YAML config file (defaults are used if omitted)")
	writeDefaultConfig := flag.String("write-default-config", "", "Write a default config to this path and exit")
	intermediaryDir := flag.String("intermediary-dir", "intermediary_results", "Directory to save intermediary stage images")
	flag.Parse()

	if *writeDefaultConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeDefaultConfig); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default config written to: %s\n", *writeDefaultConfig)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("MAX-TREE CONSTRUCTION AND FILTERING ENGINE")
	fmt.Println("================================")

	jobs, err := discoverJobs(*inputPath, *outputDir)
	if err != nil {
		log.Fatalf("Failed to discover input images: %v", err)
	}
	batch := models.Batch{Jobs: jobs, NumCores: cfg.Processing.NumCores}

	fmt.Printf("Processing %d image(s) across up to %d cores...\n", len(batch.Jobs), batch.NumCores)
	startTime := time.Now()
	results := runBatch(batch, cfg, *intermediaryDir)
	processingTime := time.Since(startTime)

	fmt.Printf("\nCompleted in %.3f seconds\n\n", processingTime.Seconds())
	fmt.Println("Results:")
	fmt.Println("========")
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s: FAILED: %v\n", r.Job.Path, r.Err)
			continue
		}
		fmt.Printf("%s -> %s  RMSE=%.6f  retainedArea=%.2f%%\n",
			r.Job.Path, r.Job.OutputPath, r.RMSE, r.Retained*100)
	}
}

// discoverJobs expands input into one ImageJob per file: input itself if
// it names a file, or every regular file directly inside it if it names
// a directory.
func discoverJobs(input, outputDir string) ([]models.ImageJob, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("reading input path: %w", err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("reading input directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				paths = append(paths, filepath.Join(input, e.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{input}
	}

	jobs := make([]models.ImageJob, len(paths))
	for i, p := range paths {
		jobs[i] = models.ImageJob{
			Path:       p,
			OutputPath: filepath.Join(outputDir, filepath.Base(p)),
			Index:      i,
		}
	}
	return jobs, nil
}

// runBatch processes every job in the batch, spreading work across up
// to batch.NumCores goroutines. Each job runs the engine synchronously
// on its own goroutine with no state shared between jobs, preserving
// the engine's single-threaded per-invocation contract.
func runBatch(batch models.Batch, cfg *config.Config, intermediaryDir string) []models.JobResult {
	results := make([]models.JobResult, len(batch.Jobs))

	numCores := batch.NumCores
	if numCores < 1 {
		numCores = 1
	}
	sem := make(chan struct{}, numCores)
	var wg sync.WaitGroup

	for i, job := range batch.Jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, job models.ImageJob) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = runJob(job, cfg, intermediaryDir)
		}(i, job)
	}
	wg.Wait()
	return results
}

func runJob(job models.ImageJob, cfg *config.Config, intermediaryDir string) models.JobResult {
	result := models.JobResult{Job: job}

	source, err := imageio.Load(job.Path)
	if err != nil {
		result.Err = fmt.Errorf("loading %s: %w", job.Path, err)
		return result
	}

	working := source
	if cfg.Denoise.Enabled {
		smoothed := denoise.SmoothGaussian2D(toFloat64(source.Data), source.Shape[1], source.Shape[0], cfg.Denoise.Sigma)
		imageio.SaveIntermediary(cfg.Output.SaveIntermediaryResults, filepath.Join(intermediaryDir, "denoised"), filepath.Base(job.Path), smoothed, source.Shape)
		working, err = maxtree.NewImage(toUint16(smoothed), source.Shape)
		if err != nil {
			result.Err = fmt.Errorf("rebuilding denoised image: %w", err)
			return result
		}
	}

	mask, connectivity := buildMaskAndConnectivity(working.Shape, cfg.Processing.Connectivity)
	sortedIndices := sortindex.Ascending(working)
	parent := make([]int64, working.Len())
	if err := maxtree.BuildMaxTree(working, mask, connectivity, sortedIndices, parent); err != nil {
		result.Err = fmt.Errorf("building max-tree: %w", err)
		return result
	}

	attr, cutFirst, err := computeAttribute(cfg, working, parent, sortedIndices)
	if err != nil {
		result.Err = err
		return result
	}
	imageio.SaveIntermediary(cfg.Output.SaveIntermediaryResults, filepath.Join(intermediaryDir, "attribute"), filepath.Base(job.Path), attr, working.Shape)

	output := make([]uint16, working.Len())
	if cutFirst {
		err = maxtree.CutFirstFilter(working, parent, sortedIndices, attr, cfg.Processing.Threshold, output)
	} else {
		err = maxtree.DirectFilter(working, parent, sortedIndices, attr, cfg.Processing.Threshold, output)
	}
	if err != nil {
		result.Err = fmt.Errorf("filtering: %w", err)
		return result
	}

	filtered, err := maxtree.NewImage(output, working.Shape)
	if err != nil {
		result.Err = err
		return result
	}
	if err := imageio.Save(job.OutputPath, filtered); err != nil {
		result.Err = fmt.Errorf("saving %s: %w", job.OutputPath, err)
		return result
	}

	m, err := metrics.Compute(source, filtered)
	if err != nil {
		result.Err = err
		return result
	}
	result.RMSE = m.RMSE
	result.Retained = m.RetainedAreaFraction
	return result
}

func computeAttribute(cfg *config.Config, img maxtree.Image[uint16], parent, sortedIndices []int64) ([]float64, bool, error) {
	switch cfg.Processing.Attribute {
	case "boundingBoxDiagonal":
		return attribute.BoundingBoxDiagonal(img.Shape, parent, sortedIndices), cfg.Processing.CutFirst, nil
	case "elongation":
		return attribute.Elongation(img, parent, sortedIndices), true, nil
	case "", "area":
		area, err := maxtree.ComputeArea(img, parent, sortedIndices)
		return area, cfg.Processing.CutFirst, err
	default:
		return nil, false, maxtree.PreconditionViolationf("unknown attribute %q", cfg.Processing.Attribute)
	}
}

// buildMaskAndConnectivity builds a 4- or 8-connected 2-D neighborhood
// table plus a mask that marks every non-border pixel true, so the
// engine's border-checking path is only exercised at the image edge.
func buildMaskAndConnectivity(shape []int, connectivity int) ([]bool, []int) {
	height, width := shape[0], shape[1]
	mask := make([]bool, height*width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mask[y*width+x] = y > 0 && y < height-1 && x > 0 && x < width-1
		}
	}

	offsets := []int{-width, width, -1, 1}
	if connectivity == 8 {
		offsets = append(offsets, -width-1, -width+1, width-1, width+1)
	}
	return mask, offsets
}

func toFloat64(data []uint16) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

func toUint16(data []float64) []uint16 {
	out := make([]uint16, len(data))
	for i, v := range data {
		if v < 0 {
			v = 0
		}
		if v > 65535 {
			v = 65535
		}
		out[i] = uint16(v)
	}
	return out
}
