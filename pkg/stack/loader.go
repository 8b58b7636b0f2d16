// Package stack reads a skeleton volume from a directory of 2D slice images.
package stack

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// Params controls how slices become voxels
type Params struct {
	// Dir is the directory containing one image per z slice
	Dir string

	// Extensions are the accepted file extensions (lower case, with dot)
	Extensions []string

	// Threshold is the gray level above which a pixel is foreground
	Threshold uint8

	// Calibration is attached to the loaded grid
	Calibration models.Calibration
}

// LoadSlices reads and orders the slice images in params.Dir.
// Files are sorted by the number embedded in their names so that
// slice_2 comes before slice_10.
func LoadSlices(params Params) ([]models.Slice, error) {
	entries, err := os.ReadDir(params.Dir)
	if err != nil {
		return nil, err
	}

	accepted := make(map[string]bool, len(params.Extensions))
	for _, ext := range params.Extensions {
		accepted[strings.ToLower(ext)] = true
	}

	var imageFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if accepted[ext] {
			imageFiles = append(imageFiles, e.Name())
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no slice images found in %s", params.Dir)
	}

	sort.SliceStable(imageFiles, func(i, j int) bool {
		numI := extractNumber(imageFiles[i])
		numJ := extractNumber(imageFiles[j])
		if numI != numJ {
			return numI < numJ
		}
		return imageFiles[i] < imageFiles[j]
	})

	slices := make([]models.Slice, 0, len(imageFiles))
	for i, filename := range imageFiles {
		img, err := loadImage(filepath.Join(params.Dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", filename, err)
		}
		slices = append(slices, models.Slice{Image: img, Index: i, Filename: filename})
	}

	return slices, nil
}

// Load reads params.Dir into a binary grid: 255 for foreground, 0 otherwise
func Load(params Params) (*voxel.Grid, error) {
	slices, err := LoadSlices(params)
	if err != nil {
		return nil, err
	}
	return FromSlices(slices, params.Threshold, params.Calibration)
}

// FromSlices stacks equally sized slices into a binary grid
func FromSlices(slices []models.Slice, threshold uint8, cal models.Calibration) (*voxel.Grid, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices")
	}

	bounds := slices[0].Image.Bounds()
	grid, err := voxel.NewGrid(bounds.Dx(), bounds.Dy(), len(slices), cal)
	if err != nil {
		return nil, err
	}

	for _, s := range slices {
		b := s.Image.Bounds()
		if b.Dx() != grid.Width || b.Dy() != grid.Height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d",
				s.Filename, b.Dx(), b.Dy(), grid.Width, grid.Height)
		}
	}

	// Binarize slices in parallel, each core owning a run of planes
	var wg sync.WaitGroup
	numCores := max(1, min(runtime.NumCPU(), len(slices)))
	slicesPerCore := (len(slices) + numCores - 1) / numCores

	for c := 0; c < numCores; c++ {
		wg.Add(1)

		go func(coreID int) {
			defer wg.Done()

			startSlice := coreID * slicesPerCore
			endSlice := min(startSlice+slicesPerCore, len(slices))
			for z := startSlice; z < endSlice; z++ {
				img := slices[z].Image
				b := img.Bounds()
				for y := 0; y < grid.Height; y++ {
					for x := 0; x < grid.Width; x++ {
						gray := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
						if gray.Y > threshold {
							grid.Set(models.Point3D{X: x, Y: y, Z: z}, 255)
						}
					}
				}
			}
		}(c)
	}
	wg.Wait()

	return grid, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}

	if digits.Len() > 0 {
		if num, err := strconv.Atoi(digits.String()); err == nil {
			return num
		}
	}
	return 0
}

// loadImage loads an image from a file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}
