// Package visualization exports label volumes (tagged skeletons, tree maps)
// as sequences of 2D slice images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// Viewer extracts slices from a label volume
type Viewer struct {
	grid *voxel.Grid
}

// NewViewer creates a viewer over grid
func NewViewer(grid *voxel.Grid) *Viewer {
	return &Viewer{grid: grid}
}

// ExtractSlice extracts a 2D slice of raw labels from the volume along the
// specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	g := v.grid
	var img *image.Gray

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= g.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, g.Width)
		}
		img = image.NewGray(image.Rect(0, 0, g.Depth, g.Height))
		for y := 0; y < g.Height; y++ {
			for z := 0; z < g.Depth; z++ {
				img.SetGray(z, y, color.Gray{Y: g.At(models.Point3D{X: position, Y: y, Z: z})})
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= g.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, g.Height)
		}
		img = image.NewGray(image.Rect(0, 0, g.Width, g.Depth))
		for z := 0; z < g.Depth; z++ {
			for x := 0; x < g.Width; x++ {
				img.SetGray(x, z, color.Gray{Y: g.At(models.Point3D{X: x, Y: position, Z: z})})
			}
		}

	case "z", "Z":
		// XY plane
		if position >= g.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, g.Depth)
		}
		img = image.NewGray(image.Rect(0, 0, g.Width, g.Height))
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: g.At(models.Point3D{X: x, Y: y, Z: position})})
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted slice as a PNG image. PNG keeps label
// values exact.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.grid.Width
	case "y", "Y":
		maxPos = v.grid.Height
	case "z", "Z":
		maxPos = v.grid.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return fmt.Errorf("failed to save %s: %w", filename, err)
		}
	}

	return nil
}
