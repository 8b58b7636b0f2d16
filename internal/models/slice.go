package models

import (
	"fmt"
	"image"
	"math"
)

// Slice represents a single binary slice of a skeleton stack with metadata
type Slice struct {
	// Image is the raster read from disk
	Image image.Image

	// Index is the position of this slice in the sequence
	Index int

	// Filename is the original filename of the slice
	Filename string
}

// Calibration holds the physical size of a voxel along each axis.
// Distances between voxels are weighted per axis, so anisotropic
// stacks (e.g. thick z sections) measure correctly.
type Calibration struct {
	// Width is the voxel size along x
	Width float64 `yaml:"voxelWidth" json:"voxelWidth"`

	// Height is the voxel size along y
	Height float64 `yaml:"voxelHeight" json:"voxelHeight"`

	// Depth is the voxel size along z
	Depth float64 `yaml:"voxelDepth" json:"voxelDepth"`
}

// Isotropic returns a calibration with the same spacing on every axis
func Isotropic(size float64) Calibration {
	return Calibration{Width: size, Height: size, Depth: size}
}

// Validate reports an error if any spacing is not a positive finite number
func (c Calibration) Validate() error {
	for _, v := range []float64{c.Width, c.Height, c.Depth} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid voxel spacing %gx%gx%g", c.Width, c.Height, c.Depth)
		}
	}
	return nil
}

// Distance returns the calibrated Euclidean distance between two voxels
func (c Calibration) Distance(a, b Point3D) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return math.Sqrt(dx*dx*c.Width*c.Width + dy*dy*c.Height*c.Height + dz*dz*c.Depth*c.Depth)
}

// Physical converts voxel coordinates into physical coordinates
func (c Calibration) Physical(p Point3D) [3]float64 {
	return [3]float64{
		float64(p.X) * c.Width,
		float64(p.Y) * c.Height,
		float64(p.Z) * c.Depth,
	}
}

// Point3D is an integer voxel coordinate
type Point3D struct {
	X, Y, Z int
}

// Add returns p translated by the offset d
func (p Point3D) Add(d Point3D) Point3D {
	return Point3D{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
}

// IsNeighbor reports whether two voxels touch in 26-connectivity.
// Adjacency is measured in index space, not calibrated units.
func (p Point3D) IsNeighbor(q Point3D) bool {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(float64(dx*dx+dy*dy+dz*dz)) <= math.Sqrt(3)
}

func (p Point3D) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
