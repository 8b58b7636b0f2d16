// Package voxel provides the dense 3D label grid shared by every stage of
// the skeleton analysis, with bounds-safe access and the 26-neighbour kernel.
package voxel

import (
	"fmt"

	"skelanalyze/internal/models"
)

// Grid is a dense 3D volume of 8-bit labels stored as a 1D array in
// z*W*H + y*W + x order. Label 0 is background.
type Grid struct {
	// Data holds the labels, one byte per voxel
	Data []uint8

	// Width, Height, Depth are the dimensions in voxels
	Width, Height, Depth int

	// Calibration is the physical voxel spacing
	Calibration models.Calibration
}

// NewGrid allocates an empty grid
func NewGrid(width, height, depth int, cal models.Calibration) (*Grid, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%dx%d", width, height, depth)
	}
	return &Grid{
		Data:        make([]uint8, width*height*depth),
		Width:       width,
		Height:      height,
		Depth:       depth,
		Calibration: cal,
	}, nil
}

// NewGridLike allocates an empty grid with the same shape and calibration as g
func NewGridLike(g *Grid) *Grid {
	return &Grid{
		Data:        make([]uint8, len(g.Data)),
		Width:       g.Width,
		Height:      g.Height,
		Depth:       g.Depth,
		Calibration: g.Calibration,
	}
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := NewGridLike(g)
	copy(c.Data, g.Data)
	return c
}

// Contains reports whether p lies inside the grid
func (g *Grid) Contains(p models.Point3D) bool {
	return p.X >= 0 && p.X < g.Width &&
		p.Y >= 0 && p.Y < g.Height &&
		p.Z >= 0 && p.Z < g.Depth
}

func (g *Grid) index(p models.Point3D) int {
	return p.Z*g.Width*g.Height + p.Y*g.Width + p.X
}

// At returns the label at p, or 0 when p is outside the grid
func (g *Grid) At(p models.Point3D) uint8 {
	if !g.Contains(p) {
		return 0
	}
	return g.Data[g.index(p)]
}

// Set writes a label at p. Writes outside the grid are ignored.
func (g *Grid) Set(p models.Point3D, v uint8) {
	if !g.Contains(p) {
		return
	}
	g.Data[g.index(p)] = v
}

// Neighborhood returns the 27 labels of the 3x3x3 cube centred on p,
// in kernel slot order (slot 13 is p itself)
func (g *Grid) Neighborhood(p models.Point3D) [KernelSize]uint8 {
	var n [KernelSize]uint8
	for i, d := range Kernel {
		n[i] = g.At(p.Add(d))
	}
	return n
}

// CountNeighbors returns how many of the 26 neighbours of p are nonzero
func (g *Grid) CountNeighbors(p models.Point3D) int {
	count := 0
	for i, d := range Kernel {
		if i == CenterSlot {
			continue
		}
		if g.At(p.Add(d)) != 0 {
			count++
		}
	}
	return count
}

// CountNonZero returns the number of foreground voxels
func (g *Grid) CountNonZero() int {
	count := 0
	for _, v := range g.Data {
		if v != 0 {
			count++
		}
	}
	return count
}

// ForEach visits every voxel in scan order: z outer, y middle, x inner
func (g *Grid) ForEach(fn func(p models.Point3D, v uint8)) {
	i := 0
	for z := 0; z < g.Depth; z++ {
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				fn(models.Point3D{X: x, Y: y, Z: z}, g.Data[i])
				i++
			}
		}
	}
}
