package voxel

import "skelanalyze/internal/models"

// KernelSize is the number of slots in the 3x3x3 neighbourhood
const KernelSize = 27

// CenterSlot is the kernel slot of the voxel itself
const CenterSlot = 13

// Kernel maps each neighbourhood slot to its offset. Slots are ordered
// dz outer, dy middle, dx inner, each running -1, 0, 1.
var Kernel [KernelSize]models.Point3D

func init() {
	i := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				Kernel[i] = models.Point3D{X: dx, Y: dy, Z: dz}
				i++
			}
		}
	}
}
