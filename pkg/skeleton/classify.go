package skeleton

import (
	"runtime"
	"sync"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// Classification is the output of tagging a skeleton
type Classification struct {
	// Tagged holds TagEndPoint, TagJunction or TagSlab for every
	// foreground voxel and 0 elsewhere
	Tagged *voxel.Grid

	// EndPoints and JunctionVoxels are in scan order (z, y, x)
	EndPoints      []models.Point3D
	JunctionVoxels []models.Point3D

	// Slabs is the number of slab voxels
	Slabs int
}

// Classify tags every foreground voxel of skeleton from the number of its
// nonzero 26-neighbours. The input grid is not modified.
//
// Planes are split between cores; the per-core lists are joined in plane
// order so the output matches a sequential z, y, x scan.
func Classify(skeleton *voxel.Grid) *Classification {
	tagged := voxel.NewGridLike(skeleton)

	numCores := runtime.NumCPU()
	numCores = max(1, min(numCores, skeleton.Depth))
	planesPerCore := (skeleton.Depth + numCores - 1) / numCores
	parts := make([]Classification, numCores)

	var wg sync.WaitGroup
	for c := 0; c < numCores; c++ {
		wg.Add(1)

		go func(coreID int) {
			defer wg.Done()

			startPlane := coreID * planesPerCore
			endPlane := min(startPlane+planesPerCore, skeleton.Depth)
			part := &parts[coreID]

			for z := startPlane; z < endPlane; z++ {
				for y := 0; y < skeleton.Height; y++ {
					for x := 0; x < skeleton.Width; x++ {
						p := models.Point3D{X: x, Y: y, Z: z}
						if skeleton.At(p) == 0 {
							continue
						}
						class := classify(skeleton.CountNeighbors(p))
						tagged.Set(p, class.Tag())
						switch class {
						case EndPoint:
							part.EndPoints = append(part.EndPoints, p)
						case Junction:
							part.JunctionVoxels = append(part.JunctionVoxels, p)
						default:
							part.Slabs++
						}
					}
				}
			}
		}(c)
	}
	wg.Wait()

	c := &Classification{Tagged: tagged}
	for _, part := range parts {
		c.EndPoints = append(c.EndPoints, part.EndPoints...)
		c.JunctionVoxels = append(c.JunctionVoxels, part.JunctionVoxels...)
		c.Slabs += part.Slabs
	}
	return c
}
