package skeleton

import (
	"log/slog"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// PruneEndBranches repeatedly erodes end points of the tagged skeleton until
// at most one end point remains. An end point with exactly one live
// neighbour is zeroed and moves onto that neighbour; any other end point is
// dropped. The tagged grid is modified in place and the surviving end
// points are returned.
//
// When an end point is dropped, the one after it is carried over to the
// next pass without being examined. Residual end points depend on this
// ordering.
func PruneEndBranches(tagged *voxel.Grid, endPoints []models.Point3D, logger *slog.Logger) []models.Point3D {
	if logger == nil {
		logger = discardLogger()
	}
	logger.Debug("started pruning end branches", "endPoints", len(endPoints))

	current := make([]models.Point3D, len(endPoints))
	copy(current, endPoints)
	for len(current) > 1 {
		next := make([]models.Point3D, 0, len(current))
		for i := 0; i < len(current); i++ {
			p := current[i]
			if liveNeighbors(tagged, p) == 1 {
				tagged.Set(p, 0)
				moved := relocate(tagged, p)
				logger.Debug("moved end point", "from", p.String(), "to", moved.String())
				next = append(next, moved)
				continue
			}

			logger.Debug("removed end point", "at", p.String())
			if i+1 < len(current) {
				next = append(next, current[i+1])
				i++
			}
		}
		current = next
		logger.Debug("pruning pass done", "remaining", len(current))
	}

	return current
}

// liveNeighbors counts the nonzero voxels of the 3x3x3 cube around p less
// one for p itself. The centre is assumed set: an end point sitting on a
// voxel already zeroed in this pass reads one neighbour short.
func liveNeighbors(tagged *voxel.Grid, p models.Point3D) int {
	n := 0
	for _, v := range tagged.Neighborhood(p) {
		if v != 0 {
			n++
		}
	}
	return n - 1
}

// relocate returns the position of the single live neighbour of p
func relocate(tagged *voxel.Grid, p models.Point3D) models.Point3D {
	hood := tagged.Neighborhood(p)
	for slot, v := range hood {
		if v != 0 {
			return p.Add(voxel.Kernel[slot])
		}
	}
	return p
}
