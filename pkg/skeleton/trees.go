package skeleton

import (
	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// LabelTrees colors every tree reachable from an end point with its own
// label (1..maxTrees) in a new grid and returns it with the number of
// trees found. Flood-fills follow nonzero voxels of tagged and use visited
// as scratch state; visited is cleared before returning.
//
// Components without an end point (closed loops) are not labeled.
func LabelTrees(tagged *voxel.Grid, endPoints []models.Point3D, visited *voxel.Visited, maxTrees int) (*voxel.Grid, int, error) {
	if maxTrees <= 0 || maxTrees > MaxTrees {
		maxTrees = MaxTrees
	}

	treeMap := voxel.NewGridLike(tagged)
	numTrees := 0

	for _, p := range endPoints {
		if tagged.At(p) == 0 || visited.Is(p) {
			continue
		}
		if numTrees == maxTrees {
			visited.Reset()
			return nil, 0, &CapacityError{Limit: maxTrees}
		}
		numTrees++
		floodTree(tagged, treeMap, visited, p, uint8(numTrees))
	}

	visited.Reset()
	return treeMap, numTrees, nil
}

// floodTree walks from seed along unvisited neighbours, painting label into
// treeMap. Junctions are queued and revisited until every branch leaving
// them has been walked. Returns the number of voxels painted.
func floodTree(tagged, treeMap *voxel.Grid, visited *voxel.Visited, seed models.Point3D, label uint8) int {
	treeMap.Set(seed, label)
	visited.Mark(seed)
	painted := 1

	toRevisit := []models.Point3D{seed}
	next, ok := visited.NextUnvisited(tagged, seed)

	for ok || len(toRevisit) > 0 {
		if ok {
			treeMap.Set(next, label)
			visited.Mark(next)
			painted++

			if ClassOf(tagged.At(next)) == Junction {
				toRevisit = append(toRevisit, next)
			}
			next, ok = visited.NextUnvisited(tagged, next)
			continue
		}

		next, ok = visited.NextUnvisited(tagged, toRevisit[0])
		if !ok {
			toRevisit = toRevisit[1:]
		}
	}

	return painted
}

// splitByTree distributes end points and junction voxels to the trees that
// own them. Points that are not part of any labeled tree are skipped.
func splitByTree(treeMap *voxel.Grid, trees []*Tree, endPoints, junctionVoxels []models.Point3D) {
	for _, p := range endPoints {
		if label := treeMap.At(p); label != 0 {
			t := trees[label-1]
			t.EndPoints = append(t.EndPoints, p)
		}
	}
	for _, p := range junctionVoxels {
		if label := treeMap.At(p); label != 0 {
			t := trees[label-1]
			t.JunctionVoxels = append(t.JunctionVoxels, p)
		}
	}
}
