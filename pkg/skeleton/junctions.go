package skeleton

import (
	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// GroupJunctions clusters junction voxels that touch in 26-connectivity.
// Each voxel joins the first group holding a neighbour of it, in group
// order, or starts a new group. Groups are never merged afterwards, so the
// result depends on the voxel order.
func GroupJunctions(junctionVoxels []models.Point3D) []JunctionGroup {
	var groups []JunctionGroup

	for _, p := range junctionVoxels {
		grouped := false
		for g := range groups {
			for _, q := range groups[g] {
				if p.IsNeighbor(q) {
					groups[g] = append(groups[g], p)
					grouped = true
					break
				}
			}
			if grouped {
				break
			}
		}
		if !grouped {
			groups = append(groups, JunctionGroup{p})
		}
	}

	return groups
}

// SlabNeighbors sums, over every voxel of the group, the number of its
// 26-neighbours tagged as slab. A slab touching several members of the
// group is counted once per member.
func SlabNeighbors(tagged *voxel.Grid, group JunctionGroup) int {
	n := 0
	for _, p := range group {
		for _, v := range tagged.Neighborhood(p) {
			if ClassOf(v) == Slab {
				n++
			}
		}
	}
	return n
}

// IsTriplePoint reports whether the group has exactly three slab neighbours
func IsTriplePoint(tagged *voxel.Grid, group JunctionGroup) bool {
	return SlabNeighbors(tagged, group) == 3
}

// CountTriplePoints returns how many of the groups are triple points
func CountTriplePoints(tagged *voxel.Grid, groups []JunctionGroup) int {
	count := 0
	for _, g := range groups {
		if IsTriplePoint(tagged, g) {
			count++
		}
	}
	return count
}
