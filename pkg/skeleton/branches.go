package skeleton

import (
	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// tracer walks branches of the tagged skeleton, sharing one set of visit
// flags across all trees of a run
type tracer struct {
	tagged  *voxel.Grid
	visited *voxel.Visited
	cal     models.Calibration
}

// walk is the outcome of following one branch
type walk struct {
	end    models.Point3D
	length float64
	slabs  int
}

// visitBranch marks start and follows unvisited slab voxels until it meets
// an end point or junction (which is also marked and measured) or runs out
// of neighbours. It reports false when no step could be taken.
func (tr *tracer) visitBranch(start models.Point3D) (walk, bool) {
	tr.visited.Mark(start)

	next, ok := tr.visited.NextUnvisited(tr.tagged, start)
	if !ok {
		return walk{}, false
	}

	w := walk{}
	previous := start
	for ok && ClassOf(tr.tagged.At(next)) == Slab {
		w.slabs++
		w.length += tr.cal.Distance(previous, next)
		tr.visited.Mark(next)

		previous = next
		next, ok = tr.visited.NextUnvisited(tr.tagged, previous)
	}

	w.end = previous
	if ok {
		w.length += tr.cal.Distance(previous, next)
		tr.visited.Mark(next)
		w.end = next
	}

	return w, true
}

// traceTree measures every branch of t, starting from its end points and
// then from each junction voxel until no unvisited neighbour remains.
func (tr *tracer) traceTree(t *Tree) {
	for _, p := range t.EndPoints {
		w, ok := tr.visitBranch(p)
		if !ok {
			continue
		}
		t.Slabs += w.slabs
		t.Branches = append(t.Branches, Branch{Start: p, End: w.end, Length: w.length})
	}

	for _, j := range t.JunctionVoxels {
		tr.visited.Mark(j)

		next, ok := tr.visited.NextUnvisited(tr.tagged, j)
		for ok {
			hop := tr.cal.Distance(j, next)
			if ClassOf(tr.tagged.At(next)) == Slab {
				t.Slabs++
			}
			if w, walked := tr.visitBranch(next); walked {
				t.Slabs += w.slabs
				t.Branches = append(t.Branches, Branch{Start: j, End: w.end, Length: hop + w.length})
			}
			next, ok = tr.visited.NextUnvisited(tr.tagged, j)
		}
	}
}
