package voxel

import "skelanalyze/internal/models"

// Visited is the traversal state of one pass over a grid. Voxels outside
// the grid always read as visited so walks never step off the volume.
type Visited struct {
	flags                []bool
	width, height, depth int
}

// NewVisited allocates cleared flags with the shape of g
func NewVisited(g *Grid) *Visited {
	return &Visited{
		flags:  make([]bool, len(g.Data)),
		width:  g.Width,
		height: g.Height,
		depth:  g.Depth,
	}
}

func (v *Visited) contains(p models.Point3D) bool {
	return p.X >= 0 && p.X < v.width &&
		p.Y >= 0 && p.Y < v.height &&
		p.Z >= 0 && p.Z < v.depth
}

// Is reports whether p has been visited
func (v *Visited) Is(p models.Point3D) bool {
	if !v.contains(p) {
		return true
	}
	return v.flags[p.Z*v.width*v.height+p.Y*v.width+p.X]
}

// Mark flags p as visited. Points outside the grid are ignored.
func (v *Visited) Mark(p models.Point3D) {
	if !v.contains(p) {
		return
	}
	v.flags[p.Z*v.width*v.height+p.Y*v.width+p.X] = true
}

// Reset clears every flag
func (v *Visited) Reset() {
	clear(v.flags)
}

// NextUnvisited returns the first neighbour of p, in kernel slot order,
// that is foreground in g and not yet visited.
func (v *Visited) NextUnvisited(g *Grid, p models.Point3D) (models.Point3D, bool) {
	for i, d := range Kernel {
		if i == CenterSlot {
			continue
		}
		n := p.Add(d)
		if g.At(n) != 0 && !v.Is(n) {
			return n, true
		}
	}
	return models.Point3D{}, false
}
