package skeleton

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"skelanalyze/internal/models"
)

// Branch is one traced segment between end points and/or junctions
type Branch struct {
	// Start is the voxel the walk started from
	Start models.Point3D

	// End is the voxel the walk stopped on
	End models.Point3D

	// Length is the calibrated length along the walked voxels
	Length float64
}

// JunctionGroup is a set of 26-connected junction voxels that form one
// logical junction
type JunctionGroup []models.Point3D

// Tree is one connected component of the skeleton
type Tree struct {
	// Label is the value painted for this tree in the tree map (1..255)
	Label int

	EndPoints      []models.Point3D
	JunctionVoxels []models.Point3D
	Junctions      []JunctionGroup

	// Branches in the order they were traced
	Branches []Branch

	// Slabs counts slab voxels crossed while tracing
	Slabs int

	TriplePoints int
}

// BranchCount returns the number of traced branches
func (t *Tree) BranchCount() int {
	return len(t.Branches)
}

// JunctionCount returns the number of junction groups
func (t *Tree) JunctionCount() int {
	return len(t.Junctions)
}

// Degenerate reports whether no branch could be traced in the tree,
// e.g. an isolated voxel
func (t *Tree) Degenerate() bool {
	return len(t.Branches) == 0
}

func (t *Tree) lengths() []float64 {
	l := make([]float64, len(t.Branches))
	for i, b := range t.Branches {
		l[i] = b.Length
	}
	return l
}

// TotalBranchLength returns the summed length of all branches
func (t *Tree) TotalBranchLength() float64 {
	return floats.Sum(t.lengths())
}

// AverageBranchLength returns the mean branch length, or NaN for a
// degenerate tree
func (t *Tree) AverageBranchLength() float64 {
	if t.Degenerate() {
		return math.NaN()
	}
	return stat.Mean(t.lengths(), nil)
}

// BranchLengthStdDev returns the sample standard deviation of branch
// lengths, or NaN with fewer than two branches
func (t *Tree) BranchLengthStdDev() float64 {
	if len(t.Branches) < 2 {
		return math.NaN()
	}
	return stat.StdDev(t.lengths(), nil)
}

// LongestBranch returns the first branch with the maximum length
func (t *Tree) LongestBranch() (Branch, bool) {
	if t.Degenerate() {
		return Branch{}, false
	}
	return t.Branches[floats.MaxIdx(t.lengths())], true
}

// MaximumBranchLength returns the longest branch length, 0 when degenerate
func (t *Tree) MaximumBranchLength() float64 {
	b, ok := t.LongestBranch()
	if !ok {
		return 0
	}
	return b.Length
}
