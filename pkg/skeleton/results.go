package skeleton

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// Result holds everything produced by one analysis run
type Result struct {
	// Tagged is the classified (and possibly pruned) skeleton
	Tagged *voxel.Grid

	// TreeMap holds the tree label (1..N) of every labeled voxel
	TreeMap *voxel.Grid

	// Trees are ordered by label
	Trees []*Tree

	// Totals over the whole volume, taken after classification
	TotalEndPoints      int
	TotalJunctionVoxels int
	TotalSlabs          int

	Calibration models.Calibration
}

// TreeRow is one line of the results table
type TreeRow struct {
	Skeleton            int
	Branches            int
	Junctions           int
	EndPointVoxels      int
	JunctionVoxels      int
	SlabVoxels          int
	AverageBranchLength float64
	TriplePoints        int
	MaximumBranchLength float64

	// BranchLengthStdDev is NaN with fewer than two branches
	BranchLengthStdDev float64

	// Physical coordinates of the longest branch. HasLongestBranch is false
	// for a degenerate tree.
	HasLongestBranch      bool
	LongestBranchInitial  [3]float64
	LongestBranchFinal    [3]float64
	LongestBranchDistance float64
}

// Table reads the per-tree measurements into rows
func (r *Result) Table() []TreeRow {
	rows := make([]TreeRow, 0, len(r.Trees))
	for _, t := range r.Trees {
		row := TreeRow{
			Skeleton:            t.Label,
			Branches:            t.BranchCount(),
			Junctions:           t.JunctionCount(),
			EndPointVoxels:      len(t.EndPoints),
			JunctionVoxels:      len(t.JunctionVoxels),
			SlabVoxels:          t.Slabs,
			AverageBranchLength: t.AverageBranchLength(),
			TriplePoints:        t.TriplePoints,
			MaximumBranchLength: t.MaximumBranchLength(),
			BranchLengthStdDev:  t.BranchLengthStdDev(),
		}
		if b, ok := t.LongestBranch(); ok {
			row.HasLongestBranch = true
			row.LongestBranchInitial = r.Calibration.Physical(b.Start)
			row.LongestBranchFinal = r.Calibration.Physical(b.End)
			row.LongestBranchDistance = r.Calibration.Distance(b.Start, b.End)
		}
		rows = append(rows, row)
	}
	return rows
}

// TotalBranchLength sums the branch lengths of every tree
func (r *Result) TotalBranchLength() float64 {
	totals := make([]float64, len(r.Trees))
	for i, t := range r.Trees {
		totals[i] = t.TotalBranchLength()
	}
	return floats.Sum(totals)
}

// DegenerateTrees returns the labels of trees without any branch
func (r *Result) DegenerateTrees() []int {
	var labels []int
	for _, t := range r.Trees {
		if t.Degenerate() {
			labels = append(labels, t.Label)
		}
	}
	return labels
}

// Defined reports whether an average branch length is a real number
func Defined(v float64) bool {
	return !math.IsNaN(v)
}
