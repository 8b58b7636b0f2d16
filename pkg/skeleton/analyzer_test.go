package skeleton

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

func process(t *testing.T, g *voxel.Grid, params *Params) *Result {
	t.Helper()
	res, err := NewAnalyzer(params).Process(context.Background(), g)
	require.NoError(t, err)
	return res
}

func TestProcessStraightLine(t *testing.T) {
	cal := models.Calibration{Width: 2, Height: 3, Depth: 4}
	g := newSkeleton(t, 7, 3, 3, cal, run(pt(1, 1, 1), pt(1, 0, 0), 5))

	res := process(t, g, nil)
	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]

	assert.Len(t, tree.EndPoints, 2)
	assert.Empty(t, tree.JunctionVoxels)
	assert.Zero(t, tree.JunctionCount())
	assert.Equal(t, 1, tree.BranchCount())
	// end to end: four steps of 2 along x
	assert.InDelta(t, 8.0, tree.MaximumBranchLength(), 1e-9)
	assert.InDelta(t, 8.0, tree.AverageBranchLength(), 1e-9)
	// N-1 steps cross the N-2 interior voxels
	assert.Equal(t, 3, tree.Slabs)

	rows := res.Table()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasLongestBranch)
	assert.Equal(t, [3]float64{2, 3, 4}, rows[0].LongestBranchInitial)
	assert.Equal(t, [3]float64{10, 3, 4}, rows[0].LongestBranchFinal)
	assert.InDelta(t, 8.0, rows[0].LongestBranchDistance, 1e-9)
}

func TestProcessDiagonalLineUsesAnisotropicSpacing(t *testing.T) {
	cal := models.Calibration{Width: 1, Height: 2, Depth: 3}
	g := newSkeleton(t, 4, 4, 4, cal, run(pt(0, 0, 0), pt(1, 1, 1), 4))

	res := process(t, g, nil)
	require.Len(t, res.Trees, 1)
	assert.InDelta(t, 3*math.Sqrt(1+4+9), res.Trees[0].MaximumBranchLength(), 1e-9)
}

func TestProcessY(t *testing.T) {
	res := process(t, ySkeleton(t), nil)
	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]

	assert.Len(t, tree.EndPoints, 3)
	assert.Len(t, tree.JunctionVoxels, 1)
	assert.Equal(t, 1, tree.JunctionCount())
	assert.Equal(t, 3, tree.BranchCount())
	assert.Equal(t, 1, tree.TriplePoints)
	assert.Equal(t, 9, tree.Slabs)

	// The vertical arm reaches the junction first; the diagonal arms stop at
	// their last slab because the junction is already visited.
	lengths := []float64{4, 3 * math.Sqrt2, 3 * math.Sqrt2}
	for i, b := range tree.Branches {
		assert.InDelta(t, lengths[i], b.Length, 1e-9, "branch %d", i)
	}

	// ties keep the first branch that reached the maximum
	longest, ok := tree.LongestBranch()
	require.True(t, ok)
	assert.Equal(t, pt(1, 9, 0), longest.Start)
	assert.Equal(t, pt(4, 6, 0), longest.End)
	assert.InDelta(t, (4+6*math.Sqrt2)/3, tree.AverageBranchLength(), 1e-9)
	assert.InDelta(t, 4+6*math.Sqrt2, res.TotalBranchLength(), 1e-9)
}

func TestProcessX(t *testing.T) {
	res := process(t, xSkeleton(t), nil)
	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]

	assert.Equal(t, 4, tree.BranchCount())
	assert.Equal(t, 1, tree.JunctionCount())
	// four slab neighbours: not a triple point
	assert.Zero(t, tree.TriplePoints)
	assert.InDelta(t, 3*math.Sqrt2, tree.MaximumBranchLength(), 1e-9)
}

func TestProcessBranchFromJunction(t *testing.T) {
	res := process(t, hSkeleton(t), nil)
	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]

	assert.Equal(t, 5, tree.BranchCount())
	assert.Equal(t, 2, tree.JunctionCount())
	assert.Equal(t, 2, tree.TriplePoints)
	assert.Equal(t, 7, tree.Slabs)
	assert.Equal(t, res.TotalSlabs, tree.Slabs)

	// the bridge is only reachable from a junction; the hop off the
	// junction counts towards its length
	bridge := tree.Branches[4]
	assert.Equal(t, pt(3, 5, 0), bridge.Start)
	assert.Equal(t, pt(6, 5, 0), bridge.End)
	assert.InDelta(t, 3.0, bridge.Length, 1e-9)

	longest, ok := tree.LongestBranch()
	require.True(t, ok)
	assert.Equal(t, bridge, longest)
}

func TestProcessTwoSegments(t *testing.T) {
	g := newSkeleton(t, 10, 5, 1, models.Isotropic(0.5),
		run(pt(0, 0, 0), pt(1, 0, 0), 4),
		run(pt(2, 3, 0), pt(1, 0, 0), 6),
	)
	res := process(t, g, nil)
	require.Len(t, res.Trees, 2)

	for i, want := range []float64{1.5, 2.5} {
		tree := res.Trees[i]
		assert.Equal(t, i+1, tree.Label)
		assert.Len(t, tree.EndPoints, 2)
		assert.Equal(t, 1, tree.BranchCount())
		assert.InDelta(t, want, tree.MaximumBranchLength(), 1e-9)
	}
	assert.Equal(t, 4, res.TotalEndPoints)
	assert.InDelta(t, 4.0, res.TotalBranchLength(), 1e-9)
	assert.Empty(t, res.DegenerateTrees())
}

func TestProcessIsolatedVoxelIsDegenerate(t *testing.T) {
	g := newSkeleton(t, 3, 3, 3, models.Isotropic(1), []models.Point3D{pt(1, 1, 1)})
	res := process(t, g, nil)
	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]

	assert.True(t, tree.Degenerate())
	assert.Zero(t, tree.BranchCount())
	assert.True(t, math.IsNaN(tree.AverageBranchLength()), "average must be NaN, got %v", tree.AverageBranchLength())
	assert.Zero(t, tree.MaximumBranchLength())
	assert.Equal(t, []int{1}, res.DegenerateTrees())

	rows := res.Table()
	assert.False(t, rows[0].HasLongestBranch)
	assert.False(t, Defined(rows[0].AverageBranchLength))
}

func TestProcessCapacityExceeded(t *testing.T) {
	g := isolatedVoxels(t, MaxTrees+1)

	res, err := NewAnalyzer(nil).Process(context.Background(), g)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

func TestProcessEmptyGrid(t *testing.T) {
	g, err := voxel.NewGrid(4, 4, 4, models.Isotropic(1))
	require.NoError(t, err)

	res := process(t, g, nil)
	assert.Empty(t, res.Trees)
	assert.Empty(t, res.Table())
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	g := ySkeleton(t)
	before := g.Clone()

	process(t, g, &Params{PruneEndBranches: true})

	assert.Equal(t, before.Data, g.Data)
}

func TestProcessWithPruning(t *testing.T) {
	g := newSkeleton(t, 5, 1, 1, models.Isotropic(1), run(pt(0, 0, 0), pt(1, 0, 0), 5))

	res := process(t, g, &Params{PruneEndBranches: true})

	assert.Equal(t, 1, res.TotalEndPoints)
	require.Len(t, res.Trees, 1)
	assert.Equal(t, []models.Point3D{pt(2, 0, 0)}, res.Trees[0].EndPoints)
	assert.True(t, res.Trees[0].Degenerate())
}

func TestProcessRunsAreIndependent(t *testing.T) {
	a := NewAnalyzer(nil)
	first, err := a.Process(context.Background(), ySkeleton(t))
	require.NoError(t, err)
	second, err := a.Process(context.Background(), ySkeleton(t))
	require.NoError(t, err)

	assert.Equal(t, first.Table(), second.Table())
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(nil).Process(ctx, ySkeleton(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessRejectsBadCalibration(t *testing.T) {
	g := ySkeleton(t)
	g.Calibration.Depth = 0

	_, err := NewAnalyzer(nil).Process(context.Background(), g)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCapacityExceeded))
}

func TestProcessLogsPruning(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	g := newSkeleton(t, 5, 1, 1, models.Isotropic(1), run(pt(0, 0, 0), pt(1, 0, 0), 5))

	process(t, g, &Params{PruneEndBranches: true, Logger: logger})

	out := buf.String()
	assert.True(t, strings.Contains(out, "moved end point"), out)
	assert.True(t, strings.Contains(out, "removed end point"), out)
}
