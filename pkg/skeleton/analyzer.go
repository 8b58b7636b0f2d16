package skeleton

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"skelanalyze/pkg/voxel"
)

// Params holds the analysis parameters
type Params struct {
	// PruneEndBranches enables iterative end-point erosion before trees are
	// labeled. The erosion walks every end branch back to its junction.
	PruneEndBranches bool

	// MaxTrees caps the number of trees (at most 255, the default)
	MaxTrees int

	// Logger receives progress messages. Nil discards them.
	Logger *slog.Logger
}

// Analyzer runs the skeleton analysis pipeline:
// 1. Classify voxels as end point, junction or slab
// 2. Optionally prune end branches
// 3. Label trees from end points
// 4. Trace branches of every tree
// 5. Group junction voxels and count triple points
//
// An Analyzer owns its traversal state and must not be shared between
// concurrent runs.
type Analyzer struct {
	params  *Params
	logger  *slog.Logger
	visited *voxel.Visited
}

// NewAnalyzer creates an analyzer with the provided parameters
func NewAnalyzer(params *Params) *Analyzer {
	if params == nil {
		params = &Params{}
	}
	logger := params.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Analyzer{params: params, logger: logger}
}

// Process analyzes a thinned skeleton. The input grid is not modified;
// any nonzero voxel is foreground.
func (a *Analyzer) Process(ctx context.Context, skeleton *voxel.Grid) (*Result, error) {
	if skeleton == nil {
		return nil, fmt.Errorf("nil skeleton")
	}
	if err := skeleton.Calibration.Validate(); err != nil {
		return nil, err
	}

	// Fresh traversal state for every run
	a.visited = voxel.NewVisited(skeleton)

	// Step 1: tag voxels
	a.logger.Info("tagging skeleton", "width", skeleton.Width, "height", skeleton.Height, "depth", skeleton.Depth)
	c := Classify(skeleton)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: prune
	endPoints := c.EndPoints
	if a.params.PruneEndBranches {
		a.logger.Info("pruning end branches", "endPoints", len(endPoints))
		endPoints = PruneEndBranches(c.Tagged, endPoints, a.logger)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Tagged:              c.Tagged,
		TotalEndPoints:      len(endPoints),
		TotalJunctionVoxels: len(c.JunctionVoxels),
		TotalSlabs:          c.Slabs,
		Calibration:         skeleton.Calibration,
	}

	// Step 3: label trees
	a.logger.Info("marking trees")
	treeMap, numTrees, err := LabelTrees(c.Tagged, endPoints, a.visited, a.params.MaxTrees)
	if err != nil {
		return nil, fmt.Errorf("failed to label trees: %w", err)
	}
	result.TreeMap = treeMap

	result.Trees = make([]*Tree, numTrees)
	for i := range result.Trees {
		result.Trees[i] = &Tree{Label: i + 1}
	}
	splitByTree(treeMap, result.Trees, endPoints, c.JunctionVoxels)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 4: measure branches
	a.logger.Info("measuring trees", "trees", numTrees)
	tr := &tracer{tagged: c.Tagged, visited: a.visited, cal: skeleton.Calibration}
	for _, t := range result.Trees {
		tr.traceTree(t)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 5: junctions and triple points
	for _, t := range result.Trees {
		t.Junctions = GroupJunctions(t.JunctionVoxels)
		t.TriplePoints = CountTriplePoints(c.Tagged, t.Junctions)
		a.logger.Debug("measured tree", "tree", t.Label, "branches", t.BranchCount(),
			"totalLength", t.TotalBranchLength())
	}

	return result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
