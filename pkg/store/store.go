// Package store records analysis runs and their per-tree results in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"skelanalyze/pkg/skeleton"
)

// schema.sql creates the run and tree tables.
//
//go:embed schema.sql
var schemaSQL string

// ResultsDB wraps a SQLite database holding analysis results
type ResultsDB struct {
	*sql.DB
}

// Run is the stored summary of one analysis
type Run struct {
	ID                  string
	Source              string
	CreatedAt           int64
	Width               int
	Height              int
	Depth               int
	Pruned              bool
	TreeCount           int
	TotalEndPoints      int
	TotalJunctionVoxels int
	TotalSlabs          int
}

// Open opens (or creates) the database at path and applies the schema
func Open(path string) (*ResultsDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &ResultsDB{db}, nil
}

// RecordRun stores a result and its tree rows in one transaction and
// returns the new run ID
func (rdb *ResultsDB) RecordRun(ctx context.Context, source string, pruned bool, res *skeleton.Result) (string, error) {
	runID := uuid.NewString()

	tx, err := rdb.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, source, width, height, depth,
			voxel_width, voxel_height, voxel_depth, pruned, tree_count,
			total_end_points, total_junction_voxels, total_slabs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, source, res.Tagged.Width, res.Tagged.Height, res.Tagged.Depth,
		res.Calibration.Width, res.Calibration.Height, res.Calibration.Depth,
		pruned, len(res.Trees), res.TotalEndPoints, res.TotalJunctionVoxels, res.TotalSlabs)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, row := range res.Table() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO skeleton_trees (run_id, skeleton, branches, junctions,
				end_point_voxels, junction_voxels, slab_voxels,
				average_branch_length, triple_points, maximum_branch_length,
				branch_length_std_dev)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, row.Skeleton, row.Branches, row.Junctions, row.EndPointVoxels,
			row.JunctionVoxels, row.SlabVoxels, nullable(row.AverageBranchLength),
			row.TriplePoints, row.MaximumBranchLength, nullable(row.BranchLengthStdDev))
		if err != nil {
			return "", fmt.Errorf("failed to insert tree %d: %w", row.Skeleton, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns stored runs, newest first
func (rdb *ResultsDB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := rdb.QueryContext(ctx, `
		SELECT run_id, source, created_at, width, height, depth, pruned,
			tree_count, total_end_points, total_junction_voxels, total_slabs
		FROM analysis_runs
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt, &r.Width, &r.Height, &r.Depth,
			&r.Pruned, &r.TreeCount, &r.TotalEndPoints, &r.TotalJunctionVoxels, &r.TotalSlabs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TreeRows returns the stored rows of a run ordered by skeleton label.
// A missing average or standard deviation is returned as NaN.
func (rdb *ResultsDB) TreeRows(ctx context.Context, runID string) ([]skeleton.TreeRow, error) {
	rows, err := rdb.QueryContext(ctx, `
		SELECT skeleton, branches, junctions, end_point_voxels, junction_voxels,
			slab_voxels, average_branch_length, triple_points, maximum_branch_length,
			branch_length_std_dev
		FROM skeleton_trees
		WHERE run_id = ?
		ORDER BY skeleton
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trees: %w", err)
	}
	defer rows.Close()

	var out []skeleton.TreeRow
	for rows.Next() {
		var r skeleton.TreeRow
		var avg, sd sql.NullFloat64
		if err := rows.Scan(&r.Skeleton, &r.Branches, &r.Junctions, &r.EndPointVoxels,
			&r.JunctionVoxels, &r.SlabVoxels, &avg, &r.TriplePoints, &r.MaximumBranchLength,
			&sd); err != nil {
			return nil, fmt.Errorf("failed to scan tree: %w", err)
		}
		r.AverageBranchLength = orNaN(avg)
		r.BranchLengthStdDev = orNaN(sd)
		out = append(out, r)
	}
	return out, rows.Err()
}

// nullable stores NaN as NULL
func nullable(v float64) sql.NullFloat64 {
	if !skeleton.Defined(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
