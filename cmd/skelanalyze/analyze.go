package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"skelanalyze/pkg/config"
	"skelanalyze/pkg/skeleton"
	"skelanalyze/pkg/stack"
	"skelanalyze/pkg/store"
	"skelanalyze/pkg/visualization"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <slice-dir>",
	Short: "Analyze a skeleton stored as a directory of slice images",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.Float64("voxel-width", 0, "voxel size along x (overrides config)")
	f.Float64("voxel-height", 0, "voxel size along y (overrides config)")
	f.Float64("voxel-depth", 0, "voxel size along z (overrides config)")
	f.Bool("prune", false, "prune end branches before labeling trees")
	f.StringP("format", "f", "", "output format: table, csv or json")
	f.String("tagged-dir", "", "directory to save the tagged stack")
	f.String("trees-dir", "", "directory to save the tree label stack")
	f.String("db", "", "SQLite database to record the run in")
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("voxel-width") {
		cfg.Calibration.Width, _ = f.GetFloat64("voxel-width")
	}
	if f.Changed("voxel-height") {
		cfg.Calibration.Height, _ = f.GetFloat64("voxel-height")
	}
	if f.Changed("voxel-depth") {
		cfg.Calibration.Depth, _ = f.GetFloat64("voxel-depth")
	}
	if f.Changed("prune") {
		cfg.Analysis.PruneEndBranches, _ = f.GetBool("prune")
	}
	if f.Changed("format") {
		cfg.Output.Format, _ = f.GetString("format")
	}
	if f.Changed("tagged-dir") {
		cfg.Output.TaggedDir, _ = f.GetString("tagged-dir")
	}
	if f.Changed("trees-dir") {
		cfg.Output.TreesDir, _ = f.GetString("trees-dir")
	}
	if f.Changed("db") {
		cfg.Output.Database, _ = f.GetString("db")
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	dir := args[0]

	logger.Info("loading slices", "dir", dir)
	grid, err := stack.Load(stack.Params{
		Dir:         dir,
		Extensions:  cfg.Input.Extensions,
		Threshold:   cfg.Input.Threshold,
		Calibration: cfg.Calibration,
	})
	if err != nil {
		return fmt.Errorf("failed to load slices: %w", err)
	}
	logger.Info("loaded stack", "width", grid.Width, "height", grid.Height, "depth", grid.Depth,
		"foreground", grid.CountNonZero())

	analyzer := skeleton.NewAnalyzer(&skeleton.Params{
		PruneEndBranches: cfg.Analysis.PruneEndBranches,
		MaxTrees:         cfg.Analysis.MaxTrees,
		Logger:           logger,
	})

	start := time.Now()
	result, err := analyzer.Process(ctx, grid)
	if errors.Is(err, skeleton.ErrCapacityExceeded) {
		return fmt.Errorf("analysis aborted: %w", err)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.Info("analysis completed", "trees", len(result.Trees), "elapsed", time.Since(start))
	if degenerate := result.DegenerateTrees(); len(degenerate) > 0 {
		logger.Warn("skeletons without branches", "skeletons", degenerate)
	}

	if err := writeResults(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if err := exportStacks(result); err != nil {
		return err
	}

	if cfg.Output.Database != "" {
		db, err := store.Open(cfg.Output.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runID, err := db.RecordRun(ctx, dir, cfg.Analysis.PruneEndBranches, result)
		if err != nil {
			return err
		}
		logger.Info("recorded run", "run", runID, "database", cfg.Output.Database)
	}

	return nil
}

func writeResults(w io.Writer, result *skeleton.Result) error {
	rows := result.Table()
	switch cfg.Output.Format {
	case "csv":
		return skeleton.WriteCSV(w, rows)
	case "json":
		return skeleton.WriteJSON(w, rows)
	default:
		fmt.Fprintf(w, "Total end points: %d, junction voxels: %d, slab voxels: %d\n",
			result.TotalEndPoints, result.TotalJunctionVoxels, result.TotalSlabs)
		fmt.Fprintf(w, "Total branch length: %.4f\n\n", result.TotalBranchLength())
		return skeleton.WriteTable(w, rows)
	}
}

func exportStacks(result *skeleton.Result) error {
	if dir := cfg.Output.TaggedDir; dir != "" {
		logger.Info("saving tagged stack", "dir", dir, "axis", cfg.Output.Axis)
		if err := visualization.NewViewer(result.Tagged).SaveSliceSequence(cfg.Output.Axis, dir); err != nil {
			return fmt.Errorf("failed to save tagged stack: %w", err)
		}
	}
	if dir := cfg.Output.TreesDir; dir != "" {
		logger.Info("saving tree stack", "dir", dir, "axis", cfg.Output.Axis)
		if err := visualization.NewViewer(result.TreeMap).SaveSliceSequence(cfg.Output.Axis, dir); err != nil {
			return fmt.Errorf("failed to save tree stack: %w", err)
		}
	}
	return nil
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write a default configuration file",
	Args:  cobra.ExactArgs(1),
	// The existing config may be the broken file being replaced
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s already exists", args[0])
		}
		return config.CreateDefaultConfigFile(args[0])
	},
}
