package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"skelanalyze/pkg/skeleton"
	"skelanalyze/pkg/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect analysis runs recorded in the results database",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openResultsDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tCREATED\tSOURCE\tSIZE\tPRUNED\tTREES")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%dx%d\t%t\t%d\n",
				r.ID, time.Unix(r.CreatedAt, 0).Format(time.RFC3339), r.Source,
				r.Width, r.Height, r.Depth, r.Pruned, r.TreeCount)
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the results table of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openResultsDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.TreeRows(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no trees recorded for run %s", args[0])
		}
		return skeleton.WriteCSV(cmd.OutOrStdout(), rows)
	},
}

func init() {
	runsCmd.PersistentFlags().String("db", "", "SQLite results database (defaults to output.database)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

func openResultsDB(cmd *cobra.Command) (*store.ResultsDB, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.Output.Database
	}
	if path == "" {
		return nil, fmt.Errorf("no results database configured, use --db")
	}
	return store.Open(path)
}
