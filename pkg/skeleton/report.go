package skeleton

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Headings are the columns of the results table
var Headings = []string{
	"Skeleton", "# Branches", "# Junctions", "# End-point voxels",
	"# Junction voxels", "# Slab voxels", "Average Branch Length",
	"# Triple points", "Maximum Branch Length", "Branch Length Std Dev",
}

func formatLength(v float64) string {
	if !Defined(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func (row TreeRow) fields() []string {
	return []string{
		strconv.Itoa(row.Skeleton),
		strconv.Itoa(row.Branches),
		strconv.Itoa(row.Junctions),
		strconv.Itoa(row.EndPointVoxels),
		strconv.Itoa(row.JunctionVoxels),
		strconv.Itoa(row.SlabVoxels),
		formatLength(row.AverageBranchLength),
		strconv.Itoa(row.TriplePoints),
		formatLength(row.MaximumBranchLength),
		formatLength(row.BranchLengthStdDev),
	}
}

// errWriter keeps the first write error and skips later writes
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) row(fields []string) {
	ew.printf("%s\n", strings.Join(fields, "\t"))
}

// WriteTable prints the results table followed by the longest branch of
// every skeleton
func WriteTable(w io.Writer, rows []TreeRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	ew.row(Headings)
	for _, row := range rows {
		ew.row(row.fields())
	}
	if ew.err != nil {
		return ew.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ew = &errWriter{w: w}
	for _, row := range rows {
		ew.printf("\n--- Skeleton #%d ---\n", row.Skeleton)
		if !row.HasLongestBranch {
			ew.printf("No branches\n")
			continue
		}
		ew.printf("Coordinates of the largest branch:\n")
		ew.printf("Initial point: (%g, %g, %g)\n",
			row.LongestBranchInitial[0], row.LongestBranchInitial[1], row.LongestBranchInitial[2])
		ew.printf("Final point: (%g, %g, %g)\n",
			row.LongestBranchFinal[0], row.LongestBranchFinal[1], row.LongestBranchFinal[2])
		ew.printf("Euclidean distance: %g\n", row.LongestBranchDistance)
	}
	return ew.err
}

// WriteCSV writes the results table as CSV
func WriteCSV(w io.Writer, rows []TreeRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headings); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Skeleton            int         `json:"skeleton"`
	Branches            int         `json:"branches"`
	Junctions           int         `json:"junctions"`
	EndPointVoxels      int         `json:"endPointVoxels"`
	JunctionVoxels      int         `json:"junctionVoxels"`
	SlabVoxels          int         `json:"slabVoxels"`
	AverageBranchLength *float64    `json:"averageBranchLength"`
	TriplePoints        int         `json:"triplePoints"`
	MaximumBranchLength float64     `json:"maximumBranchLength"`
	BranchLengthStdDev  *float64    `json:"branchLengthStdDev"`
	LongestBranch       *jsonBranch `json:"longestBranch,omitempty"`
}

type jsonBranch struct {
	Initial  [3]float64 `json:"initial"`
	Final    [3]float64 `json:"final"`
	Distance float64    `json:"distance"`
}

// WriteJSON writes the rows as a JSON array. An undefined average branch
// length or standard deviation is written as null.
func WriteJSON(w io.Writer, rows []TreeRow) error {
	out := make([]jsonRow, 0, len(rows))
	for _, row := range rows {
		jr := jsonRow{
			Skeleton:            row.Skeleton,
			Branches:            row.Branches,
			Junctions:           row.Junctions,
			EndPointVoxels:      row.EndPointVoxels,
			JunctionVoxels:      row.JunctionVoxels,
			SlabVoxels:          row.SlabVoxels,
			TriplePoints:        row.TriplePoints,
			MaximumBranchLength: row.MaximumBranchLength,
		}
		if Defined(row.AverageBranchLength) {
			avg := row.AverageBranchLength
			jr.AverageBranchLength = &avg
		}
		if Defined(row.BranchLengthStdDev) {
			sd := row.BranchLengthStdDev
			jr.BranchLengthStdDev = &sd
		}
		if row.HasLongestBranch {
			jr.LongestBranch = &jsonBranch{
				Initial:  row.LongestBranchInitial,
				Final:    row.LongestBranchFinal,
				Distance: row.LongestBranchDistance,
			}
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
