package skeleton

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

func pt(x, y, z int) models.Point3D {
	return models.Point3D{X: x, Y: y, Z: z}
}

// run returns n points starting at from and advancing by step
func run(from, step models.Point3D, n int) []models.Point3D {
	pts := make([]models.Point3D, n)
	for i := range pts {
		pts[i] = from
		from = from.Add(step)
	}
	return pts
}

func newSkeleton(t *testing.T, w, h, d int, cal models.Calibration, pts ...[]models.Point3D) *voxel.Grid {
	t.Helper()
	g, err := voxel.NewGrid(w, h, d, cal)
	require.NoError(t, err)
	for _, group := range pts {
		for _, p := range group {
			require.True(t, g.Contains(p), "point %v outside grid", p)
			g.Set(p, 255)
		}
	}
	return g
}

// ySkeleton is a junction at (5,5,0) with a straight arm going up and two
// diagonal arms going down, each three voxels long plus an end point.
func ySkeleton(t *testing.T) *voxel.Grid {
	return newSkeleton(t, 11, 11, 1, models.Isotropic(1),
		[]models.Point3D{pt(5, 5, 0)},
		run(pt(5, 4, 0), pt(0, -1, 0), 4),
		run(pt(4, 6, 0), pt(-1, 1, 0), 4),
		run(pt(6, 6, 0), pt(1, 1, 0), 4),
	)
}

// xSkeleton is a junction at (5,5,0) with four diagonal arms of three voxels
func xSkeleton(t *testing.T) *voxel.Grid {
	return newSkeleton(t, 11, 11, 1, models.Isotropic(1),
		[]models.Point3D{pt(5, 5, 0)},
		run(pt(4, 4, 0), pt(-1, -1, 0), 3),
		run(pt(6, 4, 0), pt(1, -1, 0), 3),
		run(pt(4, 6, 0), pt(-1, 1, 0), 3),
		run(pt(6, 6, 0), pt(1, 1, 0), 3),
	)
}

// hSkeleton has two junctions joined by a three voxel bridge, each with two
// diagonal arms of two voxels
func hSkeleton(t *testing.T) *voxel.Grid {
	return newSkeleton(t, 11, 11, 1, models.Isotropic(1),
		[]models.Point3D{pt(3, 5, 0), pt(7, 5, 0)},
		run(pt(4, 5, 0), pt(1, 0, 0), 3),
		run(pt(2, 4, 0), pt(-1, -1, 0), 2),
		run(pt(2, 6, 0), pt(-1, 1, 0), 2),
		run(pt(8, 4, 0), pt(1, -1, 0), 2),
		run(pt(8, 6, 0), pt(1, 1, 0), 2),
	)
}

// newTestLogger logs every level as text into w
func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
