package skeleton

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/voxel"
)

// isolatedVoxels places n voxels two apart on a square grid so none touch
func isolatedVoxels(t *testing.T, n int) *voxel.Grid {
	t.Helper()
	g, err := voxel.NewGrid(64, 64, 1, models.Isotropic(1))
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		g.Set(pt((i%32)*2, (i/32)*2, 0), 255)
	}
	return g
}

func TestLabelTreesTwoSegments(t *testing.T) {
	g := newSkeleton(t, 10, 5, 1, models.Isotropic(1),
		run(pt(0, 0, 0), pt(1, 0, 0), 4),
		run(pt(2, 3, 0), pt(1, 0, 0), 6),
	)
	c := Classify(g)
	visited := voxel.NewVisited(g)

	treeMap, n, err := LabelTrees(c.Tagged, c.EndPoints, visited, MaxTrees)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, uint8(1), treeMap.At(pt(2, 0, 0)))
	assert.Equal(t, uint8(2), treeMap.At(pt(5, 3, 0)))
	assert.Equal(t, g.CountNonZero(), treeMap.CountNonZero())
	assert.False(t, visited.Is(pt(0, 0, 0)), "visited flags must be reset after labeling")
}

func TestLabelTreesExploresEveryJunctionArm(t *testing.T) {
	g := xSkeleton(t)
	c := Classify(g)

	treeMap, n, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), MaxTrees)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	g.ForEach(func(p models.Point3D, v uint8) {
		if v != 0 {
			assert.Equal(t, uint8(1), treeMap.At(p), "voxel %v not labeled", p)
		}
	})
}

func TestLabelTreesIsolatedVoxelIsATree(t *testing.T) {
	g := newSkeleton(t, 3, 3, 3, models.Isotropic(1), []models.Point3D{pt(1, 1, 1)})
	c := Classify(g)

	treeMap, n, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), MaxTrees)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint8(1), treeMap.At(pt(1, 1, 1)))
}

func TestLabelTreesClosedLoopIsInvisible(t *testing.T) {
	// a ring has no end point, so nothing seeds a flood
	g := newSkeleton(t, 5, 5, 1, models.Isotropic(1), []models.Point3D{
		pt(1, 1, 0), pt(2, 1, 0), pt(3, 1, 0), pt(3, 2, 0),
		pt(3, 3, 0), pt(2, 3, 0), pt(1, 3, 0), pt(1, 2, 0),
	})
	c := Classify(g)
	require.Empty(t, c.EndPoints)

	treeMap, n, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), MaxTrees)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, treeMap.CountNonZero())
}

func TestLabelTreesCapacity(t *testing.T) {
	t.Run("at limit", func(t *testing.T) {
		g := isolatedVoxels(t, MaxTrees)
		c := Classify(g)
		_, n, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), MaxTrees)
		require.NoError(t, err)
		assert.Equal(t, MaxTrees, n)
	})

	t.Run("over limit", func(t *testing.T) {
		g := isolatedVoxels(t, MaxTrees+1)
		c := Classify(g)
		treeMap, n, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), MaxTrees)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))

		var capErr *CapacityError
		require.True(t, errors.As(err, &capErr))
		assert.Equal(t, MaxTrees, capErr.Limit)
		assert.Nil(t, treeMap)
		assert.Zero(t, n)
	})

	t.Run("custom limit", func(t *testing.T) {
		g := isolatedVoxels(t, 3)
		c := Classify(g)
		_, _, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), 2)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})
}

func TestLabelTreesRevisitedEndPointKeepsLabel(t *testing.T) {
	// the second end point of a line is reached by the first flood and must
	// not consume a label
	g := newSkeleton(t, 6, 1, 1, models.Isotropic(1), run(pt(0, 0, 0), pt(1, 0, 0), 6))
	c := Classify(g)
	require.Len(t, c.EndPoints, 2)

	_, n, err := LabelTrees(c.Tagged, c.EndPoints, voxel.NewVisited(g), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
