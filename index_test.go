package scango

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/similarity"
)

// twoTriangles returns the graph with triangles {0,1,2} and {2,3,4} sharing
// vertex 2. Under cosine similarity the intra-triangle edges at vertex 2
// score 3/sqrt(15) = 0.775 and the remaining edges score 1.
func twoTriangles(t *testing.T) *graph.Graph {
	t.Helper()

	g, err := graph.FromEdges(5, [][2]uint32{
		{0, 1}, {0, 2}, {1, 2},
		{2, 3}, {2, 4}, {3, 4},
	})
	require.NoError(t, err)

	return g
}

func TestNew_NilGraph(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilGraph)
}

func TestNew_MeasureError(t *testing.T) {
	_, err := New(context.Background(), twoTriangles(t),
		WithMeasure(&similarity.ApproxCosine{NumSamples: 0}))
	assert.ErrorIs(t, err, similarity.ErrInvalidSamples)
}

func TestIndex_Neighbors(t *testing.T) {
	ix, err := New(context.Background(), twoTriangles(t))
	require.NoError(t, err)

	require.Equal(t, 5, ix.NumVertices())

	// Vertex 0's best neighbor is its twin 1, then the shared vertex 2.
	neighbors := ix.Neighbors(0)
	require.Len(t, neighbors, 2)
	assert.Equal(t, uint32(1), neighbors[0].ID)
	assert.InDelta(t, 1.0, neighbors[0].Similarity, 1e-6)
	assert.Equal(t, uint32(2), neighbors[1].ID)
	assert.InDelta(t, 0.7745967, neighbors[1].Similarity, 1e-6)

	// Vertex 2 scores 0.775 against all four neighbors; ties order by ID.
	neighbors = ix.Neighbors(2)
	require.Len(t, neighbors, 4)
	for i, rn := range neighbors {
		assert.Equal(t, uint32([]uint32{0, 1, 3, 4}[i]), rn.ID)
		assert.InDelta(t, 0.7745967, rn.Similarity, 1e-6)
	}
}

func TestIndex_EpsilonNeighbors(t *testing.T) {
	ix, err := New(context.Background(), twoTriangles(t))
	require.NoError(t, err)

	assert.Len(t, ix.EpsilonNeighbors(0, 0.5), 2)
	assert.Len(t, ix.EpsilonNeighbors(0, 0.9), 1)
	assert.Empty(t, ix.EpsilonNeighbors(2, 0.9))
	assert.Len(t, ix.EpsilonNeighbors(2, 0.7), 4)
}

func TestIndex_CoreThreshold(t *testing.T) {
	ix, err := New(context.Background(), twoTriangles(t))
	require.NoError(t, err)

	// mu = 1 is satisfied by the self similarity alone.
	threshold, ok := ix.CoreThreshold(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 1.0, threshold, 1e-6)

	// Vertex 0's closed neighborhood similarities are [1, 1, 0.775].
	threshold, ok = ix.CoreThreshold(0, 2)
	require.True(t, ok)
	assert.InDelta(t, 1.0, threshold, 1e-6)

	threshold, ok = ix.CoreThreshold(0, 3)
	require.True(t, ok)
	assert.InDelta(t, 0.7745967, threshold, 1e-6)

	// Vertex 2's closed neighborhood similarities are [1, 0.775 x4].
	threshold, ok = ix.CoreThreshold(2, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.7745967, threshold, 1e-6)

	// The closed neighborhood of vertex 0 only has 3 members.
	_, ok = ix.CoreThreshold(0, 4)
	assert.False(t, ok)
}

func TestIndex_IsCore(t *testing.T) {
	ix, err := New(context.Background(), twoTriangles(t))
	require.NoError(t, err)

	assert.True(t, ix.IsCore(0, 2, 0.9))
	assert.True(t, ix.IsCore(2, 2, 0.7))
	assert.False(t, ix.IsCore(2, 2, 0.9))
	assert.False(t, ix.IsCore(0, 4, 0.1))

	// Raising epsilon or mu never turns a non-core into a core.
	for v := uint32(0); v < 5; v++ {
		for mu := 1; mu <= 5; mu++ {
			if !ix.IsCore(v, mu, 0.5) {
				assert.False(t, ix.IsCore(v, mu, 0.9), "vertex %d mu %d", v, mu)
				assert.False(t, ix.IsCore(v, mu+1, 0.5), "vertex %d mu %d", v, mu)
			}
		}
	}
}

func TestIndex_WithJaccardMeasure(t *testing.T) {
	ix, err := New(context.Background(), twoTriangles(t), WithMeasure(similarity.Jaccard{}))
	require.NoError(t, err)

	// Under Jaccard the mixed edges score 3/5 instead of 3/sqrt(15).
	neighbors := ix.Neighbors(2)
	require.Len(t, neighbors, 4)
	for _, rn := range neighbors {
		assert.InDelta(t, 0.6, rn.Similarity, 1e-6)
	}
}

func TestIndex_BuildOptions(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	ix, err := New(context.Background(), twoTriangles(t),
		WithParallelism(2),
		WithMetricsCollector(metrics),
		WithLogger(NoopLogger()),
	)
	require.NoError(t, err)

	clustering := ix.Cluster(2, 0.5)
	require.NotNil(t, clustering)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(0), stats.BuildErrors)
	assert.Equal(t, int64(1), stats.ClusterCount)
}
