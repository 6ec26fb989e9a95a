package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scango/graph"
)

// twoTriangles returns the graph with triangles {0,1,2} and {2,3,4} sharing
// vertex 2.
func twoTriangles(t *testing.T) *graph.Graph {
	t.Helper()

	g, err := graph.FromEdges(5, [][2]uint32{
		{0, 1}, {0, 2}, {1, 2},
		{2, 3}, {2, 4}, {3, 4},
	})
	require.NoError(t, err)

	return g
}

// scoreOf finds the similarity recorded for the directed pair (u, v).
func scoreOf(t *testing.T, records []EdgeSimilarity, u, v uint32) float32 {
	t.Helper()

	for _, r := range records {
		if r.Source == u && r.Neighbor == v {
			return r.Similarity
		}
	}
	t.Fatalf("no record for edge (%d, %d)", u, v)
	return 0
}

func TestCosine_SingleEdge(t *testing.T) {
	g, err := graph.FromEdges(2, [][2]uint32{{0, 1}})
	require.NoError(t, err)

	records, err := Cosine{}.AllEdges(context.Background(), g)
	require.NoError(t, err)

	// Closed neighborhoods coincide, so the score is exactly 1.
	require.Len(t, records, 2)
	assert.Equal(t, float32(1.0), scoreOf(t, records, 0, 1))
	assert.Equal(t, float32(1.0), scoreOf(t, records, 1, 0))
}

func TestCosine_Triangle(t *testing.T) {
	g := graph.FromAdjacency([][]uint32{
		{1, 2},
		{0, 2},
		{0, 1},
	})

	records, err := Cosine{}.AllEdges(context.Background(), g)
	require.NoError(t, err)

	require.Len(t, records, 6)
	for _, r := range records {
		assert.Equal(t, float32(1.0), r.Similarity, "edge (%d, %d)", r.Source, r.Neighbor)
	}
}

func TestCosine_TwoTriangles(t *testing.T) {
	g := twoTriangles(t)

	records, err := Cosine{}.AllEdges(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, records, 2*g.NumEdges())

	// Vertices 0 and 1 have identical closed neighborhoods.
	assert.InDelta(t, 1.0, scoreOf(t, records, 0, 1), 1e-6)
	assert.InDelta(t, 1.0, scoreOf(t, records, 3, 4), 1e-6)

	// |N[0] ∩ N[2]| = 3, |N[0]| = 3, |N[2]| = 5, so the score is 3/sqrt(15).
	assert.InDelta(t, 0.7745967, scoreOf(t, records, 0, 2), 1e-6)
	assert.InDelta(t, 0.7745967, scoreOf(t, records, 4, 2), 1e-6)
}

func TestJaccard_TwoTriangles(t *testing.T) {
	g := twoTriangles(t)

	records, err := Jaccard{}.AllEdges(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, records, 2*g.NumEdges())

	assert.InDelta(t, 1.0, scoreOf(t, records, 0, 1), 1e-6)
	assert.InDelta(t, 1.0, scoreOf(t, records, 3, 4), 1e-6)

	// |N[0] ∩ N[2]| = 3, |N[0] ∪ N[2]| = 5.
	assert.InDelta(t, 0.6, scoreOf(t, records, 0, 2), 1e-6)
	assert.InDelta(t, 0.6, scoreOf(t, records, 3, 2), 1e-6)
}

func TestJaccard_Path(t *testing.T) {
	g := graph.FromAdjacency([][]uint32{
		{1},
		{0, 2},
		{1},
	})

	records, err := Jaccard{}.AllEdges(context.Background(), g)
	require.NoError(t, err)

	// N[0] = {0,1}, N[1] = {0,1,2}: intersection 2, union 3.
	assert.InDelta(t, 2.0/3.0, scoreOf(t, records, 0, 1), 1e-6)
	assert.InDelta(t, 2.0/3.0, scoreOf(t, records, 2, 1), 1e-6)
}

func TestMeasures_SymmetricAndBounded(t *testing.T) {
	// An unbalanced graph: a hub joined to a path and a pendant clique.
	g, err := graph.FromEdges(8, [][2]uint32{
		{0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 2},
		{4, 5}, {5, 6},
		{6, 7},
	})
	require.NoError(t, err)

	measures := map[string]Measure{
		"cosine":  Cosine{},
		"jaccard": Jaccard{},
	}
	for name, m := range measures {
		t.Run(name, func(t *testing.T) {
			records, err := m.AllEdges(context.Background(), g)
			require.NoError(t, err)
			require.Len(t, records, 2*g.NumEdges())

			byPair := make(map[[2]uint32]float32, len(records))
			for _, r := range records {
				assert.Greater(t, r.Similarity, float32(0))
				assert.LessOrEqual(t, r.Similarity, float32(1.0))
				byPair[[2]uint32{r.Source, r.Neighbor}] = r.Similarity
			}

			require.Len(t, byPair, 2*g.NumEdges())
			for pair, score := range byPair {
				reverse, ok := byPair[[2]uint32{pair[1], pair[0]}]
				require.True(t, ok, "missing reverse record for (%d, %d)", pair[0], pair[1])
				assert.Equal(t, score, reverse)
			}
		})
	}
}

func TestMeasures_EmptyGraph(t *testing.T) {
	g := graph.FromAdjacency([][]uint32{{}, {}, {}})

	records, err := Cosine{}.AllEdges(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Jaccard{}.AllEdges(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, records)
}
