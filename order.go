package scango

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/hupe1980/scango/internal/parallel"
	"github.com/hupe1980/scango/similarity"
)

// RankedNeighbor is one entry of a vertex's neighbor order: a neighbor
// together with its structural similarity to the vertex.
type RankedNeighbor struct {
	ID         uint32
	Similarity float32
}

// neighborOrder holds, per vertex, its neighbors sorted by descending
// similarity (ties by ascending ID, for a canonical order). The descending
// order makes "neighbors with similarity >= epsilon" a list prefix.
type neighborOrder struct {
	offsets   []int64 // len n+1
	neighbors []RankedNeighbor
}

// buildNeighborOrder arranges the flat edge similarity records into
// per-vertex descending-similarity lists. records must contain one record
// per direction of every edge.
func buildNeighborOrder(
	ctx context.Context,
	workers int,
	numVertices int,
	records []similarity.EdgeSimilarity,
) (*neighborOrder, error) {
	degrees := make([]int64, numVertices)
	for i := range records {
		degrees[records[i].Source]++
	}

	offsets := make([]int64, numVertices+1)
	var total int64
	for v, d := range degrees {
		offsets[v] = total
		total += d
	}
	offsets[numVertices] = total

	// Scatter records to their vertex's slots. Records for one vertex are
	// spread across the input, so each vertex hands out slots through an
	// atomic cursor; the per-vertex sort below erases the arrival order.
	neighbors := make([]RankedNeighbor, total)
	cursors := make([]atomic.Int64, numVertices)
	err := parallel.ForEach(ctx, workers, len(records), func(i int) {
		r := &records[i]
		slot := offsets[r.Source] + cursors[r.Source].Add(1) - 1
		neighbors[slot] = RankedNeighbor{ID: r.Neighbor, Similarity: r.Similarity}
	})
	if err != nil {
		return nil, err
	}

	no := &neighborOrder{offsets: offsets, neighbors: neighbors}
	err = parallel.ForEach(ctx, workers, numVertices, func(i int) {
		list := no.list(uint32(i))
		sort.Slice(list, func(a, b int) bool {
			if list[a].Similarity != list[b].Similarity {
				return list[a].Similarity > list[b].Similarity
			}
			return list[a].ID < list[b].ID
		})
	})
	if err != nil {
		return nil, err
	}
	return no, nil
}

func (no *neighborOrder) numVertices() int {
	return len(no.offsets) - 1
}

func (no *neighborOrder) list(v uint32) []RankedNeighbor {
	return no.neighbors[no.offsets[v]:no.offsets[v+1]]
}

// epsilonPrefix returns v's neighbors with similarity >= epsilon.
func (no *neighborOrder) epsilonPrefix(v uint32, epsilon float32) []RankedNeighbor {
	list := no.list(v)
	k := sort.Search(len(list), func(i int) bool { return list[i].Similarity < epsilon })
	return list[:k]
}

// coreOrder answers, per vertex and mu, the minimum epsilon at which the
// vertex is a core vertex. Entry mu-1 of a vertex's value list is the mu-th
// largest similarity within its closed neighborhood; the vertex itself
// contributes a leading 1.0 (every vertex is fully similar to itself).
type coreOrder struct {
	offsets []int64 // len n+1
	values  []float32
}

// buildCoreOrder derives the core order from the neighbor order. Cheap: one
// copy of the already-sorted similarity values with the self entry prepended.
func buildCoreOrder(no *neighborOrder) *coreOrder {
	n := no.numVertices()
	offsets := make([]int64, n+1)
	for v := 0; v <= n; v++ {
		// Every vertex gains one slot for its self similarity.
		offsets[v] = no.offsets[v] + int64(v)
	}

	values := make([]float32, offsets[n])
	for v := 0; v < n; v++ {
		values[offsets[v]] = 1.0
		for i, rn := range no.list(uint32(v)) {
			values[offsets[v]+1+int64(i)] = rn.Similarity
		}
	}
	return &coreOrder{offsets: offsets, values: values}
}

// threshold returns the minimum epsilon at which v is core for the given mu,
// and false if no epsilon qualifies (v's closed neighborhood is smaller than
// mu).
func (co *coreOrder) threshold(v uint32, mu int) (float32, bool) {
	list := co.values[co.offsets[v]:co.offsets[v+1]]
	if mu <= 0 {
		return list[0], true
	}
	if mu > len(list) {
		return 0, false
	}
	return list[mu-1], true
}

// isCore reports whether v has at least mu members of its closed
// neighborhood with similarity >= epsilon.
func (co *coreOrder) isCore(v uint32, mu int, epsilon float32) bool {
	t, ok := co.threshold(v, mu)
	return ok && t >= epsilon
}
