package similarity

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/internal/parallel"
)

// orientedGraph is a directed acyclic view of an undirected graph in which
// every edge points from its lower degree-rank endpoint to its higher
// degree-rank endpoint (ties broken by vertex ID). The orientation caps each
// out-degree at O(sqrt(m)), which bounds the pairwise intersection work of
// triangle counting at O(m^1.5) overall.
//
// offsets doubles as the counter offset table: oriented edge j of vertex v
// owns counter slot offsets[v]+j in the shared-neighbor counter arena.
type orientedGraph struct {
	offsets []int64  // len n+1
	targets []uint32 // len m, per-vertex ascending (subsequence of the sorted adjacency)
}

// rankBefore reports whether u precedes v in the degree-based total order.
func rankBefore(g *graph.Graph, u, v uint32) bool {
	du, dv := g.Degree(u), g.Degree(v)
	if du != dv {
		return du < dv
	}
	return u < v
}

// orientByDegree derives the degree-oriented acyclic view of g.
func orientByDegree(ctx context.Context, workers int, g *graph.Graph) (*orientedGraph, error) {
	n := g.NumVertices()

	outDegrees := make([]int64, n)
	err := parallel.ForEach(ctx, workers, n, func(i int) {
		u := uint32(i)
		var kept int64
		for _, v := range g.Neighbors(u) {
			if rankBefore(g, u, v) {
				kept++
			}
		}
		outDegrees[i] = kept
	})
	if err != nil {
		return nil, err
	}

	offsets := make([]int64, n+1)
	var total int64
	for i, d := range outDegrees {
		offsets[i] = total
		total += d
	}
	offsets[n] = total

	targets := make([]uint32, total)
	err = parallel.ForEach(ctx, workers, n, func(i int) {
		u := uint32(i)
		cursor := offsets[i]
		for _, v := range g.Neighbors(u) {
			if rankBefore(g, u, v) {
				targets[cursor] = v
				cursor++
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return &orientedGraph{offsets: offsets, targets: targets}, nil
}

// outNeighbors returns v's directed out-neighbors, sorted ascending.
func (dg *orientedGraph) outNeighbors(v uint32) []uint32 {
	return dg.targets[dg.offsets[v]:dg.offsets[v+1]]
}

// numEdges returns the number of directed edges, one per undirected edge.
func (dg *orientedGraph) numEdges() int64 {
	return dg.offsets[len(dg.offsets)-1]
}

// newCounterArena allocates one concurrency-safe shared-neighbor counter per
// oriented edge, addressed through dg.offsets.
func newCounterArena(dg *orientedGraph) []atomic.Uint32 {
	return make([]atomic.Uint32, dg.numEdges())
}
