package similarity

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/internal/parallel"
)

// countSharedNeighbors runs the parallel triangle-counting phase and returns
// the per-oriented-edge counter arena. After the phase, the counter at
// dg.offsets[v]+j holds the number of neighbors shared between v and its j-th
// oriented neighbor in the undirected graph.
//
// Triangles are found in the directed form
//
//	    w
//	   ^ ^
//	  /   \
//	 u --> v
//
// which is in bijection with undirected triangles of g. Each discovered
// triangle credits all three of its oriented edges: u->v through the summed
// intersection size, u->w and v->w through the per-match indices. Distinct
// discovering goroutines may land on the same slot, hence the atomic adds.
//
// When highDegree is non-nil, edges whose endpoints are both high-degree are
// skipped: their similarity comes from fingerprints instead. A high-degree u
// is skipped wholesale because the orientation points every out-edge at an
// equal-or-higher-degree endpoint.
func countSharedNeighbors(
	ctx context.Context,
	workers int,
	g *graph.Graph,
	dg *orientedGraph,
	highDegree func(v uint32) bool,
) ([]atomic.Uint32, error) {
	counters := newCounterArena(dg)

	err := parallel.ForEach(ctx, workers, g.NumVertices(), func(i int) {
		u := uint32(i)
		if highDegree != nil && highDegree(u) {
			return
		}
		uOut := dg.outNeighbors(u)
		uOffset := dg.offsets[u]
		for j, v := range uOut {
			vOut := dg.outNeighbors(v)
			vOffset := dg.offsets[v]
			vHigh := highDegree != nil && highDegree(v)
			count := intersectOriented(uOut, vOut, func(ui, vi int, w uint32) {
				counters[uOffset+int64(ui)].Add(1)
				if !(vHigh && highDegree(w)) {
					counters[vOffset+int64(vi)].Add(1)
				}
			})
			counters[uOffset+int64(j)].Add(count)
		}
	})
	if err != nil {
		return nil, err
	}
	return counters, nil
}

// intersectOriented merge-intersects two ascending out-neighbor lists,
// calling match with the position of each shared vertex in both lists, and
// returns the intersection size.
func intersectOriented(a, b []uint32, match func(ai, bi int, w uint32)) uint32 {
	var count uint32
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		switch {
		case a[ai] == b[bi]:
			match(ai, bi, a[ai])
			count++
			ai++
			bi++
		case a[ai] < b[bi]:
			ai++
		default:
			bi++
		}
	}
	return count
}
