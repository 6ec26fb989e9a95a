package similarity

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/internal/bitset"
	"github.com/hupe1980/scango/internal/parallel"
)

// ErrInvalidSamples is returned by the approximate measures when the sample
// count is not positive.
var ErrInvalidSamples = errors.New("similarity: number of samples must be positive")

// degreeThresholdFactor converts a sample count into the degree threshold
// above which sketching beats exact intersection. Below 4x the sample count,
// a merge intersection is cheaper than comparing fingerprints.
const degreeThresholdFactor = 4

// fingerprintEligibility marks the vertices that need a fingerprint: a vertex
// qualifies when its own degree reaches the threshold and at least one
// neighbor's does too. An isolated hub keeps the exact path, since every one
// of its edges has a cheap endpoint.
func fingerprintEligibility(
	ctx context.Context,
	workers int,
	g *graph.Graph,
	threshold int,
) (*bitset.Bitset, error) {
	eligible := bitset.New(g.NumVertices())
	err := parallel.ForEach(ctx, workers, g.NumVertices(), func(i int) {
		v := uint32(i)
		if g.Degree(v) < threshold {
			return
		}
		for _, w := range g.Neighbors(v) {
			if g.Degree(w) >= threshold {
				eligible.SetAtomic(v)
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return eligible, nil
}

// approxSimilarities converts counters and fingerprints into the final
// similarity records. Edges between two high-degree endpoints use estimate;
// the rest use the exact score over the counted shared neighbors. Thanks to
// the degree orientation, inspecting the source endpoint of an oriented edge
// is enough to classify the whole edge.
func approxSimilarities(
	ctx context.Context,
	workers int,
	g *graph.Graph,
	dg *orientedGraph,
	counters []atomic.Uint32,
	highDegree func(v uint32) bool,
	estimate func(u, v uint32) float32,
	exact func(degreeU, degreeV, shared uint32) float32,
) ([]EdgeSimilarity, error) {
	similarities := make([]EdgeSimilarity, 2*g.NumEdges())
	err := parallel.ForEach(ctx, workers, g.NumVertices(), func(i int) {
		u := uint32(i)
		degreeU := uint32(g.Degree(u))
		uHigh := highDegree(u)
		base := dg.offsets[u]
		for j, v := range dg.targets[base:dg.offsets[u+1]] {
			counterIndex := base + int64(j)
			var score float32
			if uHigh {
				score = estimate(u, v)
			} else {
				score = exact(degreeU, uint32(g.Degree(v)), counters[counterIndex].Load())
			}
			similarities[2*counterIndex] = EdgeSimilarity{Source: u, Neighbor: v, Similarity: score}
			similarities[2*counterIndex+1] = EdgeSimilarity{Source: v, Neighbor: u, Similarity: score}
		}
	})
	if err != nil {
		return nil, err
	}
	return similarities, nil
}
