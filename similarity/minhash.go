package similarity

import (
	"context"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/internal/parallel"
)

// ApproxJaccard estimates Jaccard similarity with MinHash.
//
// For each of NumSamples hash functions, a vertex's sketch stores the minimum
// hash value over its closed neighborhood. Two sets agree on a sketch
// position with probability equal to their Jaccard similarity, so the
// estimate is the fraction of agreeing positions.
//
// Only edges whose endpoints both have degree >= 4*NumSamples are estimated;
// all other edges take the exact triangle-counting path. The estimation error
// shrinks as O(1/sqrt(NumSamples)). For a fixed Seed the output is fully
// deterministic.
type ApproxJaccard struct {
	// NumSamples is the number of hash functions. Must be positive.
	NumSamples int
	// Seed determines the hash functions.
	Seed uint64
	// Parallelism bounds the number of workers; 0 means GOMAXPROCS.
	Parallelism int
}

// NewApproxJaccard creates an ApproxJaccard measure.
func NewApproxJaccard(numSamples int, seed uint64) *ApproxJaccard {
	return &ApproxJaccard{NumSamples: numSamples, Seed: seed}
}

// AllEdges implements Measure.
func (a *ApproxJaccard) AllEdges(ctx context.Context, g *graph.Graph) ([]EdgeSimilarity, error) {
	if a.NumSamples <= 0 {
		return nil, ErrInvalidSamples
	}
	workers := a.Parallelism
	threshold := degreeThresholdFactor * a.NumSamples
	highDegree := func(v uint32) bool { return g.Degree(v) >= threshold }

	fingerprints, err := a.buildFingerprints(ctx, workers, g, threshold)
	if err != nil {
		return nil, err
	}

	dg, err := orientByDegree(ctx, workers, g)
	if err != nil {
		return nil, err
	}
	counters, err := countSharedNeighbors(ctx, workers, g, dg, highDegree)
	if err != nil {
		return nil, err
	}

	estimate := func(u, v uint32) float32 {
		var matches int
		fu, fv := fingerprints[u], fingerprints[v]
		for s := range fu {
			if fu[s] == fv[s] {
				matches++
			}
		}
		return float32(matches) / float32(a.NumSamples)
	}
	return approxSimilarities(ctx, workers, g, dg, counters, highDegree, estimate, jaccardScore)
}

// buildFingerprints computes the per-sample closed-neighborhood hash minima
// for every eligible vertex. The hash of vertex w under sample s depends only
// on (Seed, w, s), so fingerprints are pure reductions.
func (a *ApproxJaccard) buildFingerprints(
	ctx context.Context,
	workers int,
	g *graph.Graph,
	threshold int,
) ([][]uint64, error) {
	n := g.NumVertices()
	eligible, err := fingerprintEligibility(ctx, workers, g, threshold)
	if err != nil {
		return nil, err
	}

	base := hash64(a.Seed)
	samples := uint64(a.NumSamples)
	fingerprints := make([][]uint64, n)
	err = parallel.ForEach(ctx, workers, n, func(i int) {
		v := uint32(i)
		if !eligible.Test(v) {
			return
		}
		minima := make([]uint64, a.NumSamples)
		for s := range minima {
			minima[s] = mix64(base + samples*uint64(v) + uint64(s))
		}
		for _, w := range g.Neighbors(v) {
			wBase := base + samples*uint64(w)
			for s := range minima {
				if h := mix64(wBase + uint64(s)); h < minima[s] {
					minima[s] = h
				}
			}
		}
		fingerprints[v] = minima
	})
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}
