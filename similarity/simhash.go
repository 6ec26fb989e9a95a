package similarity

import (
	"context"
	"math"
	"math/bits"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/internal/bitset"
	"github.com/hupe1980/scango/internal/parallel"
)

// ApproxCosine estimates cosine similarity with SimHash (random hyperplane
// sketching, after Charikar's "Similarity Estimation Techniques from Rounding
// Algorithms").
//
// A closed neighborhood is a 0/1 vector in n dimensions. For each of
// NumSamples random hyperplanes, the sketch records on which side of the
// hyperplane the vector falls; the angle between two vectors is proportional
// to the fraction of hyperplanes separating them. Hyperplanes are drawn with
// i.i.d. normal coordinates, and the side is the sign of the dot product,
// accumulated sparsely by summing the coordinate of each neighborhood member.
//
// Only edges whose endpoints both have degree >= 4*NumSamples are estimated;
// all other edges take the exact triangle-counting path. The estimate is
// biased, and its error shrinks as O(1/sqrt(NumSamples)). For a fixed Seed
// the output is fully deterministic.
type ApproxCosine struct {
	// NumSamples is the number of random hyperplanes. Must be positive.
	NumSamples int
	// Seed determines the hyperplane table.
	Seed uint64
	// Parallelism bounds the number of workers; 0 means GOMAXPROCS.
	Parallelism int
}

// NewApproxCosine creates an ApproxCosine measure.
func NewApproxCosine(numSamples int, seed uint64) *ApproxCosine {
	return &ApproxCosine{NumSamples: numSamples, Seed: seed}
}

// AllEdges implements Measure.
func (a *ApproxCosine) AllEdges(ctx context.Context, g *graph.Graph) ([]EdgeSimilarity, error) {
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
		var mismatches int
		fu, fv := fingerprints[u], fingerprints[v]
		for w := range fu {
			mismatches += bits.OnesCount64(fu[w] ^ fv[w])
		}
		angle := math.Pi * float64(mismatches) / float64(a.NumSamples)
		return float32(math.Cos(angle))
	}
	return approxSimilarities(ctx, workers, g, dg, counters, highDegree, estimate, cosineScore)
}

// buildFingerprints computes the bit-packed hyperplane sign sketch for every
// eligible vertex. The normal-number table is the expensive part, so rows are
// allocated only for vertices that contribute to some fingerprint: the
// fingerprinted vertices themselves plus their neighbors.
func (a *ApproxCosine) buildFingerprints(
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

	// A fingerprint sums normal rows over the whole closed neighborhood, so
	// neighbors of eligible vertices need rows too.
	needsNormals := bitset.New(n)
	err = parallel.ForEach(ctx, workers, n, func(i int) {
		v := uint32(i)
		if !eligible.Test(v) {
			return
		}
		needsNormals.SetAtomic(v)
		for _, w := range g.Neighbors(v) {
			needsNormals.SetAtomic(w)
		}
	})
	if err != nil {
		return nil, err
	}

	// normalRow[v] indexes v's row in the normals table; prefix sum over the
	// needs-normals set.
	normalRow := make([]uint32, n)
	var numRows uint32
	for v := 0; v < n; v++ {
		if needsNormals.Test(uint32(v)) {
			normalRow[v] = numRows
			numRows++
		}
	}
	normals, err := randomNormals(ctx, workers, int(numRows)*a.NumSamples, a.Seed)
	if err != nil {
		return nil, err
	}

	numWords := (a.NumSamples + 63) / 64
	fingerprints := make([][]uint64, n)
	err = parallel.ForEach(ctx, workers, n, func(i int) {
		v := uint32(i)
		if !eligible.Test(v) {
			return
		}
		dots := make([]float32, a.NumSamples)
		copy(dots, normals[int(normalRow[v])*a.NumSamples:])
		for _, w := range g.Neighbors(v) {
			row := normals[int(normalRow[w])*a.NumSamples:]
			for s := range dots {
				dots[s] += row[s]
			}
		}
		words := make([]uint64, numWords)
		for s, dot := range dots {
			if dot >= 0 {
				words[s>>6] |= 1 << (s & 63)
			}
		}
		fingerprints[v] = words
	})
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}
