// Package similarity computes structural similarity scores for every edge of
// an undirected graph.
//
// The structural similarity of two adjacent vertices compares their closed
// neighborhoods (each vertex counts as its own neighbor). Exact measures
// count shared neighbors by parallel triangle counting over a degree-oriented
// view of the graph; approximate measures replace the per-edge intersection
// with locality-sensitive fingerprints (SimHash for cosine, MinHash for
// Jaccard) on high-degree vertex pairs, where exact intersection would cost
// time proportional to the hub degrees.
package similarity

import (
	"context"
	"math"

	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/internal/parallel"
)

// EdgeSimilarity is the similarity between two adjacent vertices, recorded
// once per direction.
type EdgeSimilarity struct {
	// Source vertex ID.
	Source uint32
	// Neighbor vertex ID.
	Neighbor uint32
	// Similarity of the source vertex to the neighbor vertex.
	Similarity float32
}

// Measure computes similarity scores for all edges of a graph.
//
// Implementations must treat the graph as read-only and must write exactly
// two records per undirected edge, one per direction, carrying the identical
// similarity value. Neighbor lists of the graph must be sorted by ascending
// vertex ID.
type Measure interface {
	// AllEdges returns a slice of length 2*g.NumEdges() containing the
	// similarity score between every adjacent pair of vertices.
	AllEdges(ctx context.Context, g *graph.Graph) ([]EdgeSimilarity, error)
}

// Cosine computes the exact cosine similarity between adjacent vertices:
// the size of the intersection of their closed neighborhoods divided by the
// geometric mean of the closed neighborhood sizes.
//
// The neighborhood of a vertex can be read as an n-dimensional 0/1 vector;
// the score is the cosine of the angle between the two neighborhood vectors,
// which is how this measure gets its name. Scores lie in (0, 1].
type Cosine struct {
	// Parallelism bounds the number of workers; 0 means GOMAXPROCS.
	Parallelism int
}

// AllEdges implements Measure.
func (c Cosine) AllEdges(ctx context.Context, g *graph.Graph) ([]EdgeSimilarity, error) {
	return neighborhoodSimilarities(ctx, c.Parallelism, g, cosineScore)
}

// Jaccard computes the exact Jaccard similarity between adjacent vertices:
// the size of the intersection of their closed neighborhoods divided by the
// size of their union. Scores lie in (0, 1].
type Jaccard struct {
	// Parallelism bounds the number of workers; 0 means GOMAXPROCS.
	Parallelism int
}

// AllEdges implements Measure.
func (j Jaccard) AllEdges(ctx context.Context, g *graph.Graph) ([]EdgeSimilarity, error) {
	return neighborhoodSimilarities(ctx, j.Parallelism, g, jaccardScore)
}

// cosineScore converts open-neighborhood sizes and a shared-neighbor count
// into the closed-neighborhood cosine similarity. The +1/+2 offsets account
// for each vertex being a member of its own closed neighborhood.
func cosineScore(degreeU, degreeV, shared uint32) float32 {
	return float32(float64(shared+2) /
		(math.Sqrt(float64(degreeU+1)) * math.Sqrt(float64(degreeV+1))))
}

// jaccardScore is the closed-neighborhood Jaccard analogue of cosineScore.
func jaccardScore(degreeU, degreeV, shared uint32) float32 {
	union := degreeU + degreeV - shared
	return float32(shared+2) / float32(union)
}

// neighborhoodSimilarities scores every edge with scoreFn, a symmetric
// function of (degree(u), degree(v), shared neighbor count).
func neighborhoodSimilarities(
	ctx context.Context,
	workers int,
	g *graph.Graph,
	scoreFn func(degreeU, degreeV, shared uint32) float32,
) ([]EdgeSimilarity, error) {
	dg, err := orientByDegree(ctx, workers, g)
	if err != nil {
		return nil, err
	}

	counters, err := countSharedNeighbors(ctx, workers, g, dg, nil)
	if err != nil {
		return nil, err
	}

	similarities := make([]EdgeSimilarity, 2*g.NumEdges())
	err = parallel.ForEach(ctx, workers, g.NumVertices(), func(i int) {
		u := uint32(i)
		degreeU := uint32(g.Degree(u))
		base := dg.offsets[u]
		for j, v := range dg.targets[base:dg.offsets[u+1]] {
			counterIndex := base + int64(j)
			shared := counters[counterIndex].Load()
			score := scoreFn(degreeU, uint32(g.Degree(v)), shared)
			similarities[2*counterIndex] = EdgeSimilarity{Source: u, Neighbor: v, Similarity: score}
			similarities[2*counterIndex+1] = EdgeSimilarity{Source: v, Neighbor: u, Similarity: score}
		}
	})
	if err != nil {
		return nil, err
	}
	return similarities, nil
}
