package scango

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/scango/graph"
)

// Index is a SCAN clustering index for an undirected graph.
//
// Construction computes a structural similarity score for every edge and
// orders the scores per vertex; this is the expensive phase. The finished
// index is read-only, independent of the source graph, and safe for
// concurrent Cluster queries.
type Index struct {
	order *neighborOrder
	cores *coreOrder
	opts  options
}

// New builds an Index for g.
//
// The neighbor lists of g must be sorted by ascending vertex ID. This
// precondition is not checked; violating it yields incorrect similarity
// scores, not an error. Use g.Validate first when the input is untrusted.
//
// Construction is synchronous and runs to completion; ctx cancellation is
// observed between internal phases. g is not retained by the returned Index.
func New(ctx context.Context, g *graph.Graph, optFns ...Option) (*Index, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	o := applyOptions(optFns)

	start := time.Now()
	idx, err := build(ctx, g, o)
	o.metricsCollector.RecordBuild(time.Since(start), err)
	o.logger.LogBuild(ctx, g.NumVertices(), g.NumEdges(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func build(ctx context.Context, g *graph.Graph, o options) (*Index, error) {
	records, err := o.measure.AllEdges(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("compute edge similarities: %w", err)
	}

	order, err := buildNeighborOrder(ctx, o.parallelism, g.NumVertices(), records)
	if err != nil {
		return nil, fmt.Errorf("build neighbor order: %w", err)
	}

	return &Index{
		order: order,
		cores: buildCoreOrder(order),
		opts:  o,
	}, nil
}

// NumVertices returns the number of vertices covered by the index.
func (ix *Index) NumVertices() int {
	return ix.order.numVertices()
}

// Neighbors returns v's neighbors ordered by descending similarity.
// The returned slice aliases index storage and must not be modified.
func (ix *Index) Neighbors(v uint32) []RankedNeighbor {
	return ix.order.list(v)
}

// EpsilonNeighbors returns v's neighbors with similarity >= epsilon, ordered
// by descending similarity. The returned slice aliases index storage and
// must not be modified.
func (ix *Index) EpsilonNeighbors(v uint32, epsilon float32) []RankedNeighbor {
	return ix.order.epsilonPrefix(v, epsilon)
}

// CoreThreshold returns the minimum epsilon at which v is a core vertex for
// the given mu, and false if v cannot be core at any epsilon (its closed
// neighborhood is smaller than mu).
func (ix *Index) CoreThreshold(v uint32, mu int) (float32, bool) {
	return ix.cores.threshold(v, mu)
}

// IsCore reports whether v is a core vertex at (mu, epsilon): whether at
// least mu members of v's closed neighborhood have similarity >= epsilon.
func (ix *Index) IsCore(v uint32, mu int, epsilon float32) bool {
	return ix.cores.isCore(v, mu, epsilon)
}
