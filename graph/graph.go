// Package graph provides the immutable undirected graph view consumed by
// scango index construction.
//
// A Graph stores its adjacency in compressed sparse row (CSR) form: a flat
// neighbor arena plus per-vertex offsets. Neighbor lists must be sorted by
// ascending vertex ID; every similarity measure relies on that ordering for
// merge-style intersections and does not re-check it. Use Validate to verify
// untrusted input once, up front.
package graph

import (
	"fmt"
	"slices"
)

// Graph is an immutable undirected graph with sorted adjacency lists.
//
// Vertices are identified by dense IDs in [0, NumVertices()). A Graph is
// read-only after construction and safe for concurrent use.
type Graph struct {
	offsets   []int64  // len n+1, offsets[v] is the start of v's neighbor list
	neighbors []uint32 // len 2m, concatenated sorted neighbor lists
}

// FromAdjacency builds a Graph from per-vertex neighbor lists.
//
// Each list must be sorted by ascending neighbor ID, free of self-loops and
// duplicates, and symmetric (u lists v iff v lists u). None of this is
// checked here; call Validate when the input is untrusted.
func FromAdjacency(adjacency [][]uint32) *Graph {
	offsets := make([]int64, len(adjacency)+1)
	var total int64
	for v, list := range adjacency {
		offsets[v] = total
		total += int64(len(list))
	}
	offsets[len(adjacency)] = total

	neighbors := make([]uint32, 0, total)
	for _, list := range adjacency {
		neighbors = append(neighbors, list...)
	}

	return &Graph{offsets: offsets, neighbors: neighbors}
}

// FromEdges builds a Graph with numVertices vertices from a list of
// undirected edges. Each edge {u, v} is inserted in both directions and the
// resulting neighbor lists are sorted.
//
// Endpoints must be distinct and within range, and no edge may appear twice
// (in either orientation); violations are reported as errors.
func FromEdges(numVertices int, edges [][2]uint32) (*Graph, error) {
	n := uint32(numVertices)
	degrees := make([]int64, numVertices)
	for _, e := range edges {
		u, v := e[0], e[1]
		if u >= n || v >= n {
			return nil, fmt.Errorf("edge {%d, %d} out of range [0, %d)", u, v, n)
		}
		if u == v {
			return nil, fmt.Errorf("self-loop at vertex %d", u)
		}
		degrees[u]++
		degrees[v]++
	}

	offsets := make([]int64, numVertices+1)
	var total int64
	for v, d := range degrees {
		offsets[v] = total
		total += d
	}
	offsets[numVertices] = total

	neighbors := make([]uint32, total)
	cursor := make([]int64, numVertices)
	for _, e := range edges {
		u, v := e[0], e[1]
		neighbors[offsets[u]+cursor[u]] = v
		neighbors[offsets[v]+cursor[v]] = u
		cursor[u]++
		cursor[v]++
	}

	g := &Graph{offsets: offsets, neighbors: neighbors}
	for v := 0; v < numVertices; v++ {
		list := g.mutableNeighbors(uint32(v))
		slices.Sort(list)
		for i := 1; i < len(list); i++ {
			if list[i] == list[i-1] {
				return nil, fmt.Errorf("duplicate edge {%d, %d}", v, list[i])
			}
		}
	}
	return g, nil
}

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int {
	return len(g.offsets) - 1
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int {
	return len(g.neighbors) / 2
}

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v uint32) int {
	return int(g.offsets[v+1] - g.offsets[v])
}

// Neighbors returns v's neighbor list, sorted by ascending vertex ID.
// The returned slice aliases internal storage and must not be modified.
func (g *Graph) Neighbors(v uint32) []uint32 {
	return g.neighbors[g.offsets[v]:g.offsets[v+1]]
}

// Validate checks the sorted-adjacency contract: every neighbor list is
// strictly ascending, in range, free of self-loops, and symmetric. It
// returns an error describing the first violation found.
//
// Index construction does not call Validate; it is an opt-in check for
// untrusted input.
func (g *Graph) Validate() error {
	n := uint32(g.NumVertices())
	for v := uint32(0); v < n; v++ {
		list := g.Neighbors(v)
		for i, w := range list {
			if w >= n {
				return fmt.Errorf("vertex %d: neighbor %d out of range [0, %d)", v, w, n)
			}
			if w == v {
				return fmt.Errorf("vertex %d: self-loop", v)
			}
			if i > 0 && list[i-1] >= w {
				return fmt.Errorf("vertex %d: neighbor list not strictly ascending at position %d", v, i)
			}
			if !g.hasNeighbor(w, v) {
				return fmt.Errorf("asymmetric edge: %d lists %d but not vice versa", v, w)
			}
		}
	}
	return nil
}

func (g *Graph) hasNeighbor(v, w uint32) bool {
	_, found := slices.BinarySearch(g.Neighbors(v), w)
	return found
}

func (g *Graph) mutableNeighbors(v uint32) []uint32 {
	return g.neighbors[g.offsets[v]:g.offsets[v+1]]
}
