// Package scango provides index-based structural graph clustering (SCAN).
//
// SCAN groups the vertices of an undirected graph into clusters of vertices
// with similar neighborhoods, leaving poorly connected vertices unclustered.
// The expensive work, computing a structural similarity score for every edge
// and ordering the scores per vertex, happens once at index construction.
// Clustering queries against the finished index are cheap and can be
// repeated with different parameters without recomputation.
//
// # Quick Start
//
//	g := graph.FromAdjacency(adjacency) // sorted neighbor lists
//	idx, err := scango.New(ctx, g)
//	if err != nil { ... }
//
//	c := idx.Cluster(2, 0.7) // mu=2, epsilon=0.7
//	id, ok := c.ClusterOf(v)
//
// # Similarity Measures
//
// The measure is injected at construction. The traditional choice for SCAN
// is cosine similarity over closed neighborhoods, which is the default:
//
//	idx, err := scango.New(ctx, g, scango.WithMeasure(similarity.Jaccard{}))
//
// For graphs with many high-degree vertices, the approximate measures trade
// accuracy for avoiding quadratic-in-degree intersection work on hubs:
//
//	idx, err := scango.New(ctx, g,
//	    scango.WithMeasure(similarity.NewApproxCosine(256, seed)))
//
// # Snapshots
//
// A built index can be persisted and reloaded without redoing similarity
// computation, locally or through a blob store:
//
//	store, err := blobstore.NewLocalStore(dir)
//	if err != nil { ... }
//	err = idx.SaveTo(ctx, store, "web-graph.scan")
//	idx, err = scango.LoadFrom(ctx, store, "web-graph.scan")
//
// The index is read-only after construction and safe for concurrent Cluster
// queries.
package scango
