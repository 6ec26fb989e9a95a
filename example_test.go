package scango_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/scango"
	"github.com/hupe1980/scango/blobstore"
	"github.com/hupe1980/scango/graph"
	"github.com/hupe1980/scango/similarity"
)

// Example_cluster demonstrates building an index and running clustering
// queries with different parameters.
func Example_cluster() {
	ctx := context.Background()

	// Two triangles sharing vertex 2.
	g, err := graph.FromEdges(5, [][2]uint32{
		{0, 1}, {0, 2}, {1, 2},
		{2, 3}, {2, 4}, {3, 4},
	})
	if err != nil {
		log.Fatal(err)
	}

	idx, err := scango.New(ctx, g)
	if err != nil {
		log.Fatal(err)
	}

	// A permissive epsilon merges both triangles through the bridge.
	loose := idx.Cluster(2, 0.5)
	fmt.Println("clusters at eps 0.5:", loose.NumClusters())

	// A strict epsilon splits them and leaves the bridge unclustered.
	strict := idx.Cluster(2, 0.9)
	fmt.Println("clusters at eps 0.9:", strict.NumClusters())
	fmt.Println("bridge clustered:", strict.IsClustered(2))
	// Output:
	// clusters at eps 0.5: 1
	// clusters at eps 0.9: 2
	// bridge clustered: false
}

// Example_approximateMeasure demonstrates sketch-based similarity for graphs
// with high-degree vertices.
func Example_approximateMeasure() {
	ctx := context.Background()

	g, err := graph.FromEdges(5, [][2]uint32{
		{0, 1}, {0, 2}, {1, 2},
		{2, 3}, {2, 4}, {3, 4},
	})
	if err != nil {
		log.Fatal(err)
	}

	// Edges between vertices of degree >= 4*256 are estimated from MinHash
	// fingerprints; everything below the threshold stays exact.
	idx, err := scango.New(ctx, g,
		scango.WithMeasure(similarity.NewApproxJaccard(256, 42)),
	)
	if err != nil {
		log.Fatal(err)
	}

	c := idx.Cluster(2, 0.5)
	fmt.Println("clusters:", c.NumClusters())
	// Output: clusters: 1
}

// Example_snapshot demonstrates persisting a built index and loading it back.
func Example_snapshot() {
	ctx := context.Background()

	g, err := graph.FromEdges(5, [][2]uint32{
		{0, 1}, {0, 2}, {1, 2},
		{2, 3}, {2, 4}, {3, 4},
	})
	if err != nil {
		log.Fatal(err)
	}

	idx, err := scango.New(ctx, g)
	if err != nil {
		log.Fatal(err)
	}

	store := blobstore.NewMemoryStore()
	if err := idx.SaveTo(ctx, store, "graph.scan"); err != nil {
		log.Fatal(err)
	}

	loaded, err := scango.LoadFrom(ctx, store, "graph.scan")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("vertices:", loaded.NumVertices())
	fmt.Println("clusters:", loaded.Cluster(2, 0.5).NumClusters())
	// Output:
	// vertices: 5
	// clusters: 1
}
