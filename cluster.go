package scango

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/scango/internal/bitset"
	"github.com/hupe1980/scango/internal/parallel"
)

// Unclustered is the cluster ID assigned to vertices that belong to no
// cluster.
const Unclustered = ^uint32(0)

// Clustering is the result of a single Cluster query: a cluster ID per
// vertex, or Unclustered. Cluster IDs are vertex-derived values in
// [0, NumVertices()) and are not necessarily contiguous.
//
// A Clustering is freshly allocated per query, owned by the caller, and
// read-only.
type Clustering struct {
	ids   []uint32
	cores *roaring.Bitmap
}

// Cluster computes a SCAN clustering with parameters mu and epsilon.
//
// A vertex is a core vertex when at least mu members of its closed
// neighborhood (itself plus its neighbors) have similarity >= epsilon.
// Epsilon-similar core vertices share a cluster; cluster membership over
// cores is the transitive closure of that relation. A non-core vertex
// epsilon-similar to a core neighbor joins one such neighbor's cluster
// ("border" vertex); when several clusters qualify, the choice is arbitrary.
// Everything else stays Unclustered.
//
// Increasing epsilon makes finer-grained, smaller clusters; increasing mu
// raises the minimum cluster size and suppresses large clusters. The query
// does not modify the index and may run concurrently with other queries.
func (ix *Index) Cluster(mu int, epsilon float32) *Clustering {
	start := time.Now()
	c := ix.cluster(mu, epsilon)
	ix.opts.metricsCollector.RecordCluster(c.NumClusters(), time.Since(start))
	ix.opts.logger.LogCluster(context.Background(), mu, epsilon, c.NumClusters(), time.Since(start))
	return c
}

func (ix *Index) cluster(mu int, epsilon float32) *Clustering {
	n := ix.NumVertices()
	workers := ix.opts.parallelism

	coreMarks := bitset.New(n)
	parallel.Each(workers, n, func(i int) {
		if ix.cores.isCore(uint32(i), mu, epsilon) {
			coreMarks.SetAtomic(uint32(i))
		}
	})

	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = Unclustered
	}

	// Grow clusters from unassigned cores: breadth-first over the
	// epsilon-similar prefixes, restricted to core vertices. The root's
	// vertex ID names the cluster.
	var frontier []uint32
	for v := 0; v < n; v++ {
		root := uint32(v)
		if !coreMarks.Test(root) || ids[root] != Unclustered {
			continue
		}
		ids[root] = root
		frontier = append(frontier[:0], root)
		for len(frontier) > 0 {
			u := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			for _, rn := range ix.order.epsilonPrefix(u, epsilon) {
				if coreMarks.Test(rn.ID) && ids[rn.ID] == Unclustered {
					ids[rn.ID] = root
					frontier = append(frontier, rn.ID)
				}
			}
		}
	}

	// Attach border vertices. Each non-core vertex picks the first core in
	// its own epsilon prefix, so writes stay exclusive per vertex and the
	// pass can run fully in parallel.
	parallel.Each(workers, n, func(i int) {
		v := uint32(i)
		if coreMarks.Test(v) {
			return
		}
		for _, rn := range ix.order.epsilonPrefix(v, epsilon) {
			if coreMarks.Test(rn.ID) {
				ids[v] = ids[rn.ID]
				return
			}
		}
	})

	cores := roaring.New()
	for v := 0; v < n; v++ {
		if coreMarks.Test(uint32(v)) {
			cores.Add(uint32(v))
		}
	}
	return &Clustering{ids: ids, cores: cores}
}

// ClusterOf returns v's cluster ID. The second return value is false when v
// is unclustered.
func (c *Clustering) ClusterOf(v uint32) (uint32, bool) {
	id := c.ids[v]
	return id, id != Unclustered
}

// IsClustered reports whether v belongs to any cluster.
func (c *Clustering) IsClustered(v uint32) bool {
	return c.ids[v] != Unclustered
}

// IDs returns the raw cluster ID array, indexed by vertex. The slice aliases
// the Clustering's storage and must not be modified.
func (c *Clustering) IDs() []uint32 {
	return c.ids
}

// Cores returns the set of core vertices of the query as a bitmap. The
// bitmap aliases the Clustering's storage and must not be modified.
func (c *Clustering) Cores() *roaring.Bitmap {
	return c.cores
}

// Members returns the set of vertices assigned to cluster id.
func (c *Clustering) Members(id uint32) *roaring.Bitmap {
	members := roaring.New()
	for v, cid := range c.ids {
		if cid == id && id != Unclustered {
			members.Add(uint32(v))
		}
	}
	return members
}

// NumClusters returns the number of distinct clusters.
func (c *Clustering) NumClusters() int {
	distinct := roaring.New()
	for _, id := range c.ids {
		if id != Unclustered {
			distinct.Add(id)
		}
	}
	return int(distinct.GetCardinality())
}
