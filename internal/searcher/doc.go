// Package searcher serves tenant-scoped similarity search enriched with
// graph context.
//
// Every search embeds the query once, runs a cosine-similarity scan over
// the tenant's indexed chunks, and optionally attaches two kinds of graph
// context: the files connected to each hit and the tenant's most central
// files.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store, embedClient, searcher.Options{Logger: logger})
//
//	resp, err := s.Search(ctx, tenant, searcher.SearchRequest{
//	    Query:     "player movement and jumping",
//	    Limit:     10,
//	    WithGraph: true,
//	})
//
//	for _, r := range resp.Results {
//	    fmt.Printf("[%d] %s#%d (%.2f)\n", r.Rank, r.FilePath, r.ChunkIndex, r.Similarity)
//	}
//
// # Graph Context
//
// When WithGraph is set, each distinct hit file is expanded by a bounded
// breadth-first traversal (depth 2 by default) over the tenant's
// relationship graph.
// Neighbors group under directional labels:
//
//	"uses_attaches_script":  ["scripts/player.gd"]
//	"used_by_instantiates_scene": ["scenes/main.tscn"]
//
// The traversal works on a file-level projection: scene-node detail
// collapses onto the owning file, parallel relationships between the same
// file pair keep the strongest one, and self references disappear. The
// response also carries the tenant's central files, ranked by blended
// degree, betweenness, and PageRank centrality.
//
// Connections and CentralFiles expose the same two lookups directly, for
// callers that want graph context without a query.
//
// # Caching
//
// Two caches sit in front of the store. A per-tenant snapshot of the file
// graph is kept in a size-bounded, TTL-expiring registry and rebuilt on
// demand; the engine invalidates it whenever that tenant's index changes.
// Full query responses are cached by request hash for repeated searches
// when the caller opts in with UseCache.
package searcher
