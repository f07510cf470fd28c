package searcher

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/scenedex/scenedex/internal/centrality"
	"github.com/scenedex/scenedex/internal/storage"
	"github.com/scenedex/scenedex/pkg/types"
)

const (
	// registrySize bounds how many tenant snapshots stay resident.
	registrySize = 64
	// registryTTL forces a rebuild even without an invalidation, so a
	// snapshot can never serve stale data indefinitely.
	registryTTL = 5 * time.Minute
)

// graphRegistry caches one file-level graph snapshot per tenant with
// create-or-get semantics. Entries expire by TTL and evict by LRU; writes
// evict explicitly through invalidate.
type graphRegistry struct {
	store storage.Store
	cache *expirable.LRU[string, *fileGraph]
}

func newGraphRegistry(store storage.Store, size int, ttl time.Duration) *graphRegistry {
	if size <= 0 {
		size = registrySize
	}
	if ttl <= 0 {
		ttl = registryTTL
	}
	return &graphRegistry{
		store: store,
		cache: expirable.NewLRU[string, *fileGraph](size, nil, ttl),
	}
}

// snapshot returns the tenant's cached graph, building it from the store
// on a miss. Concurrent misses may build twice; both builds observe
// committed rows, so whichever lands last is equally valid.
func (r *graphRegistry) snapshot(ctx context.Context, tenant types.Tenant) (*fileGraph, error) {
	key := tenant.Key()
	if g, ok := r.cache.Get(key); ok {
		return g, nil
	}

	nodes, edges, err := r.store.GraphForTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("load tenant graph: %w", err)
	}

	g := buildFileGraph(nodes, edges)
	r.cache.Add(key, g)
	return g, nil
}

func (r *graphRegistry) invalidate(tenant types.Tenant) {
	r.cache.Remove(tenant.Key())
}

// fileEdge is one direction of a projected file relationship.
type fileEdge struct {
	peer  string
	label string
}

// fileGraph is an immutable file-level projection of a tenant's graph:
// scene-node detail is collapsed onto the owning file, so traversal and
// centrality operate on files the way callers see them.
type fileGraph struct {
	files []string
	index map[string]struct{}
	out   map[string][]fileEdge
	in    map[string][]fileEdge
	edges []centrality.Edge
}

// buildFileGraph projects node and edge rows onto files. Every File node
// becomes a vertex even when isolated. Each edge maps to (owner file →
// resolved target file); targets whose id matches no stored node are
// dangling and dropped, self references are dropped, and parallel edges
// between the same file pair collapse to the strongest relationship.
func buildFileGraph(nodes []types.GraphNode, edges []types.GraphEdge) *fileGraph {
	g := &fileGraph{
		index: make(map[string]struct{}),
		out:   make(map[string][]fileEdge),
		in:    make(map[string][]fileEdge),
	}

	owner := make(map[string]string, len(nodes))
	for _, n := range nodes {
		owner[n.ID] = n.FilePath
		if n.Kind == types.NodeFile {
			g.addFile(n.FilePath)
		}
	}

	type pair struct{ src, dst string }
	type relation struct {
		label    string
		strength float64
	}
	strongest := make(map[pair]relation)
	var order []pair

	for _, e := range edges {
		src := e.FilePath
		dst, ok := owner[e.DstID]
		if !ok || dst == src {
			continue
		}

		k := pair{src, dst}
		rel := relation{label: types.RelationshipLabel(e.Kind), strength: e.Strength}
		cur, seen := strongest[k]
		if !seen {
			strongest[k] = rel
			order = append(order, k)
		} else if rel.strength > cur.strength {
			strongest[k] = rel
		}
	}

	for _, k := range order {
		rel := strongest[k]
		g.addFile(k.src)
		g.addFile(k.dst)
		g.out[k.src] = append(g.out[k.src], fileEdge{peer: k.dst, label: rel.label})
		g.in[k.dst] = append(g.in[k.dst], fileEdge{peer: k.src, label: rel.label})
		g.edges = append(g.edges, centrality.Edge{Src: k.src, Dst: k.dst})
	}

	return g
}

func (g *fileGraph) addFile(path string) {
	if _, ok := g.index[path]; ok {
		return
	}
	g.index[path] = struct{}{}
	g.files = append(g.files, path)
}

func (g *fileGraph) contains(path string) bool {
	_, ok := g.index[path]
	return ok
}

// connections walks the projection breadth-first from path, collecting
// neighbors under "uses_<relationship>" for outgoing edges and
// "used_by_<relationship>" for incoming ones. Visited files are not
// re-expanded and expansion stops at maxDepth, so cycles terminate. A
// path with no vertex returns nil; an isolated vertex returns an empty
// non-nil set.
func (g *fileGraph) connections(path string, maxDepth int) types.ConnectionSet {
	if !g.contains(path) {
		return nil
	}

	set := types.ConnectionSet{}

	type frame struct {
		path  string
		depth int
	}
	queue := []frame{{path: path, depth: 0}}
	visited := map[string]struct{}{path: {}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, e := range g.out[cur.path] {
			set["uses_"+e.label] = append(set["uses_"+e.label], e.peer)
			if _, seen := visited[e.peer]; !seen {
				visited[e.peer] = struct{}{}
				queue = append(queue, frame{path: e.peer, depth: cur.depth + 1})
			}
		}

		for _, e := range g.in[cur.path] {
			set["used_by_"+e.label] = append(set["used_by_"+e.label], e.peer)
			if _, seen := visited[e.peer]; !seen {
				visited[e.peer] = struct{}{}
				queue = append(queue, frame{path: e.peer, depth: cur.depth + 1})
			}
		}
	}

	return set
}

// centralFiles ranks every file in the projection and returns the topK.
func (g *fileGraph) centralFiles(topK int) []types.CentralFile {
	if topK <= 0 || len(g.files) == 0 {
		return nil
	}

	ranked := centrality.Rank(g.files, g.edges)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]types.CentralFile, len(ranked))
	for i, s := range ranked {
		out[i] = types.CentralFile{FilePath: s.ID, Score: s.Score}
	}
	return out
}
