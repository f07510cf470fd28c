// Package centrality ranks graph nodes by a blended importance score.
//
// Three measures are computed over an explicit directed graph: degree
// centrality, betweenness centrality, and PageRank. Each measure is
// min-max normalized to [0, 1] and the final score is a weighted blend.
// Ranking is deterministic: ties keep the insertion order of the input
// ids, so two runs over the same graph produce identical output.
package centrality

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// Blend weights for the combined score.
const (
	degreeWeight      = 0.4
	betweennessWeight = 0.3
	pageRankWeight    = 0.3
)

// PageRank iteration parameters.
const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// Edge is a directed edge between two node ids. Edges referencing ids
// outside the ranked set are ignored, as are self loops.
type Edge struct {
	Src string
	Dst string
}

// Score is one ranked node.
type Score struct {
	ID    string
	Score float64
}

// Rank scores every id and returns the full ranking, highest first.
// Duplicate ids are collapsed to their first occurrence.
func Rank(ids []string, edges []Edge) []Score {
	if len(ids) == 0 {
		return nil
	}

	index := make(map[string]int64, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, seen := index[id]; seen {
			continue
		}
		index[id] = int64(len(order))
		order = append(order, id)
	}

	g := simple.NewDirectedGraph()
	for i := range order {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		src, ok := index[e.Src]
		if !ok {
			continue
		}
		dst, ok := index[e.Dst]
		if !ok || src == dst {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(src), T: simple.Node(dst)})
	}

	n := len(order)
	degree := make([]float64, n)
	if n > 1 {
		for i := range order {
			id := int64(i)
			degree[i] = float64(g.From(id).Len()+g.To(id).Len()) / float64(n-1)
		}
	}

	betweenness := make([]float64, n)
	for id, v := range network.Betweenness(g) {
		betweenness[id] = v
	}

	pagerank := make([]float64, n)
	for id, v := range network.PageRank(g, pageRankDamping, pageRankTolerance) {
		pagerank[id] = v
	}

	normalize(degree)
	normalize(betweenness)
	normalize(pagerank)

	scores := make([]Score, n)
	for i, id := range order {
		scores[i] = Score{
			ID:    id,
			Score: degreeWeight*degree[i] + betweennessWeight*betweenness[i] + pageRankWeight*pagerank[i],
		}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Score > scores[b].Score
	})
	return scores
}

// normalize rescales vals to [0, 1] in place. A constant slice carries
// no ordering signal and is zeroed.
func normalize(vals []float64) {
	if len(vals) == 0 {
		return
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		for i := range vals {
			vals[i] = 0
		}
		return
	}
	span := max - min
	for i := range vals {
		vals[i] = (vals[i] - min) / span
	}
}
