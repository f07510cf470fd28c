// Package graph extracts relationship graphs from project files.
//
// Structured scene and resource files are walked by a tolerant line scanner:
// bracketed headers open sections, an external reference table maps declared
// ids to paths, node sections become graph nodes, and property or connection
// lines become typed edges. Procedural script files go through a set of
// reference regexes instead (extends, preload, load, scene changes, node
// lookups, signal connects).
//
// # Basic Usage
//
//	ex := graph.New()
//	nodes, edges := ex.Extract(tenant, "scenes/main.tscn", content)
//
//	for _, e := range edges {
//	    fmt.Printf("%s -[%s %.1f]-> %s\n", e.SrcID, e.Kind, e.Strength, e.DstID)
//	}
//
// # Addressing
//
// Node ids are deterministic address hashes (types.FileNodeID and
// types.SceneNodeID), so edges can target files that are not indexed yet.
// Such edges stay dangling until the referenced file is indexed, at which
// point its node row lands on the same id and the edge resolves without any
// rewrite.
//
// # Failure Policy
//
// Extraction never returns an error. Malformed headers, unknown reference
// ids, and unparsable lines are skipped; the worst case for a file is its
// File node with no edges. One broken file never affects extraction of
// another.
package graph
