// Package types provides shared type definitions for the scenedex engine.
//
// This package defines the domain types used across components: tenants,
// text chunks, graph nodes and edges, search results, and indexing
// statistics.
//
// # Tenancy
//
// Every piece of indexed data belongs to exactly one Tenant, the (user,
// project) isolation key:
//
//	tenant := types.Tenant{UserID: "u1", ProjectID: "demo"}
//	if err := tenant.Validate(); err != nil {
//	    return err
//	}
//
// # Chunks
//
// TextChunk is the unit of embedding and retrieval, a 1-indexed inclusive
// line range of one file:
//
//	chunk := types.TextChunk{
//	    Index:     0,
//	    Content:   section,
//	    StartLine: 1,
//	    EndLine:   42,
//	}
//
// The chunks of one file are contiguous and cover the whole file; only the
// generic window strategy overlaps ranges.
//
// # Graph
//
// GraphNode and GraphEdge form a tenant's typed relationship graph. Node ids
// are stable address hashes computed from the tenant and the declared path,
// so an edge can point at a file that has not been indexed yet and resolve
// to the real node later:
//
//	id := types.FileNodeID(tenant, "scenes/main.tscn")
//
// Edge kinds cover scene structure (CHILD_OF, ATTACHES_SCRIPT,
// INSTANTIATES_SCENE, USES_RESOURCE, CONNECTS_SIGNAL:<signal>-><method>)
// and script-derived references (EXTENDS, PRELOADS_RESOURCE, LOADS_RESOURCE,
// CHANGES_SCENE, REFERENCES_NODE), each carrying a strength weight.
//
// # Results and statistics
//
// SearchResponse combines similarity hits with optional graph context;
// IndexStats aggregates a batch run ({total, indexed, skipped, failed,
// removed}) instead of failing the run on a single file.
package types
