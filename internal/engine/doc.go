// Package engine assembles the indexing and search pipeline behind one
// caller-facing service.
//
// The Service owns the storage backend, the embedding client, the indexer,
// and the searcher, wiring them from configuration and keeping them
// consistent: every write path (indexing, removal, clearing) invalidates
// the searcher's cached state for the affected tenant, so reads always
// observe the latest index. Both the MCP server and the CLI sit directly
// on this facade.
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	svc, err := engine.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	tenant := types.Tenant{UserID: "u1", ProjectID: "p1"}
//	stats, err := svc.IndexProject(ctx, tenant, "/path/to/project", false)
//
//	resp, err := svc.Search(ctx, tenant, searcher.SearchRequest{
//	    Query:     "player movement",
//	    WithGraph: true,
//	})
//
// # Watch Mode
//
// Watch blocks and re-indexes as files change until the context is
// cancelled:
//
//	err := svc.Watch(ctx, tenant, "/path/to/project")
//
// Watch-triggered writes flow through the same Service methods as direct
// calls, so they invalidate caches identically.
package engine
