// Package indexer coordinates the end-to-end indexing pipeline for project files.
//
// The indexer orchestrates chunking, embedding, storage, and graph
// extraction, managing concurrency and error aggregation for
// production-scale project indexing.
//
// # Basic Usage
//
//	idx := indexer.New(store, embedClient, indexer.Options{})
//
//	stats, err := idx.IndexProject(ctx, tenant, "/path/to/project", false)
//
//	fmt.Printf("Indexed %d of %d files\n", stats.Indexed, stats.Total)
//
// # Indexing Pipeline
//
// Every file moves through the same stages:
//
//  1. Hash Gate: compare the content hash against the stored one, skip unchanged files
//  2. Chunk: split content into line-bounded chunks by file category
//  3. Embed: generate one vector per chunk in provider-sized batches
//  4. Store: replace the file's chunk rows in one transaction
//  5. Extract: rebuild the file's graph nodes and edges
//
// A project run adds a discovery walk before the pipeline and a sweep of
// removed files after it.
//
// # Incremental Indexing
//
// By default, the indexer only processes changed files:
//
//	// First run: processes all files
//	stats1, _ := idx.IndexProject(ctx, tenant, root, false)
//	// Files: 247 indexed, 0 skipped
//
//	// Subsequent run: only changed files
//	stats2, _ := idx.IndexProject(ctx, tenant, root, false)
//	// Files: 3 indexed, 244 skipped
//
// Change detection uses SHA-256 content hashing; force re-indexes
// everything regardless of stored hashes.
//
// # Eligibility
//
// The project walk skips hidden files and directories, generated trees
// (node_modules, build, dist, __pycache__), non-text extensions, files
// over 10MB, and binary content. IndexFile and IndexBatch accept whatever
// path and content the caller provides, so remote callers that already
// filtered their files are not second-guessed.
//
// # Concurrent Processing
//
// Files are indexed through a worker pool bounded at 2x GOMAXPROCS by
// default. Per-file failures are collected into the returned stats rather
// than aborting the run; only context cancellation stops it early. One
// project run per tenant may be active at a time, and concurrent calls
// return ErrIndexingInProgress.
//
// # Watch Mode
//
// A Watcher keeps the index current while files change:
//
//	w, err := indexer.NewWatcher(idx, tenant, root, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	go w.Run(ctx)
//
// Events are debounced so editor save bursts collapse into one indexing
// pass. Changed and created files are re-indexed, deleted files removed.
//
// # Error Handling
//
// Batch operations always return stats:
//
//	stats, err := idx.IndexBatch(ctx, tenant, files, false)
//	// err only for invalid tenants or cancellation
//
//	for _, msg := range stats.Errors {
//	    log.Warn(msg)
//	}
//
// A file whose embedding batch comes back short is failed whole rather
// than partially inserted, so stored rows always align chunk-for-vector.
package indexer
