package types

import "time"

// IndexStats aggregates the outcome of a batch indexing pass. Single-file
// failures are counted and described here rather than aborting the run.
type IndexStats struct {
	Total   int      `json:"total"`
	Indexed int      `json:"indexed"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Removed int      `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// ProjectStats describes the indexed state of one tenant.
type ProjectStats struct {
	FilesIndexed   int       `json:"files_indexed"`
	TotalChunks    int       `json:"total_chunks"`
	GraphNodes     int       `json:"graph_nodes"`
	GraphEdges     int       `json:"graph_edges"`
	LastIndexed    time.Time `json:"last_indexed,omitempty"`
	Storage        string    `json:"storage"`
	EmbeddingModel string    `json:"embedding_model"`
}
