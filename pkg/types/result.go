package types

import "time"

// SearchResult is a single similarity hit.
type SearchResult struct {
	Rank       int          `json:"rank"`
	FilePath   string       `json:"file_path"`
	ChunkIndex int          `json:"chunk_index"`
	Content    string       `json:"content"`
	StartLine  int          `json:"start_line"`
	EndLine    int          `json:"end_line"`
	Similarity float64      `json:"similarity"`
	Category   FileCategory `json:"category"`
}

// Validate checks result integrity before it is returned to a caller.
func (r *SearchResult) Validate() error {
	if r.Rank < 1 {
		return ErrInvalidRank
	}
	if r.FilePath == "" {
		return ErrMissingFilePath
	}
	if r.Content == "" {
		return ErrEmptyContent
	}
	if r.Similarity < -1 || r.Similarity > 1 {
		return ErrInvalidSimilarity
	}
	return nil
}

// ConnectionSet groups a file's graph neighbors by traversal label,
// "uses_<relationship>" for outgoing edges and "used_by_<relationship>"
// for incoming ones.
type ConnectionSet map[string][]string

// CentralFile is one entry of a centrality ranking.
type CentralFile struct {
	FilePath string  `json:"file_path"`
	Score    float64 `json:"score"`
}

// SearchResponse is the full answer to a search call. Connections and
// CentralFiles are only populated when graph context was requested.
type SearchResponse struct {
	Query        string                   `json:"query"`
	Results      []SearchResult           `json:"results"`
	Connections  map[string]ConnectionSet `json:"connections,omitempty"`
	CentralFiles []CentralFile            `json:"central_files,omitempty"`
	Elapsed      time.Duration            `json:"-"`
	CacheHit     bool                     `json:"-"`
}
