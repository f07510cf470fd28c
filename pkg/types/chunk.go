package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// TextChunk is a contiguous line-range slice of one file's content, the unit
// of embedding and retrieval. Line numbers are 1-indexed and inclusive.
// Chunks of one file are contiguous and cover the whole file; only the
// generic window strategy produces overlapping ranges.
type TextChunk struct {
	Index     int    `json:"chunk_index"`
	Content   string `json:"content"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Validate checks chunk integrity before it is persisted.
func (c *TextChunk) Validate() error {
	if c.Content == "" {
		return ErrEmptyContent
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return ErrInvalidLineRange
	}
	if c.StartLine > c.EndLine {
		return ErrInvalidLineRange
	}
	if c.Index < 0 {
		return ErrInvalidChunkIndex
	}
	return nil
}

// LineCount returns the number of lines the chunk spans.
func (c *TextChunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// FileInput is one file submitted for batch indexing with caller-provided
// content. Hash may be empty, in which case it is computed from Content.
type FileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Hash    string `json:"hash,omitempty"`
}

// HashContent returns the hex-encoded SHA-256 fingerprint of file content.
// The same bytes always produce the same hash, which is what gates
// re-indexing of unchanged files.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
