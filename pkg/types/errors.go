package types

import "errors"

// Domain errors for type and argument validation
var (
	// Tenant errors
	ErrMissingUserID    = errors.New("user_id is required")
	ErrMissingProjectID = errors.New("project_id is required")

	// Chunk errors
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrInvalidLineRange  = errors.New("line range must be positive with start <= end")
	ErrInvalidChunkIndex = errors.New("chunk index must be >= 0")

	// Search errors
	ErrEmptyQuery        = errors.New("query cannot be empty")
	ErrInvalidRank       = errors.New("rank must be >= 1")
	ErrInvalidSimilarity = errors.New("similarity must be between -1 and 1")
	ErrMissingFilePath   = errors.New("file path is required")
	ErrInvalidCategory   = errors.New("unknown category filter")
)
