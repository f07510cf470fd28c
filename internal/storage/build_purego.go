//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// Default build: pure Go SQLite, no C toolchain needed. Vector similarity
// is scored in Go (vector_ops.go fallback path), which is fine for the
// project sizes this engine targets.
//
//	CGO_ENABLED=0 go build ./...
//
// For native vector scoring build with the sqlite_vec tag instead
// (build_cgo.go).

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver this build registers
	DriverName = "sqlite"

	// VectorExtensionAvailable reports whether vec_distance_cosine exists
	VectorExtensionAvailable = false

	// BuildMode describes the compiled storage backend
	BuildMode = "purego"
)
