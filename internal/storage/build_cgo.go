//go:build sqlite_vec
// +build sqlite_vec

package storage

// Native build: cgo SQLite with the sqlite-vec extension loaded into every
// connection, so similarity scoring runs as SQL vec_distance_cosine instead
// of the Go fallback.
//
//	CGO_ENABLED=1 go build -tags sqlite_vec ./...

import (
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

const (
	// DriverName is the database/sql driver this build registers
	DriverName = "sqlite3"

	// VectorExtensionAvailable reports whether vec_distance_cosine exists
	VectorExtensionAvailable = true

	// BuildMode describes the compiled storage backend
	BuildMode = "cgo"
)
