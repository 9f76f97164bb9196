//go:build !cgosqlite
// +build !cgosqlite

package storage

// This file is compiled when building without the cgosqlite tag.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go implementation needs no C compiler and cross-compiles
// anywhere; it is the default.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
