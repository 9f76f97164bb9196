//go:build cgosqlite
// +build cgosqlite

package storage

// This file is compiled when building with CGO and the cgosqlite tag.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "cgosqlite" ./...
//
// The CGO driver is faster and battle-tested; use it for long-running
// deployments.
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
