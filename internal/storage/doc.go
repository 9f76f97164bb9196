// Package storage persists the server's local state in SQLite: per-page
// merge preferences, named section templates, and a history of publishes.
//
// Two driver configurations are supported via build tags. The default build
// uses the pure Go modernc.org/sqlite driver and needs no C compiler; the
// cgosqlite tag switches to github.com/mattn/go-sqlite3.
//
// The schema is versioned through the schema_version table and applied by
// ApplyMigrations on open.
package storage
