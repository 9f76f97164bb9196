package storage

import (
	"context"
	"time"
)

// PageSettings holds per-page merge preferences. Pages without a row use
// the engine defaults.
type PageSettings struct {
	PageID        string
	MergeStrategy string
	UpdatedAt     time.Time
}

// Template is a named section template for rendering new headings and
// tables. The well-known name "section" overrides the engine default.
type Template struct {
	Name      string
	Content   string
	UpdatedAt time.Time
}

// HistoryEntry records one successful publish against a page
type HistoryEntry struct {
	ID            string
	PageID        string
	VersionBefore int
	VersionAfter  int
	RecordsAdded  int
	Buckets       string
	Diagnostics   string
	CreatedAt     time.Time
}

// Storage is the local persistence layer for settings, templates and
// publish history
type Storage interface {
	// Page settings operations
	GetPageSettings(ctx context.Context, pageID string) (*PageSettings, error)
	SetPageSettings(ctx context.Context, settings *PageSettings) error

	// Template operations
	GetTemplate(ctx context.Context, name string) (*Template, error)
	PutTemplate(ctx context.Context, tmpl *Template) error

	// History operations
	AddHistory(ctx context.Context, entry *HistoryEntry) error
	ListHistory(ctx context.Context, pageID string, limit int) ([]*HistoryEntry, error)

	// Lifecycle
	Close() error
}
