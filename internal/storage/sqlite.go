package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Page settings operations

// GetPageSettings returns the stored preferences for a page, or ErrNotFound
func (s *SQLiteStorage) GetPageSettings(ctx context.Context, pageID string) (*PageSettings, error) {
	query := `
		SELECT page_id, merge_strategy, updated_at
		FROM page_settings
		WHERE page_id = ?
	`

	settings := &PageSettings{}
	err := s.db.QueryRowContext(ctx, query, pageID).Scan(
		&settings.PageID, &settings.MergeStrategy, &settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("page settings for %s: %w", pageID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page settings: %w", err)
	}

	return settings, nil
}

// SetPageSettings creates or replaces the preferences for a page
func (s *SQLiteStorage) SetPageSettings(ctx context.Context, settings *PageSettings) error {
	if settings == nil || settings.PageID == "" {
		return errors.New("page settings with page_id are required")
	}

	query := `
		INSERT INTO page_settings (page_id, merge_strategy, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			merge_strategy = excluded.merge_strategy,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	if _, err := s.db.ExecContext(ctx, query, settings.PageID, settings.MergeStrategy, now); err != nil {
		return fmt.Errorf("failed to set page settings: %w", err)
	}
	settings.UpdatedAt = now

	return nil
}

// Template operations

// GetTemplate returns a named template, or ErrNotFound
func (s *SQLiteStorage) GetTemplate(ctx context.Context, name string) (*Template, error) {
	query := `
		SELECT name, content, updated_at
		FROM templates
		WHERE name = ?
	`

	tmpl := &Template{}
	err := s.db.QueryRowContext(ctx, query, name).Scan(&tmpl.Name, &tmpl.Content, &tmpl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return tmpl, nil
}

// PutTemplate creates or replaces a named template
func (s *SQLiteStorage) PutTemplate(ctx context.Context, tmpl *Template) error {
	if tmpl == nil || tmpl.Name == "" {
		return errors.New("template with name is required")
	}

	query := `
		INSERT INTO templates (name, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	if _, err := s.db.ExecContext(ctx, query, tmpl.Name, tmpl.Content, now); err != nil {
		return fmt.Errorf("failed to put template: %w", err)
	}
	tmpl.UpdatedAt = now

	return nil
}

// History operations

// AddHistory inserts a publish record, assigning an ID and timestamp when
// the caller left them empty
func (s *SQLiteStorage) AddHistory(ctx context.Context, entry *HistoryEntry) error {
	if entry == nil || entry.PageID == "" {
		return errors.New("history entry with page_id is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO merge_history (id, page_id, version_before, version_after, records_added, buckets, diagnostics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.PageID, entry.VersionBefore, entry.VersionAfter,
		entry.RecordsAdded, entry.Buckets, entry.Diagnostics, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}

	return nil
}

// ListHistory returns a page's publish records, newest first. A limit of
// zero or less means no limit.
func (s *SQLiteStorage) ListHistory(ctx context.Context, pageID string, limit int) ([]*HistoryEntry, error) {
	query := `
		SELECT id, page_id, version_before, version_after, records_added, buckets, diagnostics, created_at
		FROM merge_history
		WHERE page_id = ?
		ORDER BY created_at DESC, id
	`
	args := []interface{}{pageID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*HistoryEntry
	for rows.Next() {
		entry := &HistoryEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.PageID, &entry.VersionBefore, &entry.VersionAfter,
			&entry.RecordsAdded, &entry.Buckets, &entry.Diagnostics, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
