package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPageSettings_RoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	err := s.SetPageSettings(ctx, &PageSettings{PageID: "12345", MergeStrategy: "append_only"})
	require.NoError(t, err)

	got, err := s.GetPageSettings(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", got.PageID)
	assert.Equal(t, "append_only", got.MergeStrategy)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestPageSettings_NotFound(t *testing.T) {
	s := testStorage(t)

	_, err := s.GetPageSettings(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPageSettings_Upsert(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SetPageSettings(ctx, &PageSettings{PageID: "p1", MergeStrategy: "rebuild_sort"}))
	require.NoError(t, s.SetPageSettings(ctx, &PageSettings{PageID: "p1", MergeStrategy: "append_only"}))

	got, err := s.GetPageSettings(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "append_only", got.MergeStrategy)
}

func TestPageSettings_Validation(t *testing.T) {
	s := testStorage(t)

	assert.Error(t, s.SetPageSettings(context.Background(), nil))
	assert.Error(t, s.SetPageSettings(context.Background(), &PageSettings{}))
}

func TestTemplate_RoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	content := "<h3>{{.Label}}</h3>\n{{.Table}}"
	require.NoError(t, s.PutTemplate(ctx, &Template{Name: "section", Content: content}))

	got, err := s.GetTemplate(ctx, "section")
	require.NoError(t, err)
	assert.Equal(t, "section", got.Name)
	assert.Equal(t, content, got.Content)
}

func TestTemplate_Overwrite(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.PutTemplate(ctx, &Template{Name: "section", Content: "v1"}))
	require.NoError(t, s.PutTemplate(ctx, &Template{Name: "section", Content: "v2"}))

	got, err := s.GetTemplate(ctx, "section")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
}

func TestTemplate_NotFound(t *testing.T) {
	s := testStorage(t)

	_, err := s.GetTemplate(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHistory_AddAssignsID(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	entry := &HistoryEntry{PageID: "p1", VersionBefore: 3, VersionAfter: 4, RecordsAdded: 2}
	require.NoError(t, s.AddHistory(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestHistory_ListNewestFirst(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := s.AddHistory(ctx, &HistoryEntry{
			PageID:        "p1",
			VersionBefore: i,
			VersionAfter:  i + 1,
			RecordsAdded:  1,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	// Another page's entries must not leak in
	require.NoError(t, s.AddHistory(ctx, &HistoryEntry{PageID: "p2", VersionBefore: 0, VersionAfter: 1}))

	entries, err := s.ListHistory(ctx, "p1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].VersionAfter)
	assert.Equal(t, 1, entries[2].VersionAfter)

	limited, err := s.ListHistory(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestHistory_Validation(t *testing.T) {
	s := testStorage(t)

	assert.Error(t, s.AddHistory(context.Background(), nil))
	assert.Error(t, s.AddHistory(context.Background(), &HistoryEntry{}))
}

func TestMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.SetPageSettings(context.Background(), &PageSettings{PageID: "p1", MergeStrategy: "append_only"}))
	require.NoError(t, s1.Close())

	// Reopening must not re-run migrations or lose data
	s2, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	got, err := s2.GetPageSettings(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "append_only", got.MergeStrategy)
}
