package publisher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/certkit/certpage-mcp/internal/classifier"
	"github.com/certkit/certpage-mcp/internal/merge"
	"github.com/certkit/certpage-mcp/internal/remote"
	"github.com/certkit/certpage-mcp/internal/storage"
	"github.com/certkit/certpage-mcp/pkg/types"
)

const (
	// MaxConflictRetries bounds how many times a publish reruns the whole
	// fetch-merge-save transaction after a version conflict
	MaxConflictRetries = 3

	// SectionTemplateName is the stored template that overrides the
	// engine's built-in section template
	SectionTemplateName = "section"

	// DefaultBatchConcurrency is how many pages a batch publishes at once
	DefaultBatchConcurrency = 4
)

// ErrConflictRetriesExhausted is returned when every attempt lost the
// version race
var ErrConflictRetriesExhausted = errors.New("conflict retries exhausted")

// Publisher runs the fetch-merge-save transaction against the page store,
// applying per-page preferences from local storage and recording history.
type Publisher struct {
	store    remote.PageStore
	local    storage.Storage
	defaults merge.Options
}

// New creates a Publisher. The defaults are the engine options used for
// pages without stored preferences.
func New(store remote.PageStore, local storage.Storage, defaults merge.Options) *Publisher {
	if defaults.Classifier == nil {
		defaults.Classifier = classifier.New()
	}
	return &Publisher{
		store:    store,
		local:    local,
		defaults: defaults,
	}
}

// PublishResult is the outcome of one successful publish
type PublishResult struct {
	PageID        string
	VersionBefore int
	VersionAfter  int
	Attempts      int
	HistoryID     string
	Merge         *merge.Result
}

// PublishRecords merges a batch of records into one page and saves it.
// A version conflict means another writer got between our fetch and save;
// the merge is discarded and the transaction reruns from a fresh fetch,
// up to MaxConflictRetries times.
func (p *Publisher) PublishRecords(ctx context.Context, pageID string, records []types.Record) (*PublishResult, error) {
	if pageID == "" {
		return nil, errors.New("page id is required")
	}
	if len(records) == 0 {
		return nil, types.ErrEmptyBatch
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	opts, err := p.optionsFor(ctx, pageID)
	if err != nil {
		return nil, err
	}
	engine, err := merge.New(opts)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxConflictRetries; attempt++ {
		page, err := p.store.GetPage(ctx, pageID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %s: %w", pageID, err)
		}

		res, err := engine.Merge(page.Body, records)
		if err != nil {
			return nil, fmt.Errorf("failed to merge into page %s: %w", pageID, err)
		}

		saved, err := p.store.UpdatePage(ctx, &remote.Page{
			ID:      page.ID,
			Title:   page.Title,
			Body:    res.Text,
			Version: page.Version,
		})
		if errors.Is(err, remote.ErrVersionConflict) {
			log.Printf("publish %s: version conflict on attempt %d, refetching", pageID, attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save page %s: %w", pageID, err)
		}

		entry := &storage.HistoryEntry{
			PageID:        pageID,
			VersionBefore: page.Version,
			VersionAfter:  saved.Version,
			RecordsAdded:  res.RowsAdded,
			Buckets:       bucketSummary(opts.Classifier, records),
			Diagnostics:   diagnosticSummary(res.Diagnostics),
		}
		if err := p.local.AddHistory(ctx, entry); err != nil {
			// The publish itself succeeded; losing the audit row is worth a
			// warning, not a failure.
			log.Printf("publish %s: failed to record history: %v", pageID, err)
		}

		return &PublishResult{
			PageID:        pageID,
			VersionBefore: page.Version,
			VersionAfter:  saved.Version,
			Attempts:      attempt,
			HistoryID:     entry.ID,
			Merge:         res,
		}, nil
	}

	return nil, fmt.Errorf("failed to publish page %s after %d attempts: %w", pageID, MaxConflictRetries, ErrConflictRetriesExhausted)
}

// Preview merges a batch against the page's current body without saving
// anything. No version is consumed and no history is written.
func (p *Publisher) Preview(ctx context.Context, pageID string, records []types.Record) (*merge.Result, error) {
	if pageID == "" {
		return nil, errors.New("page id is required")
	}

	opts, err := p.optionsFor(ctx, pageID)
	if err != nil {
		return nil, err
	}
	engine, err := merge.New(opts)
	if err != nil {
		return nil, err
	}

	page, err := p.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageID, err)
	}

	return engine.Merge(page.Body, records)
}

// BatchStats aggregates a multi-page publish
type BatchStats struct {
	PagesPublished int
	RecordsAdded   int
	Diagnostics    int
	Results        []*PublishResult
}

// PublishBatch publishes record batches to multiple pages concurrently.
// The first page to fail cancels the rest.
func (p *Publisher) PublishBatch(ctx context.Context, batches map[string][]types.Record) (*BatchStats, error) {
	if len(batches) == 0 {
		return nil, types.ErrEmptyBatch
	}

	stats := &BatchStats{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultBatchConcurrency)

	for pageID, records := range batches {
		g.Go(func() error {
			res, err := p.PublishRecords(ctx, pageID, records)
			if err != nil {
				return err
			}

			mu.Lock()
			stats.PagesPublished++
			stats.RecordsAdded += res.Merge.RowsAdded
			stats.Diagnostics += len(res.Merge.Diagnostics)
			stats.Results = append(stats.Results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// optionsFor layers a page's stored preferences over the defaults
func (p *Publisher) optionsFor(ctx context.Context, pageID string) (merge.Options, error) {
	opts := p.defaults

	settings, err := p.local.GetPageSettings(ctx, pageID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Defaults apply
	case err != nil:
		return opts, fmt.Errorf("failed to load settings for page %s: %w", pageID, err)
	case settings.MergeStrategy != "":
		strategy, err := merge.ParseStrategy(settings.MergeStrategy)
		if err != nil {
			return opts, fmt.Errorf("page %s has invalid stored strategy: %w", pageID, err)
		}
		opts.Strategy = strategy
	}

	tmpl, err := p.local.GetTemplate(ctx, SectionTemplateName)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Built-in template applies
	case err != nil:
		return opts, fmt.Errorf("failed to load section template: %w", err)
	default:
		opts.SectionTemplate = tmpl.Content
	}

	return opts, nil
}

// bucketSummary lists the distinct buckets a batch touches, in first-seen
// order, for the history row
func bucketSummary(cls *classifier.Classifier, records []types.Record) string {
	var ordered []string
	seen := make(map[string]bool)
	for _, rec := range records {
		bucket := cls.Classify(rec.Category)
		if !seen[bucket] {
			seen[bucket] = true
			ordered = append(ordered, bucket)
		}
	}
	return strings.Join(ordered, ",")
}

func diagnosticSummary(diags []types.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}
