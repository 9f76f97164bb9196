package merge

import (
	"fmt"
	"strings"

	"github.com/certkit/certpage-mcp/internal/dates"
	"github.com/certkit/certpage-mcp/internal/markers"
	"github.com/certkit/certpage-mcp/pkg/types"
)

func findRegions(doc string) ([]types.Region, []types.Diagnostic) {
	return markers.FindRegions(doc)
}

// plan decides, per region, which rows to keep, which to add, and the exact
// byte ranges to replace. All edits are computed against original offsets;
// drift correction happens later in the rewriter.
func (e *Engine) plan(doc string, regions []types.Region, groups []*group, result *Result) ([]Edit, error) {
	pending := make(map[string]*group, len(groups))
	for _, g := range groups {
		pending[g.bucket] = g
	}

	var edits []Edit

	for _, rg := range regions {
		secs, err := e.parser.Parse(rg.Content(doc), rg.ContentStart)
		if err != nil {
			return nil, err
		}

		regionBucket := strings.ToUpper(rg.Name)
		touched := false

		switch {
		case len(secs) == 0:
			// Empty region: synthesize a minimal heading+table fragment
			// holding only the new records, inserted at the end of the
			// region content so any stray existing bytes survive.
			g, ok := pending[regionBucket]
			if !ok {
				continue
			}
			frag, err := e.renderSection(e.opts.Classifier.Label(g.bucket), sortedCopy(g.recs))
			if err != nil {
				return nil, err
			}
			edits = append(edits, Edit{Start: rg.ContentEnd, End: rg.ContentEnd, Replacement: "\n" + frag + "\n"})
			delete(pending, regionBucket)
			touched = true

		case len(secs) == 1:
			// Steady state: one heading+table pair per bucket region
			g, ok := pending[regionBucket]
			if !ok {
				continue
			}
			edit, err := e.mergeIntoSection(&secs[0], g.recs)
			if err != nil {
				return nil, err
			}
			edits = append(edits, edit)
			delete(pending, regionBucket)
			touched = true

		default:
			// Legacy layout: several CA sub-headings inside one region.
			// Group by heading text instead of by region.
			for i := range secs {
				bucket := e.opts.Classifier.Classify(secs[i].Label)
				g, ok := pending[bucket]
				if !ok {
					continue
				}
				edit, err := e.mergeIntoSection(&secs[i], g.recs)
				if err != nil {
					return nil, err
				}
				edits = append(edits, edit)
				delete(pending, bucket)
				touched = true
			}

			// Records for the region's own bucket with no matching heading
			// get a fresh section at the end of the region.
			if g, ok := pending[regionBucket]; ok {
				frag, err := e.renderSection(e.opts.Classifier.Label(g.bucket), sortedCopy(g.recs))
				if err != nil {
					return nil, err
				}
				edits = append(edits, Edit{Start: rg.ContentEnd, End: rg.ContentEnd, Replacement: "\n" + frag + "\n"})
				delete(pending, regionBucket)
				touched = true
			}
		}

		if touched {
			result.RegionsTouched++
		}
	}

	// Buckets with no region anywhere: append after the document rather
	// than dropping records.
	var leftoverParts []string
	for _, g := range groups {
		if _, ok := pending[g.bucket]; !ok {
			continue
		}
		frag, err := e.renderSection(e.opts.Classifier.Label(g.bucket), sortedCopy(g.recs))
		if err != nil {
			return nil, err
		}
		leftoverParts = append(leftoverParts, frag)
		result.Diagnostics = append(result.Diagnostics,
			types.Diagf(types.DiagNoRegionForBucket, "no region for bucket %q, %d record(s) appended after the document", g.bucket, len(g.recs)))
	}
	if len(leftoverParts) > 0 {
		edits = append(edits, Edit{
			Start:       len(doc),
			End:         len(doc),
			Replacement: "\n\n" + strings.Join(leftoverParts, "\n\n"),
		})
	}

	return edits, nil
}

// mergeIntoSection produces the edit for merging new records into one
// existing heading+table pair, per the configured strategy.
func (e *Engine) mergeIntoSection(sec *types.Section, recs []types.Record) (Edit, error) {
	if !sec.HasTable {
		return Edit{}, fmt.Errorf("%w: section %q expected a table but has none",
			types.ErrMalformedDocument, sec.Label)
	}

	switch e.opts.Strategy {
	case StrategyAppendOnly:
		// New rows, sorted among themselves, inserted immediately before
		// the closing tag. Existing rows stay byte-for-byte untouched.
		return Edit{
			Start:       sec.ClosingTagStart,
			End:         sec.ClosingTagStart,
			Replacement: e.renderRows(sortedCopy(recs)),
		}, nil
	default:
		// Rebuild-and-sort: union of existing and new rows, re-sorted,
		// re-emitted as a full table. The heading is left untouched.
		all := make([]types.Record, 0, len(sec.Rows)+len(recs))
		all = append(all, sec.Rows...)
		all = append(all, recs...)
		dates.SortRecords(all)
		return Edit{
			Start:       sec.TableStart,
			End:         sec.TableEnd,
			Replacement: e.renderTable(all),
		}, nil
	}
}

// sortedCopy returns the records sorted by date without mutating the input
func sortedCopy(recs []types.Record) []types.Record {
	out := make([]types.Record, len(recs))
	copy(out, recs)
	dates.SortRecords(out)
	return out
}
