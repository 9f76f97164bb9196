package merge

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/certkit/certpage-mcp/internal/classifier"
	"github.com/certkit/certpage-mcp/internal/dates"
	"github.com/certkit/certpage-mcp/internal/rowcodec"
	"github.com/certkit/certpage-mcp/internal/sections"
	"github.com/certkit/certpage-mcp/pkg/types"
)

// Strategy selects how records are merged into an existing table
type Strategy string

const (
	// StrategyRebuildSort parses all existing rows, unions them with the
	// new rows, re-sorts by date, and re-emits the full table. Tables stay
	// globally date-ordered; row formatting is normalized by the codec.
	StrategyRebuildSort Strategy = "rebuild_sort"

	// StrategyAppendOnly inserts new row fragments immediately before the
	// table's closing tag, leaving existing rows byte-for-byte untouched.
	// Zero risk to existing bytes, but tables end up unsorted across merges.
	StrategyAppendOnly Strategy = "append_only"
)

// ParseStrategy converts configuration text to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyRebuildSort, "":
		return StrategyRebuildSort, nil
	case StrategyAppendOnly:
		return StrategyAppendOnly, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q", s)
	}
}

// Options configures an Engine
type Options struct {
	Strategy        Strategy
	Classifier      *classifier.Classifier
	Codec           *rowcodec.Codec
	SectionTemplate string // text/template for generated sections, "" = default
	HeadingLevel    int    // level for generated headings, 0 = default
}

// Engine merges record batches into document text. It is a pure, synchronous
// transform: one call takes one immutable document snapshot and one batch of
// records and returns new text plus diagnostics. It holds no state across
// calls and performs no I/O.
type Engine struct {
	opts   Options
	parser *sections.Parser
	tmpl   *template.Template
}

// New creates an Engine. Zero-value options get defaults: rebuild-and-sort
// strategy, built-in classifier rules, the default row codec.
func New(opts Options) (*Engine, error) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyRebuildSort
	}
	if opts.Strategy != StrategyRebuildSort && opts.Strategy != StrategyAppendOnly {
		return nil, fmt.Errorf("unknown merge strategy %q", opts.Strategy)
	}
	if opts.Classifier == nil {
		opts.Classifier = classifier.New()
	}
	if opts.Codec == nil {
		opts.Codec = rowcodec.Default()
	}
	if opts.HeadingLevel < 1 || opts.HeadingLevel > 6 {
		opts.HeadingLevel = DefaultHeadingLevel
	}

	tmpl, err := parseSectionTemplate(opts.SectionTemplate)
	if err != nil {
		return nil, err
	}

	return &Engine{
		opts:   opts,
		parser: sections.NewParser(opts.Codec),
		tmpl:   tmpl,
	}, nil
}

// Default returns an Engine with default options
func Default() *Engine {
	e, err := New(Options{})
	if err != nil {
		// The default options are statically valid
		panic(err)
	}
	return e
}

// Result is the outcome of one merge call
type Result struct {
	// Text is the complete new document
	Text string

	// Diagnostics lists the irregularities recovered from during the merge
	Diagnostics []types.Diagnostic

	// RowsAdded is the number of records placed in the document
	RowsAdded int

	// RegionsTouched counts the regions that received an edit
	RegionsTouched int

	// FallbackUsed is set when no regions were found and the merge degraded
	// to append-only insertion after the document
	FallbackUsed bool
}

// Merge inserts the given records into the correct regions and tables of the
// document, grouped by classifier bucket and ordered by parsed date, leaving
// every byte outside the edited ranges untouched.
//
// An empty batch returns the document unchanged. The only error surfaced is
// a structural impossibility (ErrMalformedDocument); in that case no edits
// are applied — the merge is all-or-nothing per call.
func (e *Engine) Merge(doc string, records []types.Record) (*Result, error) {
	result := &Result{Text: doc}
	if len(records) == 0 {
		return result, nil
	}

	groups := e.groupRecords(records, result)

	regions, markerDiags := findRegions(doc)
	result.Diagnostics = append(result.Diagnostics, markerDiags...)

	if len(regions) == 0 {
		// Degrade to strict append-only insertion: never reads or rewrites
		// any existing byte range, at the cost of organization.
		text, err := e.appendFallback(doc, groups)
		if err != nil {
			return nil, err
		}
		result.Text = text
		result.RowsAdded = len(records)
		result.FallbackUsed = true
		result.Diagnostics = append(result.Diagnostics,
			types.Diagf(types.DiagFallbackAppend, "no regions found, %d record(s) appended after the document", len(records)))
		return result, nil
	}

	edits, err := e.plan(doc, regions, groups, result)
	if err != nil {
		return nil, err
	}

	text, err := applyEdits(doc, edits)
	if err != nil {
		return nil, err
	}

	result.Text = text
	result.RowsAdded = len(records)
	return result, nil
}

// group is one bucket's pending records, in input order
type group struct {
	bucket string
	recs   []types.Record
}

// groupRecords buckets the batch via the classifier, preserving first-seen
// bucket order, and emits date diagnostics per record.
func (e *Engine) groupRecords(records []types.Record, result *Result) []*group {
	var ordered []*group
	index := make(map[string]*group)

	for _, rec := range records {
		bucket := e.opts.Classifier.Classify(rec.Category)

		g, ok := index[bucket]
		if !ok {
			g = &group{bucket: bucket}
			index[bucket] = g
			ordered = append(ordered, g)
		}
		g.recs = append(g.recs, rec)

		if p, ok := dates.Parse(rec.SortKey); !ok {
			if rec.SortKey != "" {
				result.Diagnostics = append(result.Diagnostics,
					types.Diagf(types.DiagUnparseableDate, "record %q: sort key %q matched no date rule, ordered last", rec.PrimaryKey, rec.SortKey))
			}
		} else if p.Ambiguous {
			result.Diagnostics = append(result.Diagnostics,
				types.Diagf(types.DiagAmbiguousDate, "record %q: %q read month-first by fixed heuristic", rec.PrimaryKey, rec.SortKey))
		}
	}

	return ordered
}
