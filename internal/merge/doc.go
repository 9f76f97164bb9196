// Package merge implements the section-merge engine: it inserts new
// certificate records into the correct marker-delimited regions and tables
// of a page's markup text, leaving every other byte untouched.
//
// # Pipeline
//
// One merge call runs a fixed pipeline:
//
//  1. the marker locator finds delimiter-bounded regions,
//  2. the classifier buckets the new records,
//  3. the section parser extracts each region's heading+table pairs and
//     existing rows,
//  4. the planner decides which rows to keep, which to add and how to order
//     them, producing an edit list against original byte offsets,
//  5. the rewriter applies the edits in one pass with a running drift
//     accumulator.
//
// # Usage
//
//	engine, err := merge.New(merge.Options{Strategy: merge.StrategyRebuildSort})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Merge(pageText, records)
//	if err != nil {
//	    // structural impossibility; no edits were applied
//	    return err
//	}
//	fmt.Println(result.Text)
//
// # Merge strategies
//
// Two strategies are supported for an existing table.
//
// StrategyRebuildSort (the default) parses all existing rows, unions them
// with the new rows, re-sorts by parsed date, and re-emits the full table.
// Tables stay globally date-ordered across merges; existing row formatting
// is normalized by the codec.
//
// StrategyAppendOnly locates the table's closing tag and inserts the new row
// fragments immediately before it. Existing rows stay byte-for-byte
// untouched, at the cost of tables being unsorted after the first merge.
//
// # Guarantees
//
// Byte ranges of the original document outside the edited ranges appear
// unchanged and in the same relative order in the output. When no regions
// exist at all the merge degrades to a strict append after the trimmed
// document, which never reads or rewrites any existing byte range. A failed
// merge applies nothing: the call is all-or-nothing.
package merge
