// Package sections locates heading+table pairs in markup text.
//
// The parser scans raw text instead of building a document object model so
// every section keeps exact byte offsets into the original buffer; the merge
// engine needs those offsets to rewrite tables with minimal diffs. Data rows
// are decoded through the row codec, header rows are skipped, and the exact
// original heading markup is preserved for round-trip fidelity.
package sections
