// Package types provides shared type definitions for the certpage MCP server.
//
// This package defines the domain types used across the merge engine:
// records, regions, sections, and diagnostics.
//
// # Core Types
//
// Record represents one structured item to be merged into a table:
//
//	rec := types.Record{
//	    Category:   "Sectigo RSA Domain Validation Secure Server CA",
//	    PrimaryKey: "www.example.com",
//	    SortKey:    "2026-03-01",
//	    Attributes: []types.Attribute{
//	        {Name: "Issuer", Value: "Sectigo"},
//	        {Name: "SANs", Values: []string{"example.com", "www.example.com"}},
//	    },
//	}
//
// Region is a named, marker-delimited byte range of a document; Section is a
// heading + table pair found inside a region (or in the bare document when no
// regions exist). Both carry byte offsets into the original text so the
// rewriter can produce minimal diffs.
//
// # Diagnostics
//
// Parsing irregularities the engine recovers from (missing end markers,
// ambiguous dates, buckets with no region) are returned as Diagnostic values
// alongside the merge result instead of being logged, keeping the engine a
// pure function:
//
//	result, err := engine.Merge(doc, records)
//	for _, d := range result.Diagnostics {
//	    log.Printf("merge warning: %s", d)
//	}
//
// The only fatal condition is ErrMalformedDocument; everything else is
// recovered locally per the rules in the component packages.
package types
