package types

import "fmt"

// DiagnosticCode identifies the kind of non-fatal irregularity the engine
// recovered from while merging
type DiagnosticCode string

const (
	// DiagMissingEndMarker: a start marker had no matching end marker and
	// the region was excluded from the merge
	DiagMissingEndMarker DiagnosticCode = "missing_end_marker"

	// DiagOverlappingMarkers: a marker pair overlapped an earlier region
	// and was skipped
	DiagOverlappingMarkers DiagnosticCode = "overlapping_markers"

	// DiagAmbiguousDate: a sort key matched the month-first rule but could
	// also be read day-first; the fixed heuristic was applied
	DiagAmbiguousDate DiagnosticCode = "ambiguous_date"

	// DiagUnparseableDate: a sort key matched no date rule and the record
	// was ordered after all parseable records
	DiagUnparseableDate DiagnosticCode = "unparseable_date"

	// DiagNoRegionForBucket: records were classified into a bucket with no
	// matching region and were appended after the document instead
	DiagNoRegionForBucket DiagnosticCode = "no_region_for_bucket"

	// DiagFallbackAppend: the document had no regions at all and the merge
	// degraded to append-only insertion
	DiagFallbackAppend DiagnosticCode = "fallback_append"
)

// Diagnostic is a non-fatal irregularity surfaced alongside a merge result.
// The engine returns diagnostics as values rather than logging them, so the
// caller decides how warnings reach an operator.
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
}

// Diagf creates a Diagnostic with a formatted message
func Diagf(code DiagnosticCode, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}
