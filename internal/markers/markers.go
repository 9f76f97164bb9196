package markers

import (
	"strings"

	"github.com/certkit/certpage-mcp/pkg/types"
)

// Marker text grammar: <!-- CERTS:<NAME>:START --> ... <!-- CERTS:<NAME>:END -->
const (
	markerPrefix = "CERTS:"
	kindStart    = "START"
	kindEnd      = "END"

	commentOpen  = "<!--"
	commentClose = "-->"
)

// Dialect identifies which delimiter dialect produced a region. Two dialects
// coexist in page history: newer pages wrap each marker comment in its own
// paragraph (the storage format normalizes comments that way), older pages
// carry the bare comment inline.
type Dialect string

const (
	// DialectWrapped matches <p><!-- CERTS:X:START --></p>. Tried first
	// across the whole document.
	DialectWrapped Dialect = "wrapped"

	// DialectPlain matches the bare comment. Used only when the wrapped
	// dialect finds zero regions.
	DialectPlain Dialect = "plain"
)

// dialects in fixed priority order
var dialects = []Dialect{DialectWrapped, DialectPlain}

// marker is one recognized delimiter occurrence. Start/End span the whole
// marker including any dialect wrapping.
type marker struct {
	name  string
	kind  string
	start int
	end   int
}

// FindRegions scans raw document text for named delimiter pairs and returns
// ordered, non-overlapping regions with byte offsets, plus diagnostics for
// markers that were excluded: a start marker with no matching end marker is
// skipped (not fatal), and when candidates overlap only the first discovered
// wins.
//
// Every wrapped marker is also a valid plain marker, so falling back to the
// plain dialect never hides a delimiter the wrapped scan saw.
func FindRegions(doc string) ([]types.Region, []types.Diagnostic) {
	for _, d := range dialects {
		regions, diags := pairRegions(scan(doc, d))
		if len(regions) > 0 || d == DialectPlain {
			return regions, diags
		}
	}
	return nil, nil
}

// scan finds all markers of one dialect, in document order
func scan(doc string, d Dialect) []marker {
	var found []marker

	pos := 0
	for {
		rel := strings.Index(doc[pos:], commentOpen)
		if rel < 0 {
			break
		}
		open := pos + rel

		closeRel := strings.Index(doc[open:], commentClose)
		if closeRel < 0 {
			break
		}
		commentEnd := open + closeRel + len(commentClose)
		pos = commentEnd

		inner := strings.TrimSpace(doc[open+len(commentOpen) : open+closeRel])
		name, kind, ok := parseMarkerText(inner)
		if !ok {
			continue
		}

		m := marker{name: name, kind: kind, start: open, end: commentEnd}
		if d == DialectWrapped {
			if !endsWithFold(doc[:m.start], "<p>") || !hasTagAt(doc, m.end, "</p>") {
				continue
			}
			m.start -= len("<p>")
			m.end += len("</p>")
		}
		found = append(found, m)
	}

	return found
}

// parseMarkerText parses "CERTS:<NAME>:<KIND>" comment text
func parseMarkerText(inner string) (name, kind string, ok bool) {
	if !strings.HasPrefix(inner, markerPrefix) {
		return "", "", false
	}
	parts := strings.Split(inner, ":")
	if len(parts) != 3 {
		return "", "", false
	}
	name = strings.TrimSpace(parts[1])
	kind = strings.TrimSpace(parts[2])
	if name == "" || (kind != kindStart && kind != kindEnd) {
		return "", "", false
	}
	return name, kind, true
}

// endsWithFold reports whether s ends with the given tag, ASCII
// case-insensitively
func endsWithFold(s, tag string) bool {
	if len(s) < len(tag) {
		return false
	}
	return strings.EqualFold(s[len(s)-len(tag):], tag)
}

// hasTagAt reports whether doc carries the given tag at offset
func hasTagAt(doc string, offset int, tag string) bool {
	if offset+len(tag) > len(doc) {
		return false
	}
	return strings.EqualFold(doc[offset:offset+len(tag)], tag)
}

// pairRegions matches start markers to their end markers and enforces
// non-overlap. Unmatched end markers are ignored.
func pairRegions(found []marker) ([]types.Region, []types.Diagnostic) {
	var regions []types.Region
	var diags []types.Diagnostic

	used := make([]bool, len(found))
	lastEnd := 0

	for i, m := range found {
		if used[i] || m.kind != kindStart {
			continue
		}
		used[i] = true

		if m.start < lastEnd {
			diags = append(diags, types.Diagf(types.DiagOverlappingMarkers,
				"start marker %q at offset %d lies inside an earlier region, skipped", m.name, m.start))
			continue
		}

		endIdx := -1
		for j := i + 1; j < len(found); j++ {
			if !used[j] && found[j].kind == kindEnd && found[j].name == m.name {
				endIdx = j
				break
			}
		}
		if endIdx < 0 {
			diags = append(diags, types.Diagf(types.DiagMissingEndMarker,
				"start marker %q at offset %d has no matching end marker, region excluded", m.name, m.start))
			continue
		}
		used[endIdx] = true

		regions = append(regions, types.Region{
			Name:         m.name,
			Start:        m.start,
			ContentStart: m.end,
			ContentEnd:   found[endIdx].start,
			End:          found[endIdx].end,
		})
		lastEnd = found[endIdx].end
	}

	return regions, diags
}
