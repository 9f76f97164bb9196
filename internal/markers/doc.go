// Package markers locates named delimiter pairs in raw page text.
//
// A region is bounded by a start and end marker comment sharing a name:
//
//	<!-- CERTS:SECTIGO:START -->
//	...region content...
//	<!-- CERTS:SECTIGO:END -->
//
// Two dialects coexist in page history and are tried in fixed priority
// order: the wrapped dialect (each marker comment inside its own <p>
// element, the way the page store normalizes comments) first across the
// whole document, then the plain inline dialect only if the wrapped scan
// finds zero regions.
//
// A start marker with no matching end marker excludes that region and emits
// a diagnostic; it is never fatal. Regions never overlap: when candidates
// collide, the first discovered wins.
package markers
