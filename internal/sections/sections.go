package sections

import (
	"fmt"
	"html"
	"strings"

	"github.com/certkit/certpage-mcp/internal/rowcodec"
	"github.com/certkit/certpage-mcp/pkg/types"
)

// Parser locates heading+table pairs in raw markup text without building a
// document object model: headings and table tags are found by scanning, so
// every section keeps exact byte offsets into the original buffer and the
// rewriter can leave untouched bytes untouched.
type Parser struct {
	codec *rowcodec.Codec
}

// NewParser creates a Parser that decodes data rows with the given codec
func NewParser(codec *rowcodec.Codec) *Parser {
	if codec == nil {
		codec = rowcodec.Default()
	}
	return &Parser{codec: codec}
}

// Parse finds heading elements (level 1-6) and, for each, the first
// following table before the next heading. Data rows are decoded via the row
// codec; rows containing header cells decode to nil and are skipped. The
// exact original heading markup is preserved in Section.HeadingRaw.
//
// base is the absolute offset of text within the enclosing document, so the
// returned sections carry absolute offsets. A table whose closing tag cannot
// be found is a structural impossibility and returns ErrMalformedDocument.
func (p *Parser) Parse(text string, base int) ([]types.Section, error) {
	lower := strings.ToLower(text)
	heads := findHeadings(text, lower)

	var result []types.Section
	for i, h := range heads {
		searchEnd := len(text)
		if i+1 < len(heads) {
			searchEnd = heads[i+1].start
		}

		sec := types.Section{
			Label:      h.label,
			Level:      h.level,
			HeadingRaw: text[h.start:h.end],
			Start:      base + h.start,
			End:        base + h.end,
		}

		tableStart := indexTag(lower[h.end:searchEnd], "<table")
		if tableStart >= 0 {
			tableStart += h.end
			closing := strings.Index(lower[tableStart:searchEnd], "</table>")
			if closing < 0 {
				return nil, fmt.Errorf("%w: table at offset %d has no closing tag",
					types.ErrMalformedDocument, base+tableStart)
			}
			closingTagStart := tableStart + closing
			tableEnd := closingTagStart + len("</table>")

			sec.HasTable = true
			sec.TableStart = base + tableStart
			sec.ClosingTagStart = base + closingTagStart
			sec.TableEnd = base + tableEnd
			sec.End = base + tableEnd
			sec.Rows = p.decodeRows(text[tableStart:closingTagStart], lower[tableStart:closingTagStart])
		}

		result = append(result, sec)
	}

	return result, nil
}

// decodeRows extracts data rows from table markup. Header rows and anything
// the codec rejects are skipped, never treated as failures.
func (p *Parser) decodeRows(table, lowerTable string) []types.Record {
	var rows []types.Record

	pos := 0
	for {
		open := indexTag(lowerTable[pos:], "<tr")
		if open < 0 {
			break
		}
		open += pos

		closeRel := strings.Index(lowerTable[open:], "</tr>")
		if closeRel < 0 {
			break
		}
		end := open + closeRel + len("</tr>")
		pos = end

		if rec := p.codec.Decode(table[open:end]); rec != nil {
			rows = append(rows, *rec)
		}
	}

	return rows
}

// heading is one located heading element
type heading struct {
	level int
	start int // offset of '<'
	end   int // offset past the closing tag
	label string
}

// findHeadings scans for <h1>..<h6> elements. lower is the pre-lowered copy
// of text used for matching; slices are taken from text to preserve the
// original bytes.
func findHeadings(text, lower string) []heading {
	var heads []heading

	pos := 0
	for {
		rel := strings.Index(lower[pos:], "<h")
		if rel < 0 {
			break
		}
		start := pos + rel
		pos = start + 2

		if start+4 > len(lower) {
			break
		}
		level := int(lower[start+2] - '0')
		if level < 1 || level > 6 {
			continue
		}
		// Must be a real tag boundary: <h2> or <h2 attr...>
		if next := lower[start+3]; next != '>' && next != ' ' && next != '\t' && next != '\n' {
			continue
		}

		openEnd := strings.IndexByte(lower[start:], '>')
		if openEnd < 0 {
			break
		}
		openEnd += start + 1

		closeTag := fmt.Sprintf("</h%d>", level)
		closeRel := strings.Index(lower[openEnd:], closeTag)
		if closeRel < 0 {
			// Unterminated heading; skip it rather than guessing bounds
			continue
		}
		inner := text[openEnd : openEnd+closeRel]
		end := openEnd + closeRel + len(closeTag)

		heads = append(heads, heading{
			level: level,
			start: start,
			end:   end,
			label: strings.TrimSpace(html.UnescapeString(stripTags(inner))),
		})
		pos = end
	}

	return heads
}

// stripTags removes markup elements from heading text, keeping only the
// character data
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// indexTag finds an element open tag in lowered text, requiring a tag
// boundary after the name so "<table" does not match inside another name
func indexTag(lower, tag string) int {
	pos := 0
	for {
		rel := strings.Index(lower[pos:], tag)
		if rel < 0 {
			return -1
		}
		at := pos + rel
		next := at + len(tag)
		if next >= len(lower) || lower[next] == '>' || lower[next] == ' ' || lower[next] == '\t' || lower[next] == '\n' || lower[next] == '/' {
			return at
		}
		pos = at + len(tag)
	}
}

// HasAnyTable is a cheap structural probe: it reports whether the document
// contains at least one table element, without parsing anything else.
// Callers use it before deciding whether a merge will create a fresh table.
func HasAnyTable(doc string) bool {
	return indexTag(strings.ToLower(doc), "<table") >= 0
}
