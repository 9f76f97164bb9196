package types

import "errors"

// Region is a named, delimiter-bounded byte range of a document dedicated to
// one classification bucket. Offsets index into the original document text:
// Start/End span the whole region including its markers, ContentStart and
// ContentEnd bound the text between the markers.
type Region struct {
	Name         string
	Start        int
	End          int
	ContentStart int
	ContentEnd   int
}

// Content returns the text between the region's markers
func (rg *Region) Content(doc string) string {
	return doc[rg.ContentStart:rg.ContentEnd]
}

// Validate checks the region's offset invariant:
// Start <= ContentStart <= ContentEnd <= End
func (rg *Region) Validate() error {
	if rg.Name == "" {
		return errors.New("region name is required")
	}

	if rg.Start < 0 {
		return errors.New("region start must be non-negative")
	}

	if rg.Start > rg.ContentStart || rg.ContentStart > rg.ContentEnd || rg.ContentEnd > rg.End {
		return errors.New("region offsets must satisfy start <= contentStart <= contentEnd <= end")
	}

	return nil
}

// Section is a heading + table pair, found either inside a Region or
// directly in the document when no Regions exist. Offsets are absolute
// positions in the document text.
type Section struct {
	// Label is the heading text with markup stripped and entities decoded
	Label string

	// Level is the heading level, 1..6
	Level int

	// HeadingRaw is the exact original heading markup, preserved so a merge
	// that keeps the heading reproduces it byte for byte
	HeadingRaw string

	// Rows holds the decoded data rows of the section's table, in original
	// document order before a merge
	Rows []Record

	// Start/End bound the whole section (heading through table end)
	Start int
	End   int

	// Table offsets; meaningful only when HasTable is true. TableStart is
	// the first byte of the opening table tag, TableEnd is one past the
	// closing tag, ClosingTagStart is the first byte of the closing tag.
	HasTable        bool
	TableStart      int
	TableEnd        int
	ClosingTagStart int
}

// Validate checks section invariants
func (s *Section) Validate() error {
	if s.Level < 1 || s.Level > 6 {
		return errors.New("heading level must be between 1 and 6")
	}

	if s.Start > s.End {
		return errors.New("section start must not exceed end")
	}

	if s.HasTable && (s.TableStart < s.Start || s.TableEnd > s.End || s.ClosingTagStart >= s.TableEnd) {
		return errors.New("table offsets must lie within the section")
	}

	return nil
}
