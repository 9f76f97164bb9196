package rowcodec

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/certkit/certpage-mcp/pkg/types"
)

// Fixed leading columns of every certificate table. The remaining columns
// come from the codec's schema.
const (
	ColumnPrimaryKey = "Common Name"
	ColumnSortKey    = "Expires"
)

// Column describes one schema column after the two fixed leading columns
type Column struct {
	Name string
	List bool // list-valued cells render as a nested <ul>
}

// Codec encodes records to table-row fragments and decodes row fragments
// back to records. The column order is fixed by the schema, so
// Decode(Encode(r)) == r for any record whose attributes follow the schema
// (same names, same order, lists where the schema says list).
type Codec struct {
	Columns []Column
}

// Default returns the codec with the standard certificate table schema
func Default() *Codec {
	return &Codec{
		Columns: []Column{
			{Name: "Issuer"},
			{Name: "Serial"},
			{Name: "SANs", List: true},
			{Name: "Notes"},
		},
	}
}

// Encode renders a record as a single <tr> fragment. All text is escaped for
// the five markup metacharacters (& < > " '). The record's Category is not
// rendered: the enclosing region carries it.
func (c *Codec) Encode(r types.Record) string {
	var b strings.Builder
	b.WriteString("<tr>")
	writeScalarCell(&b, r.PrimaryKey)
	writeScalarCell(&b, r.SortKey)

	for _, col := range c.Columns {
		attr, found := r.Attribute(col.Name)
		switch {
		case found && attr.IsList():
			writeListCell(&b, attr.Values)
		case col.List:
			// Schema expects a list but the attribute is scalar or absent;
			// keep a non-empty value as a one-item list so the shape
			// round-trips.
			if found && attr.Value != "" {
				writeListCell(&b, []string{attr.Value})
			} else {
				writeListCell(&b, nil)
			}
		case found:
			writeScalarCell(&b, attr.Value)
		default:
			writeScalarCell(&b, "")
		}
	}

	b.WriteString("</tr>")
	return b.String()
}

func writeScalarCell(b *strings.Builder, text string) {
	b.WriteString("<td>")
	b.WriteString(html.EscapeString(text))
	b.WriteString("</td>")
}

func writeListCell(b *strings.Builder, items []string) {
	b.WriteString("<td><ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	b.WriteString("</ul></td>")
}

// HeaderRow renders the table header row for the codec's schema
func (c *Codec) HeaderRow() string {
	var b strings.Builder
	b.WriteString("<tr><th>")
	b.WriteString(html.EscapeString(ColumnPrimaryKey))
	b.WriteString("</th><th>")
	b.WriteString(html.EscapeString(ColumnSortKey))
	b.WriteString("</th>")
	for _, col := range c.Columns {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(col.Name))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>")
	return b.String()
}

// Decode extracts a record from a <tr> fragment. It returns nil, not an
// error, when the fragment is not a data row: header rows (any <th> cell)
// and rows with fewer than two cells both decode to nil, and the caller
// treats that as "skip", never as failure.
//
// Cells are read in fixed column order; cells beyond the schema are ignored
// and schema columns missing from the row come back as empty attributes. The
// record's Category is left empty, the region supplies it.
func (c *Codec) Decode(fragment string) *types.Record {
	cells, ok := parseRowCells(fragment)
	if !ok || len(cells) < 2 {
		return nil
	}

	rec := &types.Record{
		PrimaryKey: cells[0].text,
		SortKey:    cells[1].text,
	}

	for i, col := range c.Columns {
		attr := types.Attribute{Name: col.Name}
		if i+2 < len(cells) {
			cell := cells[i+2]
			if cell.items != nil {
				attr.Values = cell.items
			} else {
				attr.Value = cell.text
			}
		} else if col.List {
			attr.Values = []string{}
		}
		rec.Attributes = append(rec.Attributes, attr)
	}

	return rec
}

// cell is one decoded table cell: scalar text, or list items when the cell
// contained a nested <ul>
type cell struct {
	text  string
	items []string
}

// parseRowCells parses a row fragment and returns its cells in order.
// ok is false for fragments with no <tr> or containing header cells.
func parseRowCells(fragment string) ([]cell, bool) {
	ctx := &xhtml.Node{Type: xhtml.ElementNode, Data: "tbody", DataAtom: atom.Tbody}
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, false
	}

	row := findElement(nodes, atom.Tr)
	if row == nil {
		return nil, false
	}

	var cells []cell
	for n := row.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xhtml.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Th:
			// Header row, not a data row
			return nil, false
		case atom.Td:
			cells = append(cells, decodeCell(n))
		}
	}
	return cells, true
}

func decodeCell(td *xhtml.Node) cell {
	if list := findChildElement(td, atom.Ul); list != nil {
		items := []string{}
		for li := list.FirstChild; li != nil; li = li.NextSibling {
			if li.Type == xhtml.ElementNode && li.DataAtom == atom.Li {
				items = append(items, textContent(li))
			}
		}
		return cell{items: items}
	}
	return cell{text: textContent(td)}
}

func findElement(nodes []*xhtml.Node, a atom.Atom) *xhtml.Node {
	for _, n := range nodes {
		if n.Type == xhtml.ElementNode && n.DataAtom == a {
			return n
		}
		if found := findChildElement(n, a); found != nil {
			return found
		}
	}
	return nil
}

func findChildElement(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findChildElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates all text nodes beneath n. The parser has already
// decoded entities, so the result is unescaped text.
func textContent(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(node *xhtml.Node) {
		if node.Type == xhtml.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// EncodeRow encodes a record with the default schema. Exposed for preview
// and clipboard use by presentation layers.
func EncodeRow(r types.Record) string {
	return Default().Encode(r)
}

// DecodeRow decodes a row fragment with the default schema
func DecodeRow(fragment string) *types.Record {
	return Default().Decode(fragment)
}
