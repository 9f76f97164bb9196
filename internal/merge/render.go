package merge

import (
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/certkit/certpage-mcp/pkg/types"
)

// DefaultSectionTemplate renders a generated heading+table fragment. It can
// be overridden per deployment (see Options.SectionTemplate); the data is
// {Level, Label, Table} with Label already escaped.
const DefaultSectionTemplate = "<h{{.Level}}>{{.Label}}</h{{.Level}}>\n{{.Table}}"

// DefaultHeadingLevel is the level used for generated headings
const DefaultHeadingLevel = 2

type sectionData struct {
	Level int
	Label string
	Table string
}

// renderTable renders a complete table for the given rows, header included
func (e *Engine) renderTable(rows []types.Record) string {
	var b strings.Builder
	b.WriteString("<table>\n<tbody>\n")
	b.WriteString(e.opts.Codec.HeaderRow())
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(e.opts.Codec.Encode(r))
		b.WriteByte('\n')
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

// renderRows renders bare row fragments for append-only insertion
func (e *Engine) renderRows(rows []types.Record) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(e.opts.Codec.Encode(r))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderSection renders a heading+table fragment for a bucket
func (e *Engine) renderSection(label string, rows []types.Record) (string, error) {
	var b strings.Builder
	err := e.tmpl.Execute(&b, sectionData{
		Level: e.opts.HeadingLevel,
		Label: html.EscapeString(label),
		Table: e.renderTable(rows),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render section: %w", err)
	}
	return b.String(), nil
}

func parseSectionTemplate(text string) (*template.Template, error) {
	if text == "" {
		text = DefaultSectionTemplate
	}
	tmpl, err := template.New("section").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid section template: %w", err)
	}
	return tmpl, nil
}
