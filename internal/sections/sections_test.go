package sections

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certkit/certpage-mcp/pkg/types"
)

func TestParse_HeadingAndTable(t *testing.T) {
	doc := "<h2>Sectigo</h2>\n" +
		"<table>\n<tbody>\n" +
		"<tr><th>Common Name</th><th>Expires</th></tr>\n" +
		"<tr><td>a.example.com</td><td>2026-01-10</td></tr>\n" +
		"<tr><td>b.example.com</td><td>2026-02-01</td></tr>\n" +
		"</tbody>\n</table>\n"

	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 1)

	sec := secs[0]
	assert.Equal(t, "Sectigo", sec.Label)
	assert.Equal(t, 2, sec.Level)
	assert.Equal(t, "<h2>Sectigo</h2>", sec.HeadingRaw)
	assert.True(t, sec.HasTable)
	require.NoError(t, sec.Validate())

	// Header row skipped, two data rows decoded in document order
	require.Len(t, sec.Rows, 2)
	assert.Equal(t, "a.example.com", sec.Rows[0].PrimaryKey)
	assert.Equal(t, "b.example.com", sec.Rows[1].PrimaryKey)

	// Offsets point at the real table bytes
	assert.Equal(t, "<table", doc[sec.TableStart:sec.TableStart+6])
	assert.Equal(t, "</table>", doc[sec.ClosingTagStart:sec.TableEnd])
}

func TestParse_MultipleSections(t *testing.T) {
	doc := "<h2>Sectigo</h2><table><tr><td>a.example.com</td><td>2026-01-10</td></tr></table>" +
		"<h2>DigiCert</h2><table><tr><td>b.example.com</td><td>2026-02-01</td></tr></table>"

	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 2)
	assert.Equal(t, "Sectigo", secs[0].Label)
	assert.Equal(t, "DigiCert", secs[1].Label)
	require.Len(t, secs[0].Rows, 1)
	require.Len(t, secs[1].Rows, 1)
	assert.Equal(t, "b.example.com", secs[1].Rows[0].PrimaryKey)
}

func TestParse_BaseOffset(t *testing.T) {
	content := "<h3>Legacy</h3><table><tr><td>x</td><td>2024-01-01</td></tr></table>"
	doc := "PREFIX-PREFIX" + content
	base := len("PREFIX-PREFIX")

	secs, err := NewParser(nil).Parse(content, base)
	require.NoError(t, err)
	require.Len(t, secs, 1)

	sec := secs[0]
	assert.Equal(t, "<h3>Legacy</h3>", doc[sec.Start:sec.Start+len("<h3>Legacy</h3>")])
	assert.Equal(t, "</table>", doc[sec.ClosingTagStart:sec.TableEnd])
}

func TestParse_HeadingWithoutTable(t *testing.T) {
	doc := "<h2>Notes</h2><p>prose only</p>"
	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 1)
	assert.False(t, secs[0].HasTable)
	assert.Empty(t, secs[0].Rows)
	assert.Equal(t, secs[0].End, secs[0].Start+len("<h2>Notes</h2>"))
}

func TestParse_TableBelongsToNearestHeading(t *testing.T) {
	// The table after DigiCert must not be claimed by Sectigo.
	doc := "<h2>Sectigo</h2><p>empty</p><h2>DigiCert</h2><table><tr><td>d</td><td>2026-01-01</td></tr></table>"
	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 2)
	assert.False(t, secs[0].HasTable)
	assert.True(t, secs[1].HasTable)
}

func TestParse_UnclosedTableIsMalformed(t *testing.T) {
	doc := "<h2>Sectigo</h2><table><tr><td>a</td><td>2026-01-01</td></tr>"
	_, err := NewParser(nil).Parse(doc, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformedDocument))
}

func TestParse_HeadingMarkupPreserved(t *testing.T) {
	doc := `<h2 id="sectigo" class="ca">Sectigo &amp; Friends</h2><table></table>`
	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 1)
	assert.Equal(t, `<h2 id="sectigo" class="ca">Sectigo &amp; Friends</h2>`, secs[0].HeadingRaw)
	assert.Equal(t, "Sectigo & Friends", secs[0].Label)
}

func TestParse_NestedMarkupInHeading(t *testing.T) {
	doc := "<h2><strong>Sectigo</strong></h2><table></table>"
	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 1)
	assert.Equal(t, "Sectigo", secs[0].Label)
}

func TestParse_AllHeadingLevels(t *testing.T) {
	doc := "<h1>one</h1><h3>three</h3><h6>six</h6>"
	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 3)
	assert.Equal(t, 1, secs[0].Level)
	assert.Equal(t, 3, secs[1].Level)
	assert.Equal(t, 6, secs[2].Level)
}

func TestParse_IgnoresNonHeadingTags(t *testing.T) {
	// <hr>, <header>, <html> must not be mistaken for headings
	doc := "<hr><header>x</header><h2>Real</h2>"
	secs, err := NewParser(nil).Parse(doc, 0)
	require.NoError(t, err)
	require.Len(t, secs, 1)
	assert.Equal(t, "Real", secs[0].Label)
}

func TestParse_Empty(t *testing.T) {
	secs, err := NewParser(nil).Parse("", 0)
	require.NoError(t, err)
	assert.Empty(t, secs)
}

func TestHasAnyTable(t *testing.T) {
	assert.True(t, HasAnyTable("<table><tr><td>x</td></tr></table>"))
	assert.True(t, HasAnyTable(`<TABLE class="wide">`))
	assert.False(t, HasAnyTable("<p>no tables</p>"))
	assert.False(t, HasAnyTable("<tablecloth>"))
	assert.False(t, HasAnyTable(""))
}
