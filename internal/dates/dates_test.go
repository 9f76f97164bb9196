package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certkit/certpage-mcp/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_RulePriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		rule RuleName
	}{
		{
			name: "iso date",
			text: "2026-01-10",
			want: date(2026, time.January, 10),
			rule: RuleCalendar,
		},
		{
			name: "rfc3339",
			text: "2026-01-10T08:30:00Z",
			want: time.Date(2026, time.January, 10, 8, 30, 0, 0, time.UTC),
			rule: RuleCalendar,
		},
		{
			name: "written month",
			text: "Jan 10, 2026",
			want: date(2026, time.January, 10),
			rule: RuleCalendar,
		},
		{
			name: "month first slash",
			text: "02/13/2026",
			want: date(2026, time.February, 13),
			rule: RuleMonthFirst,
		},
		{
			name: "day first dash",
			text: "13-02-2026",
			want: date(2026, time.February, 13),
			rule: RuleDayFirstDash,
		},
		{
			name: "forced european slash when first component exceeds 12",
			text: "13/02/2026",
			want: date(2026, time.February, 13),
			rule: RuleDayFirstSlash,
		},
		{
			name: "year first slash",
			text: "2026/02/13",
			want: date(2026, time.February, 13),
			rule: RuleYearFirst,
		},
		{
			name: "surrounding whitespace",
			text: "  2026-01-10  ",
			want: date(2026, time.January, 10),
			rule: RuleCalendar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Parse(tt.text)
			require.True(t, ok)
			assert.True(t, p.Time.Equal(tt.want), "got %v want %v", p.Time, tt.want)
			assert.Equal(t, tt.rule, p.Rule)
		})
	}
}

func TestParse_Unparseable(t *testing.T) {
	for _, text := range []string{"", "not-a-date", "expired", "13/13/2026", "2026"} {
		_, ok := Parse(text)
		assert.False(t, ok, "expected %q to be unparseable", text)
	}
}

func TestParse_Ambiguity(t *testing.T) {
	// Both components are valid months: month-first wins, flagged ambiguous.
	p, ok := Parse("02/03/2026")
	require.True(t, ok)
	assert.Equal(t, RuleMonthFirst, p.Rule)
	assert.True(t, p.Time.Equal(date(2026, time.February, 3)))
	assert.True(t, p.Ambiguous)

	// Day component exceeds 12: only one reading, not ambiguous.
	p, ok = Parse("02/13/2026")
	require.True(t, ok)
	assert.False(t, p.Ambiguous)

	// Equal components name the same day either way.
	p, ok = Parse("04/04/2026")
	require.True(t, ok)
	assert.False(t, p.Ambiguous)
}

func rec(pk, sortKey string) types.Record {
	return types.Record{PrimaryKey: pk, SortKey: sortKey}
}

func TestSortRecords(t *testing.T) {
	records := []types.Record{
		rec("d", "not-a-date"),
		rec("b", "2026-06-01"),
		rec("e", "also-bad"),
		rec("a", "2026-01-10"),
		rec("c", "13/02/2027"),
	}

	SortRecords(records)

	var order []string
	for _, r := range records {
		order = append(order, r.PrimaryKey)
	}
	// Parseable ascending, then unparseable in original relative order.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, order)
}

func TestSortRecords_ParseableBeforeUnparseable(t *testing.T) {
	records := []types.Record{
		rec("bad", "not-a-date"),
		rec("good", "2026-01-10"),
	}
	SortRecords(records)
	assert.Equal(t, "good", records[0].PrimaryKey)
	assert.Equal(t, "bad", records[1].PrimaryKey)
}

func TestSortRecords_StableForEqualKeys(t *testing.T) {
	records := []types.Record{
		rec("first", "2026-01-10"),
		rec("second", "2026-01-10"),
		rec("third", "2026-01-10"),
	}
	SortRecords(records)
	assert.Equal(t, "first", records[0].PrimaryKey)
	assert.Equal(t, "second", records[1].PrimaryKey)
	assert.Equal(t, "third", records[2].PrimaryKey)
}

func TestSortRecords_Empty(t *testing.T) {
	var records []types.Record
	SortRecords(records)
	assert.Empty(t, records)
}
