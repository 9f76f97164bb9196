package dates

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/certkit/certpage-mcp/pkg/types"
)

// RuleName identifies which parsing rule accepted a date text
type RuleName string

const (
	RuleCalendar      RuleName = "calendar"        // ISO-8601 and other unambiguous forms
	RuleMonthFirst    RuleName = "month_first"     // MM/DD/YYYY
	RuleDayFirstDash  RuleName = "day_first_dash"  // DD-MM-YYYY
	RuleDayFirstSlash RuleName = "day_first_slash" // DD/MM/YYYY, first component > 12 only
	RuleYearFirst     RuleName = "year_first"      // YYYY/MM/DD
)

// Parsed is the outcome of a successful date parse
type Parsed struct {
	Time time.Time
	Rule RuleName

	// Ambiguous is set when the text matched the month-first rule but both
	// numeric components are valid months, so a day-first reading was also
	// possible. The month-first interpretation is kept by fixed heuristic.
	Ambiguous bool
}

// calendarLayouts are the unambiguous forms tried by the first rule, in
// order. Slash and dash numeric forms are deliberately absent here; those go
// through the positional rules below.
var calendarLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
}

// rule is one member of the closed set of parsing dialects. Rules are tried
// in fixed priority order; the first success wins.
type rule struct {
	name  RuleName
	parse func(s string) (time.Time, bool)
}

var rules = []rule{
	{RuleCalendar, parseCalendar},
	{RuleMonthFirst, parseLayout("01/02/2006")},
	{RuleDayFirstDash, parseLayout("02-01-2006")},
	{RuleDayFirstSlash, parseDayFirstSlash},
	{RuleYearFirst, parseLayout("2006/01/02")},
}

// Parse normalizes heterogeneous date text into an orderable time value.
// It returns ok=false if no rule matches; that is not an error condition,
// the caller orders unparseable values after parseable ones.
func Parse(text string) (Parsed, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Parsed{}, false
	}

	for _, r := range rules {
		if t, ok := r.parse(s); ok {
			p := Parsed{Time: t, Rule: r.name}
			if r.name == RuleMonthFirst {
				p.Ambiguous = monthFirstAmbiguous(s)
			}
			return p, true
		}
	}
	return Parsed{}, false
}

func parseCalendar(s string) (time.Time, bool) {
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLayout(layout string) func(string) (time.Time, bool) {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// parseDayFirstSlash accepts DD/MM/YYYY only when the first numeric
// component exceeds 12. Otherwise the text is ambiguous with MM/DD and is
// left to the month-first rule, which runs earlier.
func parseDayFirstSlash(s string) (time.Time, bool) {
	first, ok := firstComponent(s, '/')
	if !ok || first <= 12 {
		return time.Time{}, false
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// monthFirstAmbiguous reports whether MM/DD/YYYY text could also have been
// read day-first: the second component is a valid month and differs from the
// first (equal components mean both readings name the same day).
func monthFirstAmbiguous(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return false
	}
	month, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	day, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return false
	}
	return day >= 1 && day <= 12 && day != month
}

func firstComponent(s string, sep byte) (int, bool) {
	idx := strings.IndexByte(s, sep)
	if idx <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:idx]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortRecords stably sorts records by their parsed sort key, ascending.
// A record whose sort key fails to parse is ordered after every record that
// parses, regardless of its literal text; records that both fail keep their
// relative input order.
func SortRecords(records []types.Record) {
	type keyed struct {
		t  time.Time
		ok bool
	}
	keys := make([]keyed, len(records))
	for i := range records {
		if p, ok := Parse(records[i].SortKey); ok {
			keys[i] = keyed{t: p.Time, ok: true}
		}
	}

	// Sort indices so key lookups survive the permutation
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return ka.ok
		}
		if !ka.ok {
			return false
		}
		return ka.t.Before(kb.t)
	})

	sorted := make([]types.Record, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}
