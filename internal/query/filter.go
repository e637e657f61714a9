package query

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Filter is the store-level predicate shared by the count and page queries.
// Nil bounds are unconstrained; all bounds are inclusive.
type Filter struct {
	OwnerID  string
	Kind     core.Kind
	Label    string
	From     *core.Date
	To       *core.Date
	MinCents *int64
	MaxCents *int64
}

// Resolve converts params into a filter, anchoring relative ranges at now.
// Owner and kind are set by the caller. Amount bounds are narrowed to whole
// cents: the minimum rounds up and the maximum rounds down.
func Resolve(p Params, now time.Time) Filter {
	f := Filter{Label: strings.TrimSpace(p.Label)}

	today := core.DateOf(now)
	switch p.Range {
	case RangeLastWeek:
		from := today.AddDays(-7)
		f.From, f.To = &from, &today
	case RangeLastMonth:
		from := core.DateOf(now.AddDate(0, -1, 0))
		f.From, f.To = &from, &today
	case RangeLastYear:
		from := core.DateOf(now.AddDate(-1, 0, 0))
		f.From, f.To = &from, &today
	case RangeCustom:
		f.From, f.To = p.StartDate, p.EndDate
	}

	if p.MinAmount != nil {
		c := p.MinAmount.Shift(2).Ceil().IntPart()
		f.MinCents = &c
	}
	if p.MaxAmount != nil {
		c := p.MaxAmount.Shift(2).Floor().IntPart()
		f.MaxCents = &c
	}
	return f
}

// Matches reports whether t satisfies the filter. Stores that cannot push
// the predicate down evaluate it row by row.
func (f Filter) Matches(t core.Transaction) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Label != "" && !strings.Contains(foldASCII(t.Label), foldASCII(f.Label)) {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	if f.MinCents != nil && t.Amount.Cents < *f.MinCents {
		return false
	}
	if f.MaxCents != nil && t.Amount.Cents > *f.MaxCents {
		return false
	}
	return true
}

// Key is a stable identity for caching results of this filter.
func (f Filter) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s", f.OwnerID, f.Kind, strings.ToLower(f.Label))
	writeDate := func(d *core.Date) {
		b.WriteByte('|')
		if d != nil {
			b.WriteString(d.String())
		}
	}
	writeCents := func(c *int64) {
		b.WriteByte('|')
		if c != nil {
			fmt.Fprintf(&b, "%d", *c)
		}
	}
	writeDate(f.From)
	writeDate(f.To)
	writeCents(f.MinCents)
	writeCents(f.MaxCents)
	return b.String()
}

// foldASCII lowercases ASCII letters only, mirroring SQLite LIKE.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
