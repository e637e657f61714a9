package core

import (
	"sort"
	"strconv"
)

const (
	// TopLabels is the number of labels kept before folding into "Others".
	TopLabels = 5

	UncategorizedLabel = "Uncategorized"
	OthersLabel        = "Others"
)

// LabelTotal represents an amount aggregated by label name.
type LabelTotal struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// SeriesPoint is one chart point; transactions are plotted individually.
type SeriesPoint struct {
	Month  string `json:"month"` // e.g. "1st Mar"
	Date   Date   `json:"date"`
	Amount Money  `json:"amount"`
	Label  string `json:"label"`
}

// Summary is the chart-ready report over a set of transactions.
type Summary struct {
	Total   Money         `json:"totalAmount"`
	Count   int           `json:"count"`
	ByLabel []LabelTotal  `json:"byLabel"`
	Series  []SeriesPoint `json:"series"`
}

// Summarize groups transactions by label (top five plus "Others") and builds
// a date-ascending series. The input slice is not modified.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		Count:   len(txs),
		ByLabel: []LabelTotal{},
		Series:  make([]SeriesPoint, 0, len(txs)),
	}

	totals := make(map[string]int64)
	for _, t := range txs {
		name := t.Label
		if name == "" {
			name = UncategorizedLabel
		}
		totals[name] += t.Amount.Cents
		s.Total = s.Total.Add(t.Amount)
	}

	grouped := make([]LabelTotal, 0, len(totals))
	for name, cents := range totals {
		grouped = append(grouped, LabelTotal{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(grouped, func(i, j int) bool {
		if grouped[i].Amount.Cents != grouped[j].Amount.Cents {
			return grouped[i].Amount.Cents > grouped[j].Amount.Cents
		}
		return grouped[i].Name < grouped[j].Name
	})
	if len(grouped) > TopLabels {
		var others Money
		for _, lt := range grouped[TopLabels:] {
			others = others.Add(lt.Amount)
		}
		grouped = append(grouped[:TopLabels:TopLabels], LabelTotal{Name: OthersLabel, Amount: others})
	}
	s.ByLabel = grouped

	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for _, t := range sorted {
		s.Series = append(s.Series, SeriesPoint{
			Month:  ShortDayMonth(t.Date),
			Date:   t.Date,
			Amount: t.Amount,
			Label:  t.Label,
		})
	}
	return s
}

// ShortDayMonth formats a date as an ordinal day and abbreviated month,
// e.g. "1st Mar", "22nd Apr", "13th May".
func ShortDayMonth(d Date) string {
	if d.IsZero() {
		return ""
	}
	return Ordinal(d.Day()) + " " + d.Format("Jan")
}

// Ordinal renders n with its English ordinal suffix.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
