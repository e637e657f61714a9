package core

import "testing"

func TestSummarizeFoldsOthers(t *testing.T) {
	mk := func(label string, cents int64, day int) Transaction {
		return Transaction{Kind: KindExpense, Label: label, Amount: Money{Cents: cents}, Date: NewDate(2024, 3, day)}
	}
	txs := []Transaction{
		mk("A", 600, 5), mk("B", 500, 1), mk("C", 400, 3), mk("D", 300, 2),
		mk("E", 200, 4), mk("F", 100, 6), mk("", 50, 7), mk("A", 100, 8),
	}
	s := Summarize(txs)

	if s.Count != 8 || s.Total.Cents != 2250 {
		t.Fatalf("count/total = %d/%d", s.Count, s.Total.Cents)
	}
	want := []struct {
		name  string
		cents int64
	}{{"A", 700}, {"B", 500}, {"C", 400}, {"D", 300}, {"E", 200}, {"Others", 150}}
	if len(s.ByLabel) != len(want) {
		t.Fatalf("byLabel len = %d, want %d: %+v", len(s.ByLabel), len(want), s.ByLabel)
	}
	for i, w := range want {
		if s.ByLabel[i].Name != w.name || s.ByLabel[i].Amount.Cents != w.cents {
			t.Fatalf("byLabel[%d] = %+v, want %s/%d", i, s.ByLabel[i], w.name, w.cents)
		}
	}
	if s.Series[0].Date.Day() != 1 || s.Series[len(s.Series)-1].Date.Day() != 8 {
		t.Fatalf("series not sorted ascending: %+v", s.Series)
	}
	if s.Series[0].Month != "1st Mar" {
		t.Fatalf("month label = %q", s.Series[0].Month)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || len(s.ByLabel) != 0 || len(s.Series) != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestOrdinal(t *testing.T) {
	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 31: "31st"} {
		if got := Ordinal(n); got != want {
			t.Fatalf("Ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}
