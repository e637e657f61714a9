// Package storagetest holds the behavioural contract every storage.Store
// implementation must satisfy.
package storagetest

import (
	"context"
	"errors"
	"math"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/query"
	"fintrack/internal/storage"
)

const (
	OwnerA = "7d3a1c9e-0000-4000-8000-00000000000a"
	OwnerB = "7d3a1c9e-0000-4000-8000-00000000000b"
)

// Tx builds a valid transaction for tests.
func Tx(owner string, kind core.Kind, label string, cents int64, date string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{OwnerID: owner, Kind: kind, Label: label, Amount: core.Money{Cents: cents}, Date: d}
}

// Run exercises newStore against the Store contract. newStore must return an
// empty store; Run closes it.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("CreateAssignsIdentity", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		got, err := s.Create(ctx, Tx(OwnerA, core.KindExpense, "Food", 1250, "2024-03-01"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if got.ID == "" || got.CreatedAt.IsZero() {
			t.Fatalf("missing id or createdAt: %+v", got)
		}
		list, err := s.ListAll(ctx, query.Filter{OwnerID: OwnerA, Kind: core.KindExpense})
		if err != nil || len(list) != 1 {
			t.Fatalf("list: %v %v", list, err)
		}
		if list[0].ID != got.ID || list[0].Amount.Cents != 1250 || list[0].Date.String() != "2024-03-01" || list[0].Label != "Food" {
			t.Fatalf("round trip mismatch: %+v", list[0])
		}
	})

	t.Run("OrderingAndPagination", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		batch := []core.Transaction{
			Tx(OwnerA, core.KindExpense, "first", 100, "2024-03-01"),
			Tx(OwnerA, core.KindExpense, "second", 100, "2024-03-05"),
			Tx(OwnerA, core.KindExpense, "third", 100, "2024-03-01"),
			Tx(OwnerA, core.KindExpense, "fourth", 100, "2024-03-03"),
		}
		if _, err := s.InsertMany(ctx, batch); err != nil {
			t.Fatalf("insert: %v", err)
		}
		f := query.Filter{OwnerID: OwnerA, Kind: core.KindExpense}
		all, err := s.ListAll(ctx, f)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := []string{"second", "fourth", "first", "third"}
		for i, w := range want {
			if all[i].Label != w {
				t.Fatalf("order[%d] = %s, want %s", i, all[i].Label, w)
			}
		}

		page, err := s.Find(ctx, f, 2, 2)
		if err != nil || len(page) != 2 || page[0].Label != "first" || page[1].Label != "third" {
			t.Fatalf("page 2: %+v %v", page, err)
		}
		empty, err := s.Find(ctx, f, 10, 2)
		if err != nil || len(empty) != 0 {
			t.Fatalf("page past end: %+v %v", empty, err)
		}
	})

	t.Run("FindToleratesOutOfRangeWindow", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		batch := []core.Transaction{
			Tx(OwnerA, core.KindExpense, "a", 100, "2024-03-02"),
			Tx(OwnerA, core.KindExpense, "b", 100, "2024-03-01"),
		}
		if _, err := s.InsertMany(ctx, batch); err != nil {
			t.Fatalf("insert: %v", err)
		}
		f := query.Filter{OwnerID: OwnerA, Kind: core.KindExpense}

		tests := []struct {
			name   string
			offset int
			limit  int
			want   int
		}{
			{"negative offset reads from the start", -100, 1, 1},
			{"overflowed offset reads from the start", math.MinInt, 10, 2},
			{"huge offset is empty", math.MaxInt, 10, 0},
			{"huge limit stops at the end", 1, math.MaxInt, 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.Find(ctx, f, tt.offset, tt.limit)
				if err != nil {
					t.Fatalf("find: %v", err)
				}
				if len(got) != tt.want {
					t.Fatalf("got %d rows, want %d", len(got), tt.want)
				}
			})
		}
	})

	t.Run("ReadsRequireOwner", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		if _, err := s.Create(ctx, Tx(OwnerA, core.KindExpense, "Food", 100, "2024-03-01")); err != nil {
			t.Fatalf("create: %v", err)
		}
		f := query.Filter{Kind: core.KindExpense}
		if _, err := s.Count(ctx, f); !errors.Is(err, storage.ErrNoOwner) {
			t.Fatalf("count: expected ErrNoOwner, got %v", err)
		}
		if _, err := s.Find(ctx, f, 0, 10); !errors.Is(err, storage.ErrNoOwner) {
			t.Fatalf("find: expected ErrNoOwner, got %v", err)
		}
		if _, err := s.ListAll(ctx, f); !errors.Is(err, storage.ErrNoOwner) {
			t.Fatalf("list: expected ErrNoOwner, got %v", err)
		}
	})

	t.Run("FiltersAreScopedAndInclusive", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		seed := []core.Transaction{
			Tx(OwnerA, core.KindExpense, "Seafood", 1000, "2024-03-01"),
			Tx(OwnerA, core.KindExpense, "FOOD court", 2000, "2024-03-10"),
			Tx(OwnerA, core.KindExpense, "Rent", 3000, "2024-03-15"),
			Tx(OwnerA, core.KindExpense, "100%_off", 500, "2024-03-15"),
			Tx(OwnerA, core.KindIncome, "Food bank", 1500, "2024-03-10"),
			Tx(OwnerB, core.KindExpense, "Food", 1500, "2024-03-10"),
		}
		if _, err := s.InsertMany(ctx, seed); err != nil {
			t.Fatalf("insert: %v", err)
		}

		from, to := core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 10)
		lo, hi := int64(1000), int64(2000)
		cases := []struct {
			name string
			f    query.Filter
			want int
		}{
			{"owner and kind", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense}, 4},
			{"other owner", query.Filter{OwnerID: OwnerB, Kind: core.KindExpense}, 1},
			{"label case insensitive", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense, Label: "food"}, 2},
			{"label wildcard literal", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense, Label: "%_"}, 1},
			{"underscore literal", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense, Label: "d_c"}, 0},
			{"inclusive dates", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense, From: &from, To: &to}, 2},
			{"inclusive amounts", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense, MinCents: &lo, MaxCents: &hi}, 2},
			{"one sided date", query.Filter{OwnerID: OwnerA, Kind: core.KindExpense, From: &to}, 3},
		}
		for _, tc := range cases {
			n, err := s.Count(ctx, tc.f)
			if err != nil {
				t.Fatalf("%s: count: %v", tc.name, err)
			}
			list, err := s.ListAll(ctx, tc.f)
			if err != nil {
				t.Fatalf("%s: list: %v", tc.name, err)
			}
			if n != tc.want || len(list) != tc.want {
				t.Fatalf("%s: count=%d list=%d, want %d", tc.name, n, len(list), tc.want)
			}
		}
	})

	t.Run("DeleteIsOwnerScoped", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()

		created, err := s.Create(ctx, Tx(OwnerA, core.KindExpense, "Food", 100, "2024-03-01"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if ok, err := s.Delete(ctx, OwnerB, core.KindExpense, created.ID); err != nil || ok {
			t.Fatalf("foreign delete should be a no-op: ok=%v err=%v", ok, err)
		}
		if ok, err := s.Delete(ctx, OwnerA, core.KindIncome, created.ID); err != nil || ok {
			t.Fatalf("wrong kind delete should be a no-op: ok=%v err=%v", ok, err)
		}
		if ok, err := s.Delete(ctx, OwnerA, core.KindExpense, "does-not-exist"); err != nil || ok {
			t.Fatalf("missing id: ok=%v err=%v", ok, err)
		}
		if ok, err := s.Delete(ctx, OwnerA, core.KindExpense, created.ID); err != nil || !ok {
			t.Fatalf("own delete: ok=%v err=%v", ok, err)
		}
		n, _ := s.Count(ctx, query.Filter{OwnerID: OwnerA})
		if n != 0 {
			t.Fatalf("expected empty store, got %d", n)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}
