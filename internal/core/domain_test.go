package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-01", "2024-03-01", true},
		{"2024-03-01T10:30:00Z", "2024-03-01", true},
		{"2024-03-01T10:30:00", "2024-03-01", true},
		{"03/01/2024", "2024-03-01", true},
		{"2024/03/01", "2024-03-01", true},
		{"01-03-2024", "2024-03-01", true},
		{"2024-02-30", "", false},
		{"yesterday", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
		} else if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"expense": KindExpense, "Income": KindIncome} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestCandidateBuild(t *testing.T) {
	good := Candidate{Label: " Food ", Amount: "12.50", Date: "2024-03-01", Icon: "🍔"}
	tx, err := good.Build("owner-1", KindExpense)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Label != "Food" || tx.Amount.Cents != 1250 || tx.Date.String() != "2024-03-01" || tx.OwnerID != "owner-1" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	bads := []struct {
		c    Candidate
		want error
	}{
		{Candidate{Amount: "1", Date: "2024-03-01"}, ErrMissingFields},
		{Candidate{Label: "x", Date: "2024-03-01"}, ErrMissingFields},
		{Candidate{Label: "x", Amount: "1"}, ErrMissingFields},
		{Candidate{Label: "x", Amount: "-3", Date: "2024-03-01"}, ErrInvalidAmount},
		{Candidate{Label: "x", Amount: "abc", Date: "2024-03-01"}, ErrInvalidAmount},
		{Candidate{Label: "x", Amount: "3", Date: "not a date"}, ErrInvalidDate},
		{Candidate{Label: strings.Repeat("x", MaxLabelLength+1), Amount: "3", Date: "2024-03-01"}, ErrLabelTooLong},
	}
	for i, tc := range bads {
		if _, err := tc.c.Build("o", KindIncome); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCandidateUnmarshal(t *testing.T) {
	var list []Candidate
	body := `[{"category":"Food","amount":12.5,"date":"2024-03-01"},{"source":"Salary","amount":"3000","date":"2024-03-02","icon":"💰"},{"category":null,"amount":null}]`
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list[0].Label != "Food" || list[0].Amount != "12.5" {
		t.Fatalf("unexpected first candidate: %+v", list[0])
	}
	if list[1].Label != "Salary" || list[1].Amount != "3000" || list[1].Icon != "💰" {
		t.Fatalf("unexpected second candidate: %+v", list[1])
	}
	if list[2].Label != "" || list[2].Amount != "" {
		t.Fatalf("null fields should be empty: %+v", list[2])
	}
}

func TestTransactionMarshalUsesKindLabel(t *testing.T) {
	tx := Transaction{
		ID: "abc", OwnerID: "u1", Kind: KindIncome, Label: "Salary",
		Amount: Money{Cents: 300000}, Date: NewDate(2024, 3, 1),
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["source"] != "Salary" || out["_id"] != "abc" || out["date"] != "2024-03-01" || out["amount"] != float64(3000) {
		t.Fatalf("unexpected json: %s", b)
	}
	if _, ok := out["category"]; ok {
		t.Fatalf("income should not carry category: %s", b)
	}
}

func TestEntryErrorMessage(t *testing.T) {
	err := &EntryError{Index: 3, Kind: KindExpense, Err: ErrMissingFields}
	if err.Error() != "All fields are required for expense entry 3" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsValidation(err) || !errors.Is(err, ErrMissingFields) {
		t.Fatalf("entry error should be a validation error")
	}
	if IsValidation(errors.New("disk full")) {
		t.Fatalf("arbitrary errors are not validation errors")
	}
}
