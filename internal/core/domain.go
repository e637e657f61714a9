package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// MaxLabelLength bounds category and source names.
const MaxLabelLength = 100

type (
	// Kind distinguishes expenses from incomes. Both share one record shape;
	// only the name of the label field differs.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a stored expense or income owned by a single user.
	Transaction struct {
		ID        string
		OwnerID   string
		Kind      Kind
		Label     string // category for expenses, source for incomes
		Amount    Money
		Date      Date
		Icon      string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyLabel    = errors.New("empty label")
	ErrLabelTooLong  = errors.New("label too long")
	ErrMissingFields = errors.New("missing required fields")
	ErrEmptyBatch    = errors.New("empty batch")
	ErrInvalidKind   = errors.New("invalid transaction kind")
)

// ParseKind maps a route segment to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindExpense:
		return KindExpense, nil
	case KindIncome:
		return KindIncome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// LabelField is the JSON/column name of the label for this kind.
func (k Kind) LabelField() string {
	if k == KindIncome {
		return "source"
	}
	return "category"
}

// Title returns "Expense" or "Income".
func (k Kind) Title() string {
	if k == KindIncome {
		return "Income"
	}
	return "Expense"
}

// LabelTitle returns "Category" or "Source".
func (k Kind) LabelTitle() string {
	if k == KindIncome {
		return "Source"
	}
	return "Category"
}

// Plural returns "expenses" or "incomes".
func (k Kind) Plural() string {
	return string(k) + "s"
}

func (k Kind) String() string { return string(k) }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	label := strings.TrimSpace(t.Label)
	if label == "" {
		return ErrEmptyLabel
	}
	if len([]rune(label)) > MaxLabelLength {
		return ErrLabelTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON renders the record with the label under "category" or "source",
// matching the shape clients already consume.
func (t Transaction) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"_id":       t.ID,
		"userId":    t.OwnerID,
		"amount":    t.Amount,
		"date":      t.Date,
		"icon":      t.Icon,
		"createdAt": t.CreatedAt.UTC().Format(time.RFC3339),
	}
	out[t.Kind.LabelField()] = t.Label
	return json.Marshal(out)
}

// Candidate is an unvalidated record as submitted by a client or read from an
// import file. All fields are kept as text until Build validates them.
type Candidate struct {
	Label  string
	Amount string
	Date   string
	Icon   string
}

// UnmarshalJSON accepts either "category" or "source" for the label and a
// number or a string for the amount.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category json.RawMessage `json:"category"`
		Source   json.RawMessage `json:"source"`
		Amount   json.RawMessage `json:"amount"`
		Date     json.RawMessage `json:"date"`
		Icon     json.RawMessage `json:"icon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Label = rawText(raw.Category)
	if c.Label == "" {
		c.Label = rawText(raw.Source)
	}
	c.Amount = rawText(raw.Amount)
	c.Date = rawText(raw.Date)
	c.Icon = rawText(raw.Icon)
	return nil
}

// rawText flattens a JSON scalar into its textual form. Strings lose their
// quotes, numbers keep their literal, null and absent values become "".
func rawText(m json.RawMessage) string {
	if len(m) == 0 || string(m) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(m, &n); err == nil {
		return n.String()
	}
	return ""
}

// Build validates the candidate and converts it into a transaction of the
// given kind. The returned errors are the core sentinels.
func (c Candidate) Build(owner string, kind Kind) (Transaction, error) {
	label := strings.TrimSpace(c.Label)
	if label == "" || strings.TrimSpace(c.Amount) == "" || strings.TrimSpace(c.Date) == "" {
		return Transaction{}, ErrMissingFields
	}
	amount, err := ParseAmount(c.Amount)
	if err != nil {
		return Transaction{}, err
	}
	date, err := ParseDate(c.Date)
	if err != nil {
		return Transaction{}, err
	}
	t := Transaction{
		OwnerID: owner,
		Kind:    kind,
		Label:   label,
		Amount:  amount,
		Date:    date,
		Icon:    strings.TrimSpace(c.Icon),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// ValidationMessage renders a client-facing message for a validation error.
func ValidationMessage(err error, kind Kind) string {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrEmptyLabel):
		return "All fields are required"
	case errors.Is(err, ErrInvalidAmount):
		return "Amount must be a positive number"
	case errors.Is(err, ErrInvalidDate):
		return "Invalid date"
	case errors.Is(err, ErrLabelTooLong):
		return fmt.Sprintf("%s must be at most %d characters", kind.LabelTitle(), MaxLabelLength)
	case errors.Is(err, ErrEmptyBatch):
		return kind.Title() + " array is required"
	}
	return "Invalid request"
}

// EntryError reports the first invalid element of a bulk batch.
type EntryError struct {
	Index int // 1-based
	Kind  Kind
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s for %s entry %d", ValidationMessage(e.Err, e.Kind), e.Kind, e.Index)
}

func (e *EntryError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a client input error rather than a
// store or infrastructure failure.
func IsValidation(err error) bool {
	var entryErr *EntryError
	if errors.As(err, &entryErr) {
		return true
	}
	for _, target := range []error{ErrInvalidAmount, ErrInvalidDate, ErrEmptyLabel, ErrLabelTooLong, ErrMissingFields, ErrEmptyBatch, ErrInvalidKind} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
