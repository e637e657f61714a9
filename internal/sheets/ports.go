package sheets

import "context"

// Header is the first row of the mirror sheet. Column A holds the id.
var Header = []any{"id", "ownerId", "kind", "label", "amount", "date", "icon"}

// Row is one mirrored transaction, already formatted for a spreadsheet.
type Row struct {
	ID      string
	OwnerID string
	Kind    string
	Label   string
	Amount  string // currency units, e.g. "12.50"
	Date    string // YYYY-MM-DD
	Icon    string
}

// Values returns the row cells in Header order.
func (r Row) Values() []any {
	return []any{r.ID, r.OwnerID, r.Kind, r.Label, r.Amount, r.Date, r.Icon}
}

// TransactionMirror is the outbound port for the spreadsheet copy of the
// transaction log.
type TransactionMirror interface {
	// AppendTransaction adds a row and returns a reference to where it landed.
	AppendTransaction(ctx context.Context, row Row) (rowRef string, err error)
	// DeleteTransaction removes the row with the given id. found is false
	// when no such row exists.
	DeleteTransaction(ctx context.Context, id string) (found bool, err error)
}
