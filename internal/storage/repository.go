package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/query"
)

const selectColumns = `id, owner_id, kind, label, amount_cents, date, icon, created_at`

// SQLiteRepository is the SQLite implementation of Store.
type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		now:    time.Now,
		logger: log.Default(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) insert(ctx context.Context, x execer, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = r.now().UTC()
	_, err := x.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, kind, label, amount_cents, date, icon, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, string(t.Kind), t.Label, t.Amount.Cents, t.Date.String(), t.Icon,
		t.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := r.insert(ctx, r.db, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		log.FieldTransactionID, created.ID,
		log.FieldKind, created.Kind,
		log.FieldAmountCents, created.Amount.Cents)
	return created, nil
}

// InsertMany inserts all transactions in a single SQL transaction.
func (r *SQLiteRepository) InsertMany(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	out := make([]core.Transaction, 0, len(ts))
	for i, t := range ts {
		created, err := r.insert(ctx, tx, t)
		if err != nil {
			return nil, fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
		out = append(out, created)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	r.logger.InfoContext(ctx, "Transactions saved to SQLite", log.FieldCount, len(out))
	return out, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, f query.Filter) (int, error) {
	if f.OwnerID == "" {
		return 0, ErrNoOwner
	}
	where, args := whereClause(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Find(ctx context.Context, f query.Filter, offset, limit int) ([]core.Transaction, error) {
	if f.OwnerID == "" {
		return nil, ErrNoOwner
	}
	if offset < 0 {
		offset = 0
	}
	where, args := whereClause(f)
	args = append(args, limit, offset)
	return r.list(ctx, `SELECT `+selectColumns+` FROM transactions`+where+
		` ORDER BY date DESC, seq ASC LIMIT ? OFFSET ?`, args...)
}

func (r *SQLiteRepository) ListAll(ctx context.Context, f query.Filter) ([]core.Transaction, error) {
	if f.OwnerID == "" {
		return nil, ErrNoOwner
	}
	where, args := whereClause(f)
	return r.list(ctx, `SELECT `+selectColumns+` FROM transactions`+where+
		` ORDER BY date DESC, seq ASC`, args...)
}

func (r *SQLiteRepository) list(ctx context.Context, q string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, owner string, kind core.Kind, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ? AND kind = ?`,
		id, owner, string(kind))
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var t core.Transaction
	var kind, date, created string
	if err := rows.Scan(&t.ID, &t.OwnerID, &kind, &t.Label, &t.Amount.Cents, &date, &t.Icon, &created); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.Kind(kind)
	d, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.Date = core.DateOf(d)
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored created_at %q: %w", created, err)
	}
	return t, nil
}

// whereClause renders the filter as a WHERE clause. The owner condition is
// always present. Dates are stored as YYYY-MM-DD text, so lexical comparison
// is calendar order.
func whereClause(f query.Filter) (string, []any) {
	conds := []string{"owner_id = ?"}
	args := []any{f.OwnerID}
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Label != "" {
		conds = append(conds, `label LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Label)+"%")
	}
	if f.From != nil {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		conds = append(conds, "date <= ?")
		args = append(args, f.To.String())
	}
	if f.MinCents != nil {
		conds = append(conds, "amount_cents >= ?")
		args = append(args, *f.MinCents)
	}
	if f.MaxCents != nil {
		conds = append(conds, "amount_cents <= ?")
		args = append(args, *f.MaxCents)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
