package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// LedgerRepo stores the ledger catalog.
type LedgerRepo struct{ db *sql.DB }

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

const ledgerCols = `id, user_id, name, category, is_system, created_at`

// ListAvailable returns the union of system ledgers and the user's own,
// ordered by name.
func (r *LedgerRepo) ListAvailable(ctx context.Context, userID string) ([]Ledger, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+ledgerCols+` FROM ledgers
	WHERE is_system = 1 OR user_id = ?
	ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ByName finds a ledger visible to the user by case-insensitive name.
func (r *LedgerRepo) ByName(ctx context.Context, userID, name string) (*Ledger, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT `+ledgerCols+` FROM ledgers
	WHERE (is_system = 1 OR user_id = ?) AND name = ? COLLATE NOCASE
	LIMIT 1`, userID, name)
	l, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *LedgerRepo) Get(ctx context.Context, userID, id string) (*Ledger, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT `+ledgerCols+` FROM ledgers
	WHERE id = ? AND (is_system = 1 OR user_id = ?)`, id, userID)
	l, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Insert adds a user ledger. A uniqueness conflict from a concurrent create
// with the same name surfaces as ErrUniqueViolation.
func (r *LedgerRepo) Insert(ctx context.Context, l Ledger) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO ledgers(id, user_id, name, category, is_system, created_at)
	VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		l.ID, l.UserID, l.Name, string(l.Category), l.IsSystem)
	return classifyUnique(err)
}

// InsertTx is Insert inside an existing transaction, used when ledger
// creation must commit atomically with a confirmation.
func (r *LedgerRepo) InsertTx(ctx context.Context, tx *sql.Tx, l Ledger) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO ledgers(id, user_id, name, category, is_system, created_at)
	VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		l.ID, l.UserID, l.Name, string(l.Category), l.IsSystem)
	return classifyUnique(err)
}

// UpsertSystem inserts or refreshes a system ledger row.
func (r *LedgerRepo) UpsertSystem(ctx context.Context, l Ledger) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO ledgers(id, user_id, name, category, is_system, created_at)
	VALUES(?, NULL, ?, ?, 1, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		l.ID, l.Name, string(l.Category))
	return err
}

// Rename updates a user ledger's display name.
func (r *LedgerRepo) Rename(ctx context.Context, userID, id, name string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE ledgers SET name = ? WHERE id = ? AND user_id = ? AND is_system = 0`,
		name, id, userID)
	return classifyUnique(err)
}

// DeleteTx removes a user ledger. System ledgers never match the predicate.
// Callers clear referencing rows first; the foreign keys block otherwise.
func (r *LedgerRepo) DeleteTx(ctx context.Context, tx *sql.Tx, userID, id string) error {
	_, err := tx.ExecContext(ctx, `
	DELETE FROM ledgers WHERE id = ? AND user_id = ? AND is_system = 0`, id, userID)
	return err
}

// HasConfirmedTransactions reports whether any confirmed transaction
// references the ledger. Such ledgers keep their category forever.
func (r *LedgerRepo) HasConfirmedTransactions(ctx context.Context, ledgerID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM transactions WHERE ledger_id = ? AND confirmed = 1`, ledgerID).Scan(&n)
	return n > 0, err
}

// ErrUniqueViolation marks an insert that lost a uniqueness race.
var ErrUniqueViolation = errors.New("unique constraint violation")

func classifyUnique(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrUniqueViolation
	}
	return err
}

func scanLedger(row scanner) (Ledger, error) {
	var l Ledger
	var userID sql.NullString
	var category string
	if err := row.Scan(&l.ID, &userID, &l.Name, &category, &l.IsSystem, &l.CreatedAt); err != nil {
		return Ledger{}, err
	}
	if userID.Valid {
		l.UserID = &userID.String
	}
	l.Category = LedgerCategory(category)
	return l, nil
}
