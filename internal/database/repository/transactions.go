package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// TransactionFilters defines list filters. Zero values mean "no filter".
type TransactionFilters struct {
	Confirmed *bool
	BankID    string
	LedgerID  string
	CashOnly  bool
	From      time.Time // inclusive
	To        time.Time // exclusive
	Search    string
}

// TransactionRepo handles transactions. All reads and writes are scoped to
// one user.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txCols = `id, user_id, bank_id, date, description, amount_cents, direction,
 ledger_id, narration, confirmed, reconciled, balance_after_cents, contact_id,
 related_transaction_id, ai_suggested, created_at, updated_at`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, user_id, bank_id, date, description, amount_cents, direction, ledger_id,
	 narration, confirmed, reconciled, balance_after_cents, contact_id,
	 related_transaction_id, ai_suggested, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		t.ID, t.UserID, t.BankID, t.Date, t.Description, t.AmountCents, string(t.Direction),
		t.LedgerID, t.Narration, t.Confirmed, t.Reconciled, t.BalanceAfterCents, t.ContactID,
		t.RelatedTransactionID, t.AISuggested)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, userID, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+txCols+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// List returns the user's transactions in descending date order, ties broken
// by insertion order.
func (r *TransactionRepo) List(ctx context.Context, userID string, f TransactionFilters) ([]Transaction, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}

	if f.Confirmed != nil {
		where = append(where, "confirmed = ?")
		args = append(args, *f.Confirmed)
	}
	if f.BankID != "" {
		where = append(where, "bank_id = ?")
		args = append(args, f.BankID)
	}
	if f.LedgerID != "" {
		where = append(where, "ledger_id = ?")
		args = append(args, f.LedgerID)
	}
	if f.CashOnly {
		where = append(where, "bank_id IS NULL")
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, f.To)
	}
	if f.Search != "" {
		where = append(where, "description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := `SELECT ` + txCols + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AttachSuggestion stores an auto-suggestion on an unconfirmed transaction.
func (r *TransactionRepo) AttachSuggestion(ctx context.Context, userID, id string, ledgerID *string, narration *string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET ledger_id = ?, narration = ?, ai_suggested = 1, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND user_id = ? AND confirmed = 0`, ledgerID, narration, id, userID)
	return err
}

// DetachLedgerTx drops unconfirmed suggestions pointing at a ledger, ahead
// of that ledger's deletion.
func (r *TransactionRepo) DetachLedgerTx(ctx context.Context, tx *sql.Tx, userID, ledgerID string) error {
	_, err := tx.ExecContext(ctx, `
	UPDATE transactions SET ledger_id = NULL, ai_suggested = 0, updated_at = CURRENT_TIMESTAMP
	WHERE user_id = ? AND ledger_id = ? AND confirmed = 0`, userID, ledgerID)
	return err
}

// ConfirmTx finalizes categorization inside an existing transaction: ledger
// and narration are written and both confirmation flags set.
func (r *TransactionRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, userID, id, ledgerID string, narration *string) error {
	res, err := tx.ExecContext(ctx, `
	UPDATE transactions
	SET ledger_id = ?, narration = ?, confirmed = 1, reconciled = 1, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND user_id = ?`, ledgerID, narration, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Amend corrects ledger and narration on an already confirmed transaction.
// Date, amount and direction stay untouched.
func (r *TransactionRepo) Amend(ctx context.Context, userID, id, ledgerID string, narration *string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET ledger_id = ?, narration = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND user_id = ? AND confirmed = 1`, ledgerID, narration, id, userID)
	return err
}

// Delete removes a transaction row.
func (r *TransactionRepo) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

// SetRelated links two reciprocal transactions.
func (r *TransactionRepo) SetRelated(ctx context.Context, userID, id, relatedID string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET related_transaction_id = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND user_id = ?`, relatedID, id, userID)
	return err
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var bankID, ledgerID, narration, contactID, relatedID sql.NullString
	var balanceAfter sql.NullInt64
	var direction string
	if err := row.Scan(&t.ID, &t.UserID, &bankID, &t.Date, &t.Description, &t.AmountCents,
		&direction, &ledgerID, &narration, &t.Confirmed, &t.Reconciled, &balanceAfter,
		&contactID, &relatedID, &t.AISuggested, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	t.Direction = Direction(direction)
	if bankID.Valid {
		t.BankID = &bankID.String
	}
	if ledgerID.Valid {
		t.LedgerID = &ledgerID.String
	}
	if narration.Valid {
		t.Narration = &narration.String
	}
	if balanceAfter.Valid {
		t.BalanceAfterCents = &balanceAfter.Int64
	}
	if contactID.Valid {
		t.ContactID = &contactID.String
	}
	if relatedID.Valid {
		t.RelatedTransactionID = &relatedID.String
	}
	return t, nil
}
