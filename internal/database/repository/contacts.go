package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ContactRepo stores counterparties. The receivable/payable totals are
// caches bumped on confirmation; RecomputeTotalsTx is the repair pass that
// rebuilds them from confirmed transactions.
type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactCols = `id, user_id, name, phone, receivable_cents, payable_cents, created_at`

func (r *ContactRepo) Insert(ctx context.Context, c Contact) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO contacts(id, user_id, name, phone, receivable_cents, payable_cents, created_at)
	VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		c.ID, c.UserID, c.Name, c.Phone, c.ReceivableCents, c.PayableCents)
	return err
}

func (r *ContactRepo) Get(ctx context.Context, userID, id string) (*Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactCols+` FROM contacts WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) List(ctx context.Context, userID string) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+contactCols+` FROM contacts WHERE user_id = ?
	ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// BumpTotalTx increases one of the running totals inside an existing
// transaction. Only receivable and payable ledger categories carry contact
// totals; other categories are a caller bug. There is no corresponding
// decrement path.
func (r *ContactRepo) BumpTotalTx(ctx context.Context, tx *sql.Tx, userID, id string, category LedgerCategory, deltaCents int64) error {
	var col string
	switch category {
	case CategoryReceivable:
		col = "receivable_cents"
	case CategoryPayable:
		col = "payable_cents"
	default:
		return fmt.Errorf("bump contact total: category %q has no contact total", category)
	}
	_, err := tx.ExecContext(ctx, `
	UPDATE contacts SET `+col+` = `+col+` + ?
	WHERE id = ? AND user_id = ?`, deltaCents, id, userID)
	return err
}

// RecomputeTotals rebuilds both cached totals from confirmed transactions
// tagged with receivable/payable ledgers.
func (r *ContactRepo) RecomputeTotals(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE contacts SET
	 receivable_cents = COALESCE((
	  SELECT SUM(t.amount_cents) FROM transactions t
	  JOIN ledgers l ON l.id = t.ledger_id
	  WHERE t.contact_id = contacts.id AND t.user_id = ? AND t.confirmed = 1
	    AND l.category = 'receivable'), 0),
	 payable_cents = COALESCE((
	  SELECT SUM(t.amount_cents) FROM transactions t
	  JOIN ledgers l ON l.id = t.ledger_id
	  WHERE t.contact_id = contacts.id AND t.user_id = ? AND t.confirmed = 1
	    AND l.category = 'payable'), 0)
	WHERE user_id = ?`, userID, userID, userID)
	return err
}

func scanContact(row scanner) (Contact, error) {
	var c Contact
	var phone sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &phone,
		&c.ReceivableCents, &c.PayableCents, &c.CreatedAt); err != nil {
		return Contact{}, err
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	return c, nil
}
