package repository

import (
	"context"
	"database/sql"
	"errors"
)

// BankRepo stores bank accounts.
type BankRepo struct{ db *sql.DB }

func NewBankRepo(db *sql.DB) *BankRepo { return &BankRepo{db: db} }

const bankCols = `id, user_id, name, account_number, account_type, balance_cents,
 currency, active, created_at, updated_at`

func (r *BankRepo) Insert(ctx context.Context, b Bank) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO banks(id, user_id, name, account_number, account_type,
	 balance_cents, currency, active, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		b.ID, b.UserID, b.Name, b.AccountNumber, b.AccountType, b.BalanceCents,
		b.Currency, b.Active)
	return err
}

func (r *BankRepo) Get(ctx context.Context, userID, id string) (*Bank, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bankCols+` FROM banks WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBank(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// List returns the user's accounts, active first, then by name.
func (r *BankRepo) List(ctx context.Context, userID string) ([]Bank, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+bankCols+` FROM banks WHERE user_id = ?
	ORDER BY active DESC, name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SetActive flips the active flag.
func (r *BankRepo) SetActive(ctx context.Context, userID, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE banks SET active = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND user_id = ?`, active, id, userID)
	return err
}

func scanBank(row scanner) (Bank, error) {
	var b Bank
	var accountNumber sql.NullString
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &accountNumber, &b.AccountType,
		&b.BalanceCents, &b.Currency, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return Bank{}, err
	}
	if accountNumber.Valid {
		b.AccountNumber = &accountNumber.String
	}
	return b, nil
}
