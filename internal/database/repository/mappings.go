package repository

import (
	"context"
	"database/sql"
	"errors"
)

// MappingRepo stores learned description→ledger associations. Mappings only
// accumulate; nothing deletes or decays them.
type MappingRepo struct{ db *sql.DB }

func NewMappingRepo(db *sql.DB) *MappingRepo { return &MappingRepo{db: db} }

const mappingCols = `id, user_id, description, ledger_id, narration, usage_count,
 confidence, last_used_at, created_at`

// Lookup finds the mapping for the exact description string, or nil.
// No normalization or fuzzy matching happens here.
func (r *MappingRepo) Lookup(ctx context.Context, userID, description string) (*Mapping, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT `+mappingCols+` FROM ledger_mappings
	WHERE user_id = ? AND description = ?`, userID, description)
	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// RecordTx upserts a mapping inside an existing transaction: a prior mapping
// for (user, description) gets its usage counter bumped and narration
// refreshed; otherwise a fresh row starts at usage_count 1 with the given
// confidence hint.
func (r *MappingRepo) RecordTx(ctx context.Context, tx *sql.Tx, m Mapping) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO ledger_mappings(id, user_id, description, ledger_id, narration,
	 usage_count, confidence, last_used_at, created_at)
	VALUES(?, ?, ?, ?, ?, 1, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, description) DO UPDATE SET
	 usage_count = usage_count + 1,
	 ledger_id = excluded.ledger_id,
	 narration = COALESCE(excluded.narration, narration),
	 last_used_at = CURRENT_TIMESTAMP`,
		m.ID, m.UserID, m.Description, m.LedgerID, m.Narration, m.Confidence)
	return err
}

// DeleteByLedgerTx forgets every learned pattern targeting a ledger, ahead
// of that ledger's deletion.
func (r *MappingRepo) DeleteByLedgerTx(ctx context.Context, tx *sql.Tx, userID, ledgerID string) error {
	_, err := tx.ExecContext(ctx, `
	DELETE FROM ledger_mappings WHERE user_id = ? AND ledger_id = ?`, userID, ledgerID)
	return err
}

// List returns all mappings for a user, most recently used first.
func (r *MappingRepo) List(ctx context.Context, userID string) ([]Mapping, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+mappingCols+` FROM ledger_mappings
	WHERE user_id = ? ORDER BY last_used_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMapping(row scanner) (Mapping, error) {
	var m Mapping
	var narration sql.NullString
	if err := row.Scan(&m.ID, &m.UserID, &m.Description, &m.LedgerID, &narration,
		&m.UsageCount, &m.Confidence, &m.LastUsedAt, &m.CreatedAt); err != nil {
		return Mapping{}, err
	}
	if narration.Valid {
		m.Narration = &narration.String
	}
	return m, nil
}
