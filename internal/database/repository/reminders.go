package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ReminderRepo stores payment reminders.
type ReminderRepo struct{ db *sql.DB }

func NewReminderRepo(db *sql.DB) *ReminderRepo { return &ReminderRepo{db: db} }

const reminderCols = `id, user_id, transaction_id, contact_id, due_date, amount_cents,
 message, type, status, channel, sent_at, created_at`

func (r *ReminderRepo) Insert(ctx context.Context, rem Reminder) error {
	var channel *string
	if rem.Channel != nil {
		s := string(*rem.Channel)
		channel = &s
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO reminders(id, user_id, transaction_id, contact_id, due_date,
	 amount_cents, message, type, status, channel, sent_at, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		rem.ID, rem.UserID, rem.TransactionID, rem.ContactID, rem.DueDate,
		rem.AmountCents, rem.Message, string(rem.Type), string(rem.Status),
		channel, rem.SentAt)
	return err
}

func (r *ReminderRepo) Get(ctx context.Context, userID, id string) (*Reminder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	rem, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rem, nil
}

// List returns the user's reminders by due date ascending; optional status
// filter.
func (r *ReminderRepo) List(ctx context.Context, userID string, status ReminderStatus) ([]Reminder, error) {
	query := `SELECT ` + reminderCols + ` FROM reminders WHERE user_id = ?`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY due_date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// UpdateStatus moves a reminder to a new status, recording sent_at when
// provided.
func (r *ReminderRepo) UpdateStatus(ctx context.Context, userID, id string, status ReminderStatus, sentAt *time.Time) error {
	if sentAt != nil {
		_, err := r.db.ExecContext(ctx, `
		UPDATE reminders SET status = ?, sent_at = ? WHERE id = ? AND user_id = ?`,
			string(status), sentAt, id, userID)
		return err
	}
	_, err := r.db.ExecContext(ctx, `
	UPDATE reminders SET status = ? WHERE id = ? AND user_id = ?`,
		string(status), id, userID)
	return err
}

func scanReminder(row scanner) (Reminder, error) {
	var rem Reminder
	var txID, contactID, channel sql.NullString
	var sentAt sql.NullTime
	var typ, status string
	if err := row.Scan(&rem.ID, &rem.UserID, &txID, &contactID, &rem.DueDate,
		&rem.AmountCents, &rem.Message, &typ, &status, &channel, &sentAt,
		&rem.CreatedAt); err != nil {
		return Reminder{}, err
	}
	rem.Type = ReminderType(typ)
	rem.Status = ReminderStatus(status)
	if txID.Valid {
		rem.TransactionID = &txID.String
	}
	if contactID.Valid {
		rem.ContactID = &contactID.String
	}
	if channel.Valid {
		ch := ReminderChannel(channel.String)
		rem.Channel = &ch
	}
	if sentAt.Valid {
		rem.SentAt = &sentAt.Time
	}
	return rem, nil
}
