package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskbooks/internal/database/repository"
)

func TestSignedCents(t *testing.T) {
	t.Parallel()

	in := repository.Transaction{AmountCents: 500, Direction: repository.Credit}
	out := repository.Transaction{AmountCents: 200, Direction: repository.Debit}
	require.Equal(t, int64(500), in.SignedCents())
	require.Equal(t, int64(-200), out.SignedCents())
}

func TestReminderOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	yesterday := repository.Reminder{Status: repository.ReminderPending, DueDate: now.AddDate(0, 0, -1)}
	require.True(t, yesterday.Overdue(now))

	// due today is not overdue, regardless of time of day
	today := repository.Reminder{Status: repository.ReminderPending, DueDate: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)}
	require.False(t, today.Overdue(now))

	tomorrow := repository.Reminder{Status: repository.ReminderPending, DueDate: now.AddDate(0, 0, 1)}
	require.False(t, tomorrow.Overdue(now))

	// only pending reminders can be overdue
	for _, status := range []repository.ReminderStatus{repository.ReminderSent, repository.ReminderCompleted, repository.ReminderCancelled} {
		r := repository.Reminder{Status: status, DueDate: now.AddDate(0, 0, -30)}
		require.False(t, r.Overdue(now), "status %s", status)
	}
}

func TestParseLedgerCategory(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"income", "expense", "receivable", "payable", "asset", "liability", "equity"} {
		got, err := repository.ParseLedgerCategory(valid)
		require.NoError(t, err)
		require.Equal(t, repository.LedgerCategory(valid), got)
	}
	_, err := repository.ParseLedgerCategory("savings")
	require.Error(t, err)
}
