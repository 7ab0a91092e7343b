package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskbooks/internal/config"
	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
)

func TestParseMoney(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		cents   int64
		wantErr bool
	}{
		{"1234.50", 123450, false},
		{" 20 ", 2000, false},
		{"0.01", 1, false},
		{"0", 0, false},
		{"-5", 0, true},
		{"chai", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := parseMoney(tc.in)
		if tc.wantErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.cents, got, tc.in)
	}
}

func TestResolveContactCreatesThenReuses(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := New(ctx, config.Config{}, "u1",
		Repos{Contacts: repository.NewContactRepo(db)}, Services{}, time.UTC)

	id, err := app.resolveContact("Ramesh")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// case-insensitive reuse, no second row
	again, err := app.resolveContact("  ramesh ")
	require.NoError(t, err)
	require.Equal(t, id, again)

	contacts, err := app.repos.Contacts.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	_, err = app.resolveContact("  ")
	require.Error(t, err)
}

func TestEntryFormDefaults(t *testing.T) {
	t.Parallel()

	app := New(context.Background(), config.Config{}, "u1", Repos{}, Services{}, time.UTC)

	app.openNewTransactionForm()
	require.Equal(t, modalNewTransaction, app.modal)
	require.Len(t, app.form, 4)
	require.Equal(t, "debit", app.form[2].current())
	_, err := time.Parse("2006-01-02", app.form[3].current())
	require.NoError(t, err)

	app.openNewReminderForm()
	require.Equal(t, modalNewReminder, app.modal)
	require.Len(t, app.form, 6)
	require.Equal(t, "receivable", app.form[1].current())
	require.Equal(t, "-", app.form[5].current())
}
