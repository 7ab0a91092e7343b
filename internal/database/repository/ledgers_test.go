package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/jaskbooks/internal/database/repository"
)

func TestLedgerNameUniquePerUserCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewLedgerRepo(db)

	user := "u1"
	require.NoError(t, repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &user, Name: "Rent", Category: repository.CategoryExpense,
	}))

	err := repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &user, Name: "rent", Category: repository.CategoryExpense,
	})
	require.ErrorIs(t, err, repository.ErrUniqueViolation)

	// a different user can reuse the name
	other := "u2"
	require.NoError(t, repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &other, Name: "Rent", Category: repository.CategoryExpense,
	}))

	// a CHECK violation is a plain error, not a uniqueness conflict
	err = repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &user, Name: "Vibes", Category: "vibes",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, repository.ErrUniqueViolation)
}

func TestLedgerByNameCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewLedgerRepo(db)

	user := "u1"
	require.NoError(t, repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &user, Name: "Office Supplies", Category: repository.CategoryExpense,
	}))

	l, err := repo.ByName(ctx, user, "OFFICE supplies")
	require.NoError(t, err)
	require.NotNil(t, l)
	require.Equal(t, "Office Supplies", l.Name)

	missing, err := repo.ByName(ctx, user, "Travel")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestLedgerListAvailableIncludesSystem(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewLedgerRepo(db)

	require.NoError(t, repo.UpsertSystem(ctx, repository.Ledger{
		ID: uuid.NewString(), Name: "Sales", Category: repository.CategoryIncome,
	}))
	user := "u1"
	require.NoError(t, repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &user, Name: "Chai Stall", Category: repository.CategoryExpense,
	}))
	other := "u2"
	require.NoError(t, repo.Insert(ctx, repository.Ledger{
		ID: uuid.NewString(), UserID: &other, Name: "Private", Category: repository.CategoryExpense,
	}))

	ledgers, err := repo.ListAvailable(ctx, user)
	require.NoError(t, err)
	require.Len(t, ledgers, 2)
	require.Equal(t, "Chai Stall", ledgers[0].Name)
	require.Equal(t, "Sales", ledgers[1].Name)
	require.True(t, ledgers[1].IsSystem)
}

func TestLedgerRenameSkipsSystem(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	repo := repository.NewLedgerRepo(db)

	sysID := uuid.NewString()
	require.NoError(t, repo.UpsertSystem(ctx, repository.Ledger{ID: sysID, Name: "Sales", Category: repository.CategoryIncome}))

	require.NoError(t, repo.Rename(ctx, "u1", sysID, "Hacked"))
	l, err := repo.Get(ctx, "u1", sysID)
	require.NoError(t, err)
	require.NotNil(t, l)
	require.Equal(t, "Sales", l.Name)
}

func TestHasConfirmedTransactions(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	ledgers := repository.NewLedgerRepo(db)
	txs := repository.NewTransactionRepo(db)

	user := "u1"
	ledgerID := uuid.NewString()
	require.NoError(t, ledgers.Insert(ctx, repository.Ledger{
		ID: ledgerID, UserID: &user, Name: "Rent", Category: repository.CategoryExpense,
	}))

	has, err := ledgers.HasConfirmedTransactions(ctx, ledgerID)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, txs.Insert(ctx, repository.Transaction{
		ID: uuid.NewString(), UserID: user, Date: time.Now().UTC(),
		Description: "Monthly rent", AmountCents: 1500000, Direction: repository.Debit,
		LedgerID: &ledgerID, Confirmed: true,
	}))

	has, err = ledgers.HasConfirmedTransactions(ctx, ledgerID)
	require.NoError(t, err)
	require.True(t, has)
}
