package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
)

func TestTransactionConfirmTx(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	ledgers := repository.NewLedgerRepo(db)
	txs := repository.NewTransactionRepo(db)

	user := "u1"
	ledgerID := uuid.NewString()
	require.NoError(t, ledgers.Insert(ctx, repository.Ledger{ID: ledgerID, UserID: &user, Name: "Groceries", Category: repository.CategoryExpense}))

	txID := uuid.NewString()
	require.NoError(t, txs.Insert(ctx, repository.Transaction{
		ID: txID, UserID: user, Date: time.Now().UTC(),
		Description: "BIG BAZAAR", AmountCents: 84500, Direction: repository.Debit,
	}))

	require.NoError(t, database.WithTx(db, func(tx *sql.Tx) error {
		return txs.ConfirmTx(ctx, tx, user, txID, ledgerID, strPtr("weekly groceries"))
	}))

	got, err := txs.Get(ctx, user, txID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Confirmed)
	require.True(t, got.Reconciled)
	require.NotNil(t, got.LedgerID)
	require.Equal(t, ledgerID, *got.LedgerID)
	require.NotNil(t, got.Narration)
	require.Equal(t, "weekly groceries", *got.Narration)

	// confirming a missing row reports no rows
	err = database.WithTx(db, func(tx *sql.Tx) error {
		return txs.ConfirmTx(ctx, tx, user, "nope", ledgerID, nil)
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTransactionAttachSuggestionOnlyUnconfirmed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	ledgers := repository.NewLedgerRepo(db)
	txs := repository.NewTransactionRepo(db)

	user := "u1"
	ledgerID := uuid.NewString()
	otherLedger := uuid.NewString()
	require.NoError(t, ledgers.Insert(ctx, repository.Ledger{ID: ledgerID, UserID: &user, Name: "Fuel", Category: repository.CategoryExpense}))
	require.NoError(t, ledgers.Insert(ctx, repository.Ledger{ID: otherLedger, UserID: &user, Name: "Travel", Category: repository.CategoryExpense}))

	txID := uuid.NewString()
	require.NoError(t, txs.Insert(ctx, repository.Transaction{
		ID: txID, UserID: user, Date: time.Now().UTC(),
		Description: "HP PETROL PUMP", AmountCents: 200000, Direction: repository.Debit,
	}))

	require.NoError(t, txs.AttachSuggestion(ctx, user, txID, &ledgerID, strPtr("tank refill")))
	got, err := txs.Get(ctx, user, txID)
	require.NoError(t, err)
	require.True(t, got.AISuggested)
	require.Equal(t, ledgerID, *got.LedgerID)
	require.False(t, got.Confirmed)

	require.NoError(t, database.WithTx(db, func(tx *sql.Tx) error {
		return txs.ConfirmTx(ctx, tx, user, txID, ledgerID, nil)
	}))

	// confirmed rows ignore further suggestions
	require.NoError(t, txs.AttachSuggestion(ctx, user, txID, &otherLedger, nil))
	got, err = txs.Get(ctx, user, txID)
	require.NoError(t, err)
	require.Equal(t, ledgerID, *got.LedgerID)
}

func TestTransactionListFilters(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	banks := repository.NewBankRepo(db)
	txs := repository.NewTransactionRepo(db)

	user := "u1"
	bankID := uuid.NewString()
	require.NoError(t, banks.Insert(ctx, repository.Bank{
		ID: bankID, UserID: user, Name: "HDFC Current", AccountType: "current",
		BalanceCents: 10000000, Currency: "INR", Active: true,
	}))

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insert := func(desc string, day int, bank *string, confirmed bool) {
		require.NoError(t, txs.Insert(ctx, repository.Transaction{
			ID: uuid.NewString(), UserID: user, BankID: bank,
			Date: base.AddDate(0, 0, day), Description: desc,
			AmountCents: 1000, Direction: repository.Debit, Confirmed: confirmed,
		}))
	}
	insert("NEFT SALARY", 1, &bankID, true)
	insert("cash chai", 5, nil, false)
	insert("cash auto", 20, nil, true)

	confirmed := true
	list, err := txs.List(ctx, user, repository.TransactionFilters{Confirmed: &confirmed})
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = txs.List(ctx, user, repository.TransactionFilters{CashOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, tx := range list {
		require.True(t, tx.IsCash())
	}

	list, err = txs.List(ctx, user, repository.TransactionFilters{
		From: base.AddDate(0, 0, 2),
		To:   base.AddDate(0, 0, 10),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "cash chai", list[0].Description)

	list, err = txs.List(ctx, user, repository.TransactionFilters{Search: "auto"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	// newest first
	list, err = txs.List(ctx, user, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "cash auto", list[0].Description)
	require.Equal(t, "NEFT SALARY", list[2].Description)
}

func TestContactRecomputeTotals(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	ledgers := repository.NewLedgerRepo(db)
	txs := repository.NewTransactionRepo(db)
	contacts := repository.NewContactRepo(db)

	user := "u1"
	recvLedger := uuid.NewString()
	payLedger := uuid.NewString()
	require.NoError(t, ledgers.Insert(ctx, repository.Ledger{ID: recvLedger, UserID: &user, Name: "Loans Given", Category: repository.CategoryReceivable}))
	require.NoError(t, ledgers.Insert(ctx, repository.Ledger{ID: payLedger, UserID: &user, Name: "Supplier Credit", Category: repository.CategoryPayable}))

	contactID := uuid.NewString()
	require.NoError(t, contacts.Insert(ctx, repository.Contact{
		ID: contactID, UserID: user, Name: "Ramesh",
		ReceivableCents: 999999, PayableCents: 999999, // stale cache
	}))

	insert := func(ledgerID string, amount int64, confirmed bool) {
		require.NoError(t, txs.Insert(ctx, repository.Transaction{
			ID: uuid.NewString(), UserID: user, Date: time.Now().UTC(),
			Description: "loan", AmountCents: amount, Direction: repository.Debit,
			LedgerID: &ledgerID, ContactID: &contactID, Confirmed: confirmed,
		}))
	}
	insert(recvLedger, 50000, true)
	insert(recvLedger, 25000, true)
	insert(recvLedger, 11111, false) // unconfirmed, must not count
	insert(payLedger, 30000, true)

	require.NoError(t, contacts.RecomputeTotals(ctx, user))

	c, err := contacts.Get(ctx, user, contactID)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, int64(75000), c.ReceivableCents)
	require.Equal(t, int64(30000), c.PayableCents)
}
