package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/jaskbooks/internal/database/repository"
)

func balanceFixture(t *testing.T) (fixture, *BalanceService) {
	t.Helper()
	f := newFixture(t)
	return f, &BalanceService{
		Banks:        f.banks,
		Contacts:     f.contacts,
		Transactions: f.txs,
		Ledgers:      f.ledgers,
	}
}

func TestCashBalanceSignsAndIgnoresUnconfirmed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, balances := balanceFixture(t)
	book := f.book()
	user := "u1"

	entry := func(desc string, cents int64, dir repository.Direction, confirm bool) {
		created, err := book.Create(ctx, NewTransaction{
			UserID: user, Date: time.Now().UTC(),
			Description: desc, AmountCents: cents, Direction: dir,
		})
		require.NoError(t, err)
		if confirm {
			name := "Sales"
			cat := repository.CategoryIncome
			if dir == repository.Debit {
				name = "Purchases"
				cat = repository.CategoryExpense
			}
			_, err = book.Confirm(ctx, ConfirmInput{
				UserID: user, TransactionID: created.ID, LedgerName: name, Category: cat,
			})
			require.NoError(t, err)
		}
	}

	entry("sale one", 500, repository.Credit, true)
	entry("stock buy", 200, repository.Debit, true)
	entry("sale two", 50, repository.Credit, true)
	entry("pending sale", 9999, repository.Credit, false) // unconfirmed, ignored

	cash, err := balances.CashBalance(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(350), cash)

	// read-only: asking twice gives the same answer
	again, err := balances.CashBalance(ctx, user)
	require.NoError(t, err)
	require.Equal(t, cash, again)
}

func TestIncomeAndExpenseTotalsWindowed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, balances := balanceFixture(t)
	book := f.book()
	user := "u1"

	entry := func(day int, cents int64, dir repository.Direction) {
		created, err := book.Create(ctx, NewTransaction{
			UserID: user, Date: time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
			Description: "entry", AmountCents: cents, Direction: dir,
		})
		require.NoError(t, err)
		name, cat := "Sales", repository.CategoryIncome
		if dir == repository.Debit {
			name, cat = "Purchases", repository.CategoryExpense
		}
		_, err = book.Confirm(ctx, ConfirmInput{UserID: user, TransactionID: created.ID, LedgerName: name, Category: cat})
		require.NoError(t, err)
	}

	entry(1, 100000, repository.Credit)
	entry(10, 50000, repository.Credit)
	entry(15, 30000, repository.Debit)
	entry(25, 70000, repository.Credit)

	income, err := balances.IncomeTotal(ctx, user, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(220000), income)

	expense, err := balances.ExpenseTotal(ctx, user, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(30000), expense)

	// [from, to): day 25 falls outside
	from := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	income, err = balances.IncomeTotal(ctx, user, from, to)
	require.NoError(t, err)
	require.Equal(t, int64(50000), income)
}

func TestReceivablesAndPayablesDerivedFromBooks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, balances := balanceFixture(t)
	book := f.book()
	user := "u1"

	entry := func(name string, cat repository.LedgerCategory, cents int64) {
		created, err := book.Create(ctx, NewTransaction{
			UserID: user, Date: time.Now().UTC(),
			Description: "entry " + name, AmountCents: cents, Direction: repository.Debit,
		})
		require.NoError(t, err)
		_, err = book.Confirm(ctx, ConfirmInput{UserID: user, TransactionID: created.ID, LedgerName: name, Category: cat})
		require.NoError(t, err)
	}

	entry("Loans Given", repository.CategoryReceivable, 50000)
	entry("Loans Given", repository.CategoryReceivable, 25000)
	entry("Supplier Credit", repository.CategoryPayable, 40000)

	recv, err := balances.Receivables(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(75000), recv)

	pay, err := balances.Payables(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(40000), pay)
}

func TestSnapshotReportsStoredBankBalances(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, balances := balanceFixture(t)
	user := "u1"

	require.NoError(t, f.banks.Insert(ctx, repository.Bank{
		ID: uuid.NewString(), UserID: user, Name: "HDFC Current", AccountType: "current",
		BalanceCents: 12500000, Currency: "INR", Active: true,
	}))
	require.NoError(t, f.banks.Insert(ctx, repository.Bank{
		ID: uuid.NewString(), UserID: user, Name: "Old SBI", AccountType: "savings",
		BalanceCents: 777, Currency: "INR", Active: false, // inactive, excluded
	}))

	snap, err := balances.Snapshot(ctx, user)
	require.NoError(t, err)
	require.Len(t, snap.Banks, 1)
	require.Equal(t, int64(12500000), snap.BankTotalCents)
	require.Zero(t, snap.CashCents)
	require.Zero(t, snap.IncomeCents)
}

func TestTopExpenseLedgers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, balances := balanceFixture(t)
	book := f.book()
	user := "u1"

	entry := func(name string, cents int64) {
		created, err := book.Create(ctx, NewTransaction{
			UserID: user, Date: time.Now().UTC(),
			Description: "buy " + name, AmountCents: cents, Direction: repository.Debit,
		})
		require.NoError(t, err)
		_, err = book.Confirm(ctx, ConfirmInput{UserID: user, TransactionID: created.ID, LedgerName: name})
		require.NoError(t, err)
	}

	entry("Rent", 1500000)
	entry("Utilities", 230000)
	entry("Utilities", 120000)
	entry("Snacks", 4000)

	top, totals, err := balances.TopExpenseLedgers(ctx, user, time.Time{}, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "Rent", top[0].Name)
	require.Equal(t, "Utilities", top[1].Name)
	require.Equal(t, int64(1500000), totals["Rent"])
	require.Equal(t, int64(350000), totals["Utilities"])
}
