package service

import (
	"context"
	"sort"
	"time"

	"github.com/jask/jaskbooks/internal/database/repository"
)

// BalanceService derives all monetary aggregates from the confirmed
// transaction set. Every method is read-only and idempotent.
//
// Bank balances are the one exception to "derived": they report the stored
// seed balance from account creation, which is what the product shows.
// Cash, income, expense, receivable and payable figures are computed from
// confirmed transactions only.
type BalanceService struct {
	Banks        *repository.BankRepo
	Contacts     *repository.ContactRepo
	Transactions *repository.TransactionRepo
	Ledgers      *repository.LedgerRepo
}

// BankBalance pairs an account with its reported balance.
type BankBalance struct {
	Bank         repository.Bank
	BalanceCents int64
}

// Snapshot is the full aggregate view for one user.
type Snapshot struct {
	Banks           []BankBalance
	BankTotalCents  int64
	CashCents       int64
	IncomeCents     int64
	ExpenseCents    int64
	ReceivableCents int64
	PayableCents    int64
}

// BankBalances reports each active account's stored balance and the total.
func (s *BalanceService) BankBalances(ctx context.Context, userID string) ([]BankBalance, int64, error) {
	banks, err := s.Banks.List(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	var out []BankBalance
	var total int64
	for _, b := range banks {
		if !b.Active {
			continue
		}
		out = append(out, BankBalance{Bank: b, BalanceCents: b.BalanceCents})
		total += b.BalanceCents
	}
	return out, total, nil
}

// CashBalance sums confirmed cash transactions: inflows positive, outflows
// negative.
func (s *BalanceService) CashBalance(ctx context.Context, userID string) (int64, error) {
	confirmed := true
	txs, err := s.Transactions.List(ctx, userID, repository.TransactionFilters{
		Confirmed: &confirmed,
		CashOnly:  true,
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, t := range txs {
		total += t.SignedCents()
	}
	return total, nil
}

// IncomeTotal sums confirmed transactions with income ledgers inside the
// optional [from, to) window.
func (s *BalanceService) IncomeTotal(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return s.categoryTotal(ctx, userID, repository.CategoryIncome, from, to)
}

// ExpenseTotal sums confirmed transactions with expense ledgers inside the
// optional [from, to) window.
func (s *BalanceService) ExpenseTotal(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return s.categoryTotal(ctx, userID, repository.CategoryExpense, from, to)
}

// Receivables is the canonical receivable total: the sum of confirmed
// transactions tagged with a receivable ledger. Contact running totals are
// a cache, not the source of truth.
func (s *BalanceService) Receivables(ctx context.Context, userID string) (int64, error) {
	return s.categoryTotal(ctx, userID, repository.CategoryReceivable, time.Time{}, time.Time{})
}

// Payables is the canonical payable total, derived the same way.
func (s *BalanceService) Payables(ctx context.Context, userID string) (int64, error) {
	return s.categoryTotal(ctx, userID, repository.CategoryPayable, time.Time{}, time.Time{})
}

// Snapshot assembles the full aggregate view in one call.
func (s *BalanceService) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot
	var err error

	snap.Banks, snap.BankTotalCents, err = s.BankBalances(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.CashCents, err = s.CashBalance(ctx, userID); err != nil {
		return Snapshot{}, err
	}
	if snap.IncomeCents, err = s.IncomeTotal(ctx, userID, time.Time{}, time.Time{}); err != nil {
		return Snapshot{}, err
	}
	if snap.ExpenseCents, err = s.ExpenseTotal(ctx, userID, time.Time{}, time.Time{}); err != nil {
		return Snapshot{}, err
	}
	if snap.ReceivableCents, err = s.Receivables(ctx, userID); err != nil {
		return Snapshot{}, err
	}
	if snap.PayableCents, err = s.Payables(ctx, userID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// TopExpenseLedgers returns expense totals per ledger name, largest first.
func (s *BalanceService) TopExpenseLedgers(ctx context.Context, userID string, from, to time.Time, limit int) ([]repository.Ledger, map[string]int64, error) {
	categories, err := s.ledgerIndex(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	confirmed := true
	txs, err := s.Transactions.List(ctx, userID, repository.TransactionFilters{
		Confirmed: &confirmed,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, nil, err
	}

	totals := map[string]int64{} // ledger id -> total
	for _, t := range txs {
		if t.LedgerID == nil {
			continue
		}
		if l, ok := categories[*t.LedgerID]; ok && l.Category == repository.CategoryExpense {
			totals[l.ID] += t.AmountCents
		}
	}

	ledgers := make([]repository.Ledger, 0, len(totals))
	byName := map[string]int64{}
	for id, total := range totals {
		l := categories[id]
		ledgers = append(ledgers, l)
		byName[l.Name] = total
	}
	sort.Slice(ledgers, func(i, j int) bool {
		return totals[ledgers[i].ID] > totals[ledgers[j].ID]
	})
	if limit > 0 && len(ledgers) > limit {
		ledgers = ledgers[:limit]
	}
	return ledgers, byName, nil
}

func (s *BalanceService) categoryTotal(ctx context.Context, userID string, cat repository.LedgerCategory, from, to time.Time) (int64, error) {
	categories, err := s.ledgerIndex(ctx, userID)
	if err != nil {
		return 0, err
	}
	confirmed := true
	txs, err := s.Transactions.List(ctx, userID, repository.TransactionFilters{
		Confirmed: &confirmed,
		From:      from,
		To:        to,
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, t := range txs {
		if t.LedgerID == nil {
			continue
		}
		if l, ok := categories[*t.LedgerID]; ok && l.Category == cat {
			total += t.AmountCents
		}
	}
	return total, nil
}

func (s *BalanceService) ledgerIndex(ctx context.Context, userID string) (map[string]repository.Ledger, error) {
	ledgers, err := s.Ledgers.ListAvailable(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]repository.Ledger, len(ledgers))
	for _, l := range ledgers {
		idx[l.ID] = l
	}
	return idx, nil
}
