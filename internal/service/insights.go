package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/llm"
	"github.com/jask/jaskbooks/internal/logger"
)

// InsightService produces a plain-language summary of a period's activity.
// The model is optional: when it is unavailable or errors, the service falls
// back to a local summary so the feature always works offline.
type InsightService struct {
	Balances *BalanceService
	Provider llm.Provider
}

// PeriodSummary describes the window [from, to) for one user.
func (s *InsightService) PeriodSummary(ctx context.Context, userID, label string, from, to time.Time) (string, error) {
	income, err := s.Balances.IncomeTotal(ctx, userID, from, to)
	if err != nil {
		return "", err
	}
	expense, err := s.Balances.ExpenseTotal(ctx, userID, from, to)
	if err != nil {
		return "", err
	}
	confirmed := true
	txs, err := s.Balances.Transactions.List(ctx, userID, repository.TransactionFilters{
		Confirmed: &confirmed,
		From:      from,
		To:        to,
	})
	if err != nil {
		return "", err
	}
	top, byName, err := s.Balances.TopExpenseLedgers(ctx, userID, from, to, 5)
	if err != nil {
		return "", err
	}

	req := llm.SummarizeRequest{
		PeriodLabel:      label,
		IncomeCents:      income,
		ExpenseCents:     expense,
		TransactionCount: len(txs),
	}
	for _, l := range top {
		req.TopExpenses = append(req.TopExpenses, llm.LabelTotal{Label: l.Name, TotalCents: byName[l.Name]})
	}

	if s.Provider != nil {
		text, err := s.Provider.Summarize(ctx, req)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			log := logger.FromContext(ctx)
			log.Debug().Err(err).Msg("summary model unavailable, using local fallback")
		}
	}
	return localSummary(req), nil
}

func localSummary(req llm.SummarizeRequest) string {
	net := req.IncomeCents - req.ExpenseCents
	verdict := "broke even"
	switch {
	case net > 0:
		verdict = "came out ahead"
	case net < 0:
		verdict = "spent more than you earned"
	}
	s := fmt.Sprintf("%s: %d transactions. Income %d, expenses %d. You %s.",
		req.PeriodLabel, req.TransactionCount, req.IncomeCents, req.ExpenseCents, verdict)
	if len(req.TopExpenses) > 0 {
		s += fmt.Sprintf(" Biggest expense: %s (%d).", req.TopExpenses[0].Label, req.TopExpenses[0].TotalCents)
	}
	return s
}
