package service

import (
	"context"

	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/llm"
	"github.com/jask/jaskbooks/internal/logger"
)

// defaultConfidence seeds a mapping when no better hint exists.
const defaultConfidence = 0.5

// Suggestion is a best-effort categorization for an uncategorized
// transaction.
type Suggestion struct {
	LedgerName string
	Category   repository.LedgerCategory
	Narration  string
	Confidence float64
	FromMemory bool
}

// Suggester resolves suggestions with pattern memory first and the AI
// collaborator as fallback. A failing or slow AI call degrades to "no
// suggestion"; it never blocks the transaction record.
type Suggester struct {
	Mappings *repository.MappingRepo
	Ledgers  *repository.LedgerRepo
	Provider llm.Provider
}

// Suggest returns a suggestion for the transaction, or nil when neither
// pattern memory nor the AI produces one.
func (s *Suggester) Suggest(ctx context.Context, tx repository.Transaction) (*Suggestion, error) {
	// 1) exact-description pattern memory
	m, err := s.Mappings.Lookup(ctx, tx.UserID, tx.Description)
	if err != nil {
		return nil, err
	}
	if m != nil {
		l, err := s.Ledgers.Get(ctx, tx.UserID, m.LedgerID)
		if err != nil {
			return nil, err
		}
		if l != nil {
			sg := &Suggestion{
				LedgerName: l.Name,
				Category:   l.Category,
				Confidence: usageConfidence(m.UsageCount),
				FromMemory: true,
			}
			if m.Narration != nil {
				sg.Narration = *m.Narration
			}
			return sg, nil
		}
	}

	// 2) AI fallback
	if s.Provider == nil {
		return nil, nil
	}
	names, err := s.knownLedgerNames(ctx, tx.UserID)
	if err != nil {
		return nil, err
	}
	resp, err := s.Provider.SuggestLedger(ctx, llm.SuggestRequest{
		Description:  tx.Description,
		AmountCents:  tx.AmountCents,
		Direction:    string(tx.Direction),
		KnownLedgers: names,
	})
	if err != nil {
		log := logger.FromContext(ctx)
		log.Debug().Err(err).Str("description", tx.Description).
			Msg("ai suggestion unavailable")
		return nil, nil
	}
	if resp.LedgerName == "" {
		// malformed reply counts as no suggestion
		return nil, nil
	}
	category, err := repository.ParseLedgerCategory(resp.Category)
	if err != nil {
		// model invented a category; keep the name, infer from direction
		category = repository.CategoryExpense
		if tx.Direction == repository.Credit {
			category = repository.CategoryIncome
		}
	}
	return &Suggestion{
		LedgerName: resp.LedgerName,
		Category:   category,
		Narration:  resp.Narration,
		Confidence: resp.Confidence,
	}, nil
}

func (s *Suggester) knownLedgerNames(ctx context.Context, userID string) ([]string, error) {
	ledgers, err := s.Ledgers.ListAvailable(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ledgers))
	for _, l := range ledgers {
		names = append(names, l.Name)
	}
	return names, nil
}

// usageConfidence maps a mapping's usage counter to a confidence score:
// monotonic in usage, capped below certainty.
func usageConfidence(usageCount int) float64 {
	c := 0.5 + 0.05*float64(usageCount)
	if c > 0.99 {
		return 0.99
	}
	return c
}
