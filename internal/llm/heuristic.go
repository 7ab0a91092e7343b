package llm

import (
	"context"
	"fmt"
	"strings"
)

// HeuristicProvider is a lightweight, offline-friendly implementation used
// when no API key is configured. It keeps the interface and degradation
// behavior so the rest of the app works without network access.
type HeuristicProvider struct{}

func NewHeuristicProvider() *HeuristicProvider { return &HeuristicProvider{} }

func (h *HeuristicProvider) SuggestLedger(ctx context.Context, req SuggestRequest) (SuggestResponse, error) {
	desc := strings.ToLower(req.Description)

	bestName, bestScore := "", 0.0
	for _, name := range req.KnownLedgers {
		score := keywordScore(desc, name)
		if score > bestScore {
			bestScore, bestName = score, name
		}
	}
	if bestName == "" || bestScore < 0.3 {
		return SuggestResponse{}, fmt.Errorf("heuristic: no confident match for %q", req.Description)
	}

	category := "expense"
	if req.Direction == "credit" {
		category = "income"
	}
	return SuggestResponse{
		LedgerName: bestName,
		Category:   category,
		Narration:  properCap(firstToken(req.Description)),
		Confidence: bestScore,
	}, nil
}

func (h *HeuristicProvider) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	net := req.IncomeCents - req.ExpenseCents
	var b strings.Builder
	fmt.Fprintf(&b, "%s: income %.2f, expenses %.2f, net %.2f over %d transactions.",
		req.PeriodLabel, float64(req.IncomeCents)/100, float64(req.ExpenseCents)/100,
		float64(net)/100, req.TransactionCount)
	if len(req.TopExpenses) > 0 {
		top := req.TopExpenses[0]
		fmt.Fprintf(&b, " Largest expense ledger: %s (%.2f).", top.Label, float64(top.TotalCents)/100)
	}
	return b.String(), nil
}

func keywordScore(desc, ledger string) float64 {
	ledgerLower := strings.ToLower(ledger)
	if strings.Contains(desc, ledgerLower) {
		return 0.9
	}
	switch {
	case strings.Contains(desc, "salary") || strings.Contains(desc, "payroll"):
		if strings.Contains(ledgerLower, "salar") {
			return 0.85
		}
	case strings.Contains(desc, "rent"):
		if strings.Contains(ledgerLower, "rent") {
			return 0.85
		}
	case strings.Contains(desc, "electricity") || strings.Contains(desc, "water bill") || strings.Contains(desc, "broadband"):
		if strings.Contains(ledgerLower, "utilit") {
			return 0.8
		}
	case strings.Contains(desc, "chg") || strings.Contains(desc, "charge") || strings.Contains(desc, "fee"):
		if strings.Contains(ledgerLower, "charge") {
			return 0.8
		}
	case strings.Contains(desc, "invoice") || strings.Contains(desc, "bill to"):
		if strings.Contains(ledgerLower, "sales") {
			return 0.75
		}
	}
	// fallback: token overlap ratio
	return textSimilarity(desc, ledgerLower)
}

// textSimilarity is a simple token overlap ratio in [0,1].
func textSimilarity(a, b string) float64 {
	aTokens := tokens(a)
	bTokens := tokens(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}
	intersect := 0
	for t := range aTokens {
		if _, ok := bTokens[t]; ok {
			intersect++
		}
	}
	union := len(aTokens) + len(bTokens) - intersect
	return float64(intersect) / float64(union)
}

func tokens(s string) map[string]struct{} {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' || r == '_' || r == '/' || r == '*' })
	out := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out[p] = struct{}{}
	}
	return out
}

func firstToken(s string) string {
	if parts := strings.Fields(s); len(parts) > 0 {
		return parts[0]
	}
	return s
}

func properCap(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
