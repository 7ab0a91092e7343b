package llm

import "context"

// Provider is the AI suggestion collaborator. Any non-success response is
// treated by callers as an absence of suggestion, never a fatal error.
type Provider interface {
	SuggestLedger(ctx context.Context, req SuggestRequest) (SuggestResponse, error)
	Summarize(ctx context.Context, req SummarizeRequest) (string, error)
}

// SuggestRequest carries the transaction context handed to the model.
type SuggestRequest struct {
	Description  string   `json:"description"`
	AmountCents  int64    `json:"amount_cents"`
	Direction    string   `json:"direction"`
	KnownLedgers []string `json:"known_ledgers"`
}

// SuggestResponse is the structured suggestion returned by the model.
type SuggestResponse struct {
	LedgerName string  `json:"ledger_name"`
	Category   string  `json:"category"`
	Narration  string  `json:"narration"`
	Confidence float64 `json:"confidence"`
}

// SummarizeRequest carries pre-aggregated period figures for insight
// generation.
type SummarizeRequest struct {
	PeriodLabel      string       `json:"period_label"`
	IncomeCents      int64        `json:"income_cents"`
	ExpenseCents     int64        `json:"expense_cents"`
	TransactionCount int          `json:"transaction_count"`
	TopExpenses      []LabelTotal `json:"top_expenses"`
}

// LabelTotal pairs a ledger name with a total.
type LabelTotal struct {
	Label      string `json:"label"`
	TotalCents int64  `json:"total_cents"`
}
