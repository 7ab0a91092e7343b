package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API for ledger suggestions and period
// summaries. Timeout: 8s per call; callers treat failures as "no
// suggestion".
type GeminiProvider struct {
	apiKey string
	model  string
	client *genai.Client
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
}

var ErrGeminiNoAPIKey = fmt.Errorf("gemini: api key not configured")

func (p *GeminiProvider) ensureClient(ctx context.Context) error {
	if p.apiKey == "" {
		return ErrGeminiNoAPIKey
	}
	if p.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return fmt.Errorf("gemini: create client: %w", err)
		}
		p.client = client
	}
	return nil
}

func (p *GeminiProvider) SuggestLedger(ctx context.Context, req SuggestRequest) (SuggestResponse, error) {
	if err := p.ensureClient(ctx); err != nil {
		return SuggestResponse{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	prompt := suggestPrompt(req)
	raw, err := p.generate(ctx, prompt)
	if err != nil {
		return SuggestResponse{}, err
	}

	var out SuggestResponse
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &out); err != nil {
		return SuggestResponse{}, fmt.Errorf("gemini: parse suggestion: %w", err)
	}
	if out.LedgerName == "" {
		return SuggestResponse{}, fmt.Errorf("gemini: suggestion missing ledger name")
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		out.Confidence = 0.5
	}
	return out, nil
}

func (p *GeminiProvider) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	if err := p.ensureClient(ctx); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	return p.generate(ctx, summarizePrompt(req))
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response from model")
	}
	return text, nil
}

func suggestPrompt(req SuggestRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert accountant helping a small business owner categorize a transaction.\n\n")
	b.WriteString("Transaction:\n")
	fmt.Fprintf(&b, "- Description: %s\n", req.Description)
	fmt.Fprintf(&b, "- Amount: %.2f\n", float64(req.AmountCents)/100)
	fmt.Fprintf(&b, "- Type: %s\n\n", req.Direction)
	b.WriteString("Available ledger names (prefer one of these, or suggest a new descriptive name):\n")
	b.WriteString(strings.Join(req.KnownLedgers, ", "))
	b.WriteString("\n\nSuggest the most appropriate ledger name, its category (one of: income, expense, receivable, payable, asset, liability, equity), a clear user-facing narration, and your confidence (0.0 to 1.0).\n\n")
	b.WriteString("Return ONLY valid raw JSON with this exact structure, no code fences:\n")
	b.WriteString(`{"ledger_name": "...", "category": "...", "narration": "...", "confidence": 0.85}`)
	return b.String()
}

func summarizePrompt(req SummarizeRequest) string {
	var b strings.Builder
	b.WriteString("You are a financial advisor providing insights to a small business owner.\n\n")
	fmt.Fprintf(&b, "Period: %s\n", req.PeriodLabel)
	fmt.Fprintf(&b, "Total income: %.2f\n", float64(req.IncomeCents)/100)
	fmt.Fprintf(&b, "Total expenses: %.2f\n", float64(req.ExpenseCents)/100)
	fmt.Fprintf(&b, "Net cash flow: %.2f\n", float64(req.IncomeCents-req.ExpenseCents)/100)
	fmt.Fprintf(&b, "Transactions: %d\n\n", req.TransactionCount)
	if len(req.TopExpenses) > 0 {
		b.WriteString("Top expense ledgers:\n")
		for _, e := range req.TopExpenses {
			fmt.Fprintf(&b, "- %s: %.2f\n", e.Label, float64(e.TotalCents)/100)
		}
		b.WriteString("\n")
	}
	b.WriteString("Provide a brief, actionable analysis: overall health, spending patterns, and two or three concrete recommendations. Keep it conversational for someone without accounting knowledge.")
	return b.String()
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
