package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/llm"
)

type fixture struct {
	db        *sql.DB
	txs       *repository.TransactionRepo
	ledgers   *repository.LedgerRepo
	mappings  *repository.MappingRepo
	banks     *repository.BankRepo
	contacts  *repository.ContactRepo
	reminders *repository.ReminderRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return fixture{
		db:        db,
		txs:       repository.NewTransactionRepo(db),
		ledgers:   repository.NewLedgerRepo(db),
		mappings:  repository.NewMappingRepo(db),
		banks:     repository.NewBankRepo(db),
		contacts:  repository.NewContactRepo(db),
		reminders: repository.NewReminderRepo(db),
	}
}

func (f fixture) catalog() *CatalogService {
	return &CatalogService{DB: f.db, Ledgers: f.ledgers, Transactions: f.txs, Mappings: f.mappings}
}

func (f fixture) book() *LedgerBook {
	return &LedgerBook{
		DB:           f.db,
		Transactions: f.txs,
		Ledgers:      f.ledgers,
		Mappings:     f.mappings,
		Contacts:     f.contacts,
	}
}

// stubProvider returns canned responses or errors.
type stubProvider struct {
	resp  llm.SuggestResponse
	err   error
	calls int
}

func (s *stubProvider) SuggestLedger(ctx context.Context, req llm.SuggestRequest) (llm.SuggestResponse, error) {
	s.calls++
	return s.resp, s.err
}

func (s *stubProvider) Summarize(ctx context.Context, req llm.SummarizeRequest) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "stub summary", nil
}
