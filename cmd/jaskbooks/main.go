package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/jaskbooks/internal/config"
	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/llm"
	"github.com/jask/jaskbooks/internal/logger"
	"github.com/jask/jaskbooks/internal/service"
	"github.com/jask/jaskbooks/internal/tui"
)

// defaultUser owns all rows in single-user installs.
const defaultUser = "local"

func main() {
	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatal().Err(err).Msg("mkdir db dir")
	}

	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	if err := database.SeedSystemLedgers(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed system ledgers")
	}

	// repositories
	txRepo := repository.NewTransactionRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	mappingRepo := repository.NewMappingRepo(db)
	bankRepo := repository.NewBankRepo(db)
	contactRepo := repository.NewContactRepo(db)
	reminderRepo := repository.NewReminderRepo(db)

	provider := llmProvider(cfg, log)

	// services
	catalog := &service.CatalogService{DB: db, Ledgers: ledgerRepo, Transactions: txRepo, Mappings: mappingRepo}
	suggester := &service.Suggester{Mappings: mappingRepo, Ledgers: ledgerRepo, Provider: provider}
	book := &service.LedgerBook{
		DB:           db,
		Transactions: txRepo,
		Ledgers:      ledgerRepo,
		Mappings:     mappingRepo,
		Contacts:     contactRepo,
		Suggester:    suggester,
	}
	balances := &service.BalanceService{
		Banks:        bankRepo,
		Contacts:     contactRepo,
		Transactions: txRepo,
		Ledgers:      ledgerRepo,
	}
	reminders := &service.ReminderService{Reminders: reminderRepo, Contacts: contactRepo}
	deduper := &service.Deduper{Transactions: txRepo}
	maintenance := &service.MaintenanceService{DB: db, Contacts: contactRepo}
	insights := &service.InsightService{Balances: balances, Provider: provider}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		log.Warn().Err(err).Msg("using local timezone")
		loc = time.Local
	}

	p := tea.NewProgram(tui.New(ctx, cfg, defaultUser,
		tui.Repos{Transactions: txRepo, Ledgers: ledgerRepo, Reminders: reminderRepo, Contacts: contactRepo},
		tui.Services{
			Catalog:     catalog,
			Book:        book,
			Suggester:   suggester,
			Balances:    balances,
			Reminders:   reminders,
			Deduper:     deduper,
			Maintenance: maintenance,
			Insights:    insights,
		},
		loc,
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func llmProvider(cfg config.Config, log zerolog.Logger) llm.Provider {
	apiKey := config.ResolveAPIKey(cfg)
	name := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if name == "offline" || apiKey == "" {
		log.Info().Msg("no API key configured, using offline suggestions")
		return llm.NewHeuristicProvider()
	}
	return llm.NewGeminiProvider(apiKey, cfg.LLM.Model)
}
