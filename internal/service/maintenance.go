package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
)

// MaintenanceService houses destructive/ops actions surfaced through the TUI.
type MaintenanceService struct {
	DB       *sql.DB
	Contacts *repository.ContactRepo
}

// Reset wipes all user data. It keeps the schema intact so the app can
// continue running; system ledgers are reseeded at next startup.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"reminders",
			"ledger_mappings",
			"transactions",
			"contacts",
			"ledgers",
			"banks",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// RepairContactTotals rebuilds contact receivable/payable running totals
// from the confirmed transaction set. The totals are a cache and can drift
// after manual edits; this makes them match the books again.
func (s *MaintenanceService) RepairContactTotals(ctx context.Context, userID string) error {
	return s.Contacts.RecomputeTotals(ctx, userID)
}
