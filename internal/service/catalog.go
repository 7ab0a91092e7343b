package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
)

// CatalogService manages the ledger catalog: system ledgers shared by all
// users plus the user's own.
type CatalogService struct {
	DB           *sql.DB
	Ledgers      *repository.LedgerRepo
	Transactions *repository.TransactionRepo
	Mappings     *repository.MappingRepo
}

// ListAvailable returns system ledgers and the user's own, sorted by name.
func (s *CatalogService) ListAvailable(ctx context.Context, userID string) ([]repository.Ledger, error) {
	return s.Ledgers.ListAvailable(ctx, userID)
}

// Create adds a user ledger. The name comparison is case-insensitive, so
// "Rent" and "rent" are the same ledger.
func (s *CatalogService) Create(ctx context.Context, userID, name string, category repository.LedgerCategory) (*repository.Ledger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: ledger name is empty", ErrValidation)
	}
	if _, err := repository.ParseLedgerCategory(string(category)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	existing, err := s.Ledgers.ByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLedgerName, existing.Name)
	}

	l := repository.Ledger{
		ID:       uuid.NewString(),
		UserID:   &userID,
		Name:     name,
		Category: category,
	}
	if err := s.Ledgers.Insert(ctx, l); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			// lost a create race; the row exists now
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLedgerName, name)
		}
		return nil, err
	}
	return &l, nil
}

// Rename changes a user ledger's display name. The category is fixed for
// life: reclassifying a ledger with confirmed history would retroactively
// rewrite aggregates, so no category update exists.
func (s *CatalogService) Rename(ctx context.Context, userID, ledgerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: ledger name is empty", ErrValidation)
	}
	l, err := s.Ledgers.Get(ctx, userID, ledgerID)
	if err != nil {
		return err
	}
	if l == nil {
		return ErrNotFound
	}
	if l.IsSystem {
		return fmt.Errorf("%w: system ledgers are immutable", ErrValidation)
	}
	if existing, err := s.Ledgers.ByName(ctx, userID, name); err != nil {
		return err
	} else if existing != nil && existing.ID != ledgerID {
		return fmt.Errorf("%w: %s", ErrDuplicateLedgerName, name)
	}
	return s.Ledgers.Rename(ctx, userID, ledgerID, name)
}

// Delete removes a user ledger. A ledger with confirmed history is part of
// the books and cannot be deleted; unconfirmed suggestions pointing at it
// are detached and its learned patterns forgotten.
func (s *CatalogService) Delete(ctx context.Context, userID, ledgerID string) error {
	l, err := s.Ledgers.Get(ctx, userID, ledgerID)
	if err != nil {
		return err
	}
	if l == nil {
		return ErrNotFound
	}
	if l.IsSystem {
		return fmt.Errorf("%w: system ledgers are immutable", ErrValidation)
	}
	inUse, err := s.Ledgers.HasConfirmedTransactions(ctx, ledgerID)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: %s", ErrLedgerInUse, l.Name)
	}
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		if err := s.Transactions.DetachLedgerTx(ctx, tx, userID, ledgerID); err != nil {
			return err
		}
		if err := s.Mappings.DeleteByLedgerTx(ctx, tx, userID, ledgerID); err != nil {
			return err
		}
		return s.Ledgers.DeleteTx(ctx, tx, userID, ledgerID)
	})
}
