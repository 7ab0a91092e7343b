package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/logger"
)

// LedgerBook drives the transaction lifecycle: create (import or manual
// entry), optional auto-suggestion, confirmation, and the narrow
// post-confirmation edit path.
type LedgerBook struct {
	DB           *sql.DB
	Transactions *repository.TransactionRepo
	Ledgers      *repository.LedgerRepo
	Mappings     *repository.MappingRepo
	Contacts     *repository.ContactRepo
	Suggester    *Suggester
}

// NewTransaction is the input for creating a transaction. BankID nil means
// cash.
type NewTransaction struct {
	UserID            string
	BankID            *string
	Date              time.Time
	Description       string
	AmountCents       int64
	Direction         repository.Direction
	ContactID         *string
	BalanceAfterCents *int64
}

// Create records a new unconfirmed transaction and, when a suggester is
// wired, attaches a best-effort suggestion. Suggestion failures never fail
// the create.
func (b *LedgerBook) Create(ctx context.Context, in NewTransaction) (*repository.Transaction, error) {
	if err := validateNewTransaction(in); err != nil {
		return nil, err
	}

	t := repository.Transaction{
		ID:                uuid.NewString(),
		UserID:            in.UserID,
		BankID:            in.BankID,
		Date:              in.Date.UTC(),
		Description:       strings.TrimSpace(in.Description),
		AmountCents:       in.AmountCents,
		Direction:         in.Direction,
		ContactID:         in.ContactID,
		BalanceAfterCents: in.BalanceAfterCents,
	}
	if err := b.Transactions.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if b.Suggester != nil {
		if sg, err := b.Suggester.Suggest(ctx, t); err == nil && sg != nil {
			if attached, err := b.attachSuggestion(ctx, t, *sg); err == nil {
				return attached, nil
			}
		}
	}

	created, err := b.Transactions.Get(ctx, in.UserID, t.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// attachSuggestion pre-fills ledger and narration on an unconfirmed row.
// The suggested ledger must already exist; suggestions never create ledgers,
// only confirmation does.
func (b *LedgerBook) attachSuggestion(ctx context.Context, t repository.Transaction, sg Suggestion) (*repository.Transaction, error) {
	l, err := b.Ledgers.ByName(ctx, t.UserID, sg.LedgerName)
	if err != nil {
		return nil, err
	}
	var ledgerID *string
	if l != nil {
		ledgerID = &l.ID
	}
	var narration *string
	if sg.Narration != "" {
		narration = &sg.Narration
	}
	if ledgerID == nil && narration == nil {
		return &t, nil
	}
	if err := b.Transactions.AttachSuggestion(ctx, t.UserID, t.ID, ledgerID, narration); err != nil {
		return nil, err
	}
	return b.Transactions.Get(ctx, t.UserID, t.ID)
}

// ConfirmInput finalizes categorization of one transaction. Category is
// consulted only when LedgerName does not resolve to an existing ledger;
// left empty, it is inferred from the transaction direction.
type ConfirmInput struct {
	UserID         string
	TransactionID  string
	LedgerName     string
	Category       repository.LedgerCategory
	Narration      string
	ConfidenceHint float64
}

// Confirm moves a transaction to its confirmed+reconciled terminal state.
// In one storage transaction it creates the ledger when the name is new,
// finalizes the row, records the description mapping, and bumps the linked
// contact's receivable/payable total.
func (b *LedgerBook) Confirm(ctx context.Context, in ConfirmInput) (*repository.Transaction, error) {
	t, err := b.Transactions.Get(ctx, in.UserID, in.TransactionID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Confirmed {
		return nil, fmt.Errorf("%w: use Amend to correct ledger or narration", ErrConfirmedImmutable)
	}

	name := strings.TrimSpace(in.LedgerName)
	if name == "" {
		return nil, ErrMissingLedger
	}

	// Resolve before the write transaction: with a single sqlite connection
	// reads cannot run while a write transaction is open.
	existing, err := b.Ledgers.ByName(ctx, in.UserID, name)
	if err != nil {
		return nil, err
	}

	hint := in.ConfidenceHint
	if hint <= 0 || hint > 1 {
		hint = defaultConfidence
	}

	// Two attempts: a concurrent confirmation may create the same ledger
	// name between our read and insert; the second attempt reuses its row.
	for attempt := 0; attempt < 2; attempt++ {
		ledger := existing
		err := database.WithTx(b.DB, func(tx *sql.Tx) error {
			if ledger == nil {
				l := repository.Ledger{
					ID:       uuid.NewString(),
					UserID:   &in.UserID,
					Name:     name,
					Category: confirmCategory(in.Category, t.Direction),
				}
				if err := b.Ledgers.InsertTx(ctx, tx, l); err != nil {
					return err
				}
				ledger = &l
			}

			var narration *string
			if n := strings.TrimSpace(in.Narration); n != "" {
				narration = &n
			}
			if err := b.Transactions.ConfirmTx(ctx, tx, in.UserID, t.ID, ledger.ID, narration); err != nil {
				return err
			}

			// pattern memory keyed on the raw description, not the narration
			if err := b.Mappings.RecordTx(ctx, tx, repository.Mapping{
				ID:          uuid.NewString(),
				UserID:      in.UserID,
				Description: t.Description,
				LedgerID:    ledger.ID,
				Narration:   narration,
				Confidence:  hint,
			}); err != nil {
				return err
			}

			if t.ContactID != nil {
				switch ledger.Category {
				case repository.CategoryReceivable, repository.CategoryPayable:
					if err := b.Contacts.BumpTotalTx(ctx, tx, in.UserID, *t.ContactID, ledger.Category, t.AmountCents); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err == nil {
			log := logger.FromContext(ctx)
			log.Info().Str("transaction", t.ID).Str("ledger", ledger.Name).
				Msg("transaction confirmed")
			return b.Transactions.Get(ctx, in.UserID, t.ID)
		}
		if errors.Is(err, repository.ErrUniqueViolation) && attempt == 0 {
			existing, err = b.Ledgers.ByName(ctx, in.UserID, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				continue
			}
		}
		return nil, err
	}
	return nil, fmt.Errorf("confirm %s: ledger create retry exhausted", t.ID)
}

// Amend corrects ledger and narration on a confirmed transaction. Date,
// amount and direction are immutable once confirmed; fixing those means
// deleting the unconfirmed row and recreating it.
func (b *LedgerBook) Amend(ctx context.Context, userID, txID, ledgerID, narration string) (*repository.Transaction, error) {
	t, err := b.Transactions.Get(ctx, userID, txID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if !t.Confirmed {
		return nil, fmt.Errorf("%w: transaction is not confirmed yet", ErrValidation)
	}
	l, err := b.Ledgers.Get(ctx, userID, ledgerID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrMissingLedger
	}
	var n *string
	if s := strings.TrimSpace(narration); s != "" {
		n = &s
	}
	if err := b.Transactions.Amend(ctx, userID, txID, l.ID, n); err != nil {
		return nil, err
	}
	return b.Transactions.Get(ctx, userID, txID)
}

// Delete removes an unconfirmed transaction. Confirmed rows stay; they are
// corrected in place via Amend.
func (b *LedgerBook) Delete(ctx context.Context, userID, txID string) error {
	t, err := b.Transactions.Get(ctx, userID, txID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	if t.Confirmed {
		return ErrConfirmedImmutable
	}
	return b.Transactions.Delete(ctx, userID, txID)
}

// LinkReciprocal links two transactions as a receivable/payable pair.
func (b *LedgerBook) LinkReciprocal(ctx context.Context, userID, aID, bID string) error {
	a, err := b.Transactions.Get(ctx, userID, aID)
	if err != nil {
		return err
	}
	bt, err := b.Transactions.Get(ctx, userID, bID)
	if err != nil {
		return err
	}
	if a == nil || bt == nil {
		return ErrNotFound
	}
	if err := b.Transactions.SetRelated(ctx, userID, aID, bID); err != nil {
		return err
	}
	return b.Transactions.SetRelated(ctx, userID, bID, aID)
}

// List returns the user's transactions, newest first.
func (b *LedgerBook) List(ctx context.Context, userID string, f repository.TransactionFilters) ([]repository.Transaction, error) {
	return b.Transactions.List(ctx, userID, f)
}

func validateNewTransaction(in NewTransaction) error {
	if strings.TrimSpace(in.UserID) == "" {
		return fmt.Errorf("%w: user id is empty", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is empty", ErrValidation)
	}
	if in.AmountCents < 0 {
		return fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	}
	if in.Direction != repository.Credit && in.Direction != repository.Debit {
		return fmt.Errorf("%w: direction must be credit or debit", ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

// confirmCategory picks the category for a ledger created at confirmation
// time: the caller's explicit choice, or one inferred from direction.
func confirmCategory(c repository.LedgerCategory, d repository.Direction) repository.LedgerCategory {
	if _, err := repository.ParseLedgerCategory(string(c)); err == nil {
		return c
	}
	if d == repository.Credit {
		return repository.CategoryIncome
	}
	return repository.CategoryExpense
}
