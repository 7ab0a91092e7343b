package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/jaskbooks/internal/database/repository"
)

// systemLedgers is the shared catalog every user starts from.
var systemLedgers = []struct {
	name     string
	category repository.LedgerCategory
}{
	{"Sales", repository.CategoryIncome},
	{"Other Income", repository.CategoryIncome},
	{"Purchases", repository.CategoryExpense},
	{"Rent", repository.CategoryExpense},
	{"Salaries", repository.CategoryExpense},
	{"Utilities", repository.CategoryExpense},
	{"Bank Charges", repository.CategoryExpense},
	{"Miscellaneous", repository.CategoryExpense},
	{"Accounts Receivable", repository.CategoryReceivable},
	{"Accounts Payable", repository.CategoryPayable},
	{"Cash in Hand", repository.CategoryAsset},
	{"Loans", repository.CategoryLiability},
	{"Owner's Equity", repository.CategoryEquity},
}

// SeedSystemLedgers ensures the shared system ledgers exist.
// It is idempotent and safe to run on every startup.
func SeedSystemLedgers(ctx context.Context, db *sql.DB) error {
	repo := repository.NewLedgerRepo(db)
	for _, sl := range systemLedgers {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("ledger:system:"+sl.name)).String()
		l := repository.Ledger{
			ID:       id,
			Name:     sl.name,
			Category: sl.category,
			IsSystem: true,
		}
		if err := repo.UpsertSystem(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
