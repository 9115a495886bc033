package accounting

import (
	"context"

	"github.com/warp/accounting-engine/generic"
)

// AccountingRepository loads aggregate roots with their buckets and
// ledgers populated up to asOf. Absence is (nil, nil), not an error.
// LoadAccounts returns nil for an unknown accounting and an empty slice
// for an accounting without accounts.
type AccountingRepository interface {
	LoadAccounting(ctx context.Context, accountingNumber int, asOf generic.TimePoint) (*Accounting, error)
	LoadAccount(ctx context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*Account, error)
	LoadBudgetAccount(ctx context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*BudgetAccount, error)
	LoadContactAccount(ctx context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*ContactAccount, error)
	LoadAccounts(ctx context.Context, accountingNumber int, asOf generic.TimePoint) ([]*Account, error)
}

// Repository is everything the services need from storage.
type Repository interface {
	AccountingRepository
	JournalRepository
}
