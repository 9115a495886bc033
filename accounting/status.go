/*
status.go - Status queries

PURPOSE:
  StatusService is the read path: load a root from the repository,
  calculate it at the status date and hand out the snapshot, sealed
  unless the caller may modify the accounting.

ABSENCE:
  A query for an account the repository does not have returns a nil
  view and a nil error. Callers map that to "not found" themselves.
*/
package accounting

import (
	"context"
	"fmt"

	"github.com/warp/accounting-engine/generic"
)

// ModifyChecker decides whether the caller may modify an accounting.
type ModifyChecker interface {
	CanModifyAccounting(ctx context.Context, accountingNumber int) bool
}

// ModifyCheckerFunc adapts a function to ModifyChecker.
type ModifyCheckerFunc func(ctx context.Context, accountingNumber int) bool

func (f ModifyCheckerFunc) CanModifyAccounting(ctx context.Context, accountingNumber int) bool {
	return f(ctx, accountingNumber)
}

// StatusService answers status queries. A nil Modify seals every
// snapshot.
type StatusService struct {
	Repository AccountingRepository
	Modify     ModifyChecker
}

func (s *StatusService) seal(ctx context.Context, accountingNumber int) bool {
	return s.Modify == nil || !s.Modify.CanModifyAccounting(ctx, accountingNumber)
}

func (s *StatusService) Account(ctx context.Context, accountingNumber int, accountNumber string, statusDate generic.TimePoint) (AccountView, error) {
	if accountNumber == "" {
		return nil, generic.Missing("accountNumber")
	}
	account, err := s.Repository.LoadAccount(ctx, accountingNumber, accountNumber, statusDate)
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", accountNumber, err)
	}
	if account == nil {
		return nil, nil
	}
	calculated := account.Calculate(statusDate)
	if s.seal(ctx, accountingNumber) {
		return calculated.Seal(), nil
	}
	return calculated, nil
}

func (s *StatusService) BudgetAccount(ctx context.Context, accountingNumber int, accountNumber string, statusDate generic.TimePoint) (BudgetAccountView, error) {
	if accountNumber == "" {
		return nil, generic.Missing("accountNumber")
	}
	account, err := s.Repository.LoadBudgetAccount(ctx, accountingNumber, accountNumber, statusDate)
	if err != nil {
		return nil, fmt.Errorf("load budget account %s: %w", accountNumber, err)
	}
	if account == nil {
		return nil, nil
	}
	calculated := account.Calculate(statusDate)
	if s.seal(ctx, accountingNumber) {
		return calculated.Seal(), nil
	}
	return calculated, nil
}

func (s *StatusService) ContactAccount(ctx context.Context, accountingNumber int, accountNumber string, statusDate generic.TimePoint) (ContactAccountView, error) {
	if accountNumber == "" {
		return nil, generic.Missing("accountNumber")
	}
	account, err := s.Repository.LoadContactAccount(ctx, accountingNumber, accountNumber, statusDate)
	if err != nil {
		return nil, fmt.Errorf("load contact account %s: %w", accountNumber, err)
	}
	if account == nil {
		return nil, nil
	}
	calculated := account.Calculate(statusDate)
	if s.seal(ctx, accountingNumber) {
		return calculated.Seal(), nil
	}
	return calculated, nil
}

// Accounts returns every account of the accounting calculated at
// statusDate, ordered by account number. nil when the repository has no
// such accounting.
func (s *StatusService) Accounts(ctx context.Context, accountingNumber int, statusDate generic.TimePoint) ([]AccountView, error) {
	accounts, err := s.Repository.LoadAccounts(ctx, accountingNumber, statusDate)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if accounts == nil {
		return nil, nil
	}
	seal := s.seal(ctx, accountingNumber)
	views := make([]AccountView, 0, len(accounts))
	for _, account := range accounts {
		if account == nil {
			return nil, &generic.InternalError{Value: "account"}
		}
		calculated := account.Calculate(statusDate)
		if seal {
			views = append(views, calculated.Seal())
		} else {
			views = append(views, calculated)
		}
	}
	return views, nil
}

// AccountGroupStatuses rolls the accounts up per account group. nil when
// the repository has no such accounting.
func (s *StatusService) AccountGroupStatuses(ctx context.Context, accountingNumber int, statusDate generic.TimePoint) ([]*AccountGroupStatus, error) {
	views, err := s.Accounts(ctx, accountingNumber, statusDate)
	if err != nil || views == nil {
		return nil, err
	}
	return GroupByAccountGroup(views)
}

// Accounting calculates the whole accounting at statusDate. nil when
// the repository has no such accounting.
func (s *StatusService) Accounting(ctx context.Context, accountingNumber int, statusDate generic.TimePoint) (AccountingView, error) {
	accounting, err := s.Repository.LoadAccounting(ctx, accountingNumber, statusDate)
	if err != nil {
		return nil, fmt.Errorf("load accounting %d: %w", accountingNumber, err)
	}
	if accounting == nil {
		return nil, nil
	}
	calculated := accounting.Calculate(statusDate)
	if s.seal(ctx, accountingNumber) {
		return calculated.Seal(), nil
	}
	return calculated, nil
}
