package accounting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// ACCOUNTING - Owner of all accounts
// =============================================================================

// Accounting is one set of books.
type Accounting struct {
	Number     int
	Name       string
	BackDating int // days a posting may be dated before today
	generic.Unsealed

	accounts        map[string]*Account
	budgetAccounts  map[string]*BudgetAccount
	contactAccounts map[string]*ContactAccount
}

func NewAccounting(number int, name string) (*Accounting, error) {
	if number <= 0 {
		return nil, &generic.InvalidValueError{Field: "number", Reason: "must be positive"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, generic.Missing("name")
	}
	return &Accounting{
		Number:          number,
		Name:            name,
		accounts:        make(map[string]*Account),
		budgetAccounts:  make(map[string]*BudgetAccount),
		contactAccounts: make(map[string]*ContactAccount),
	}, nil
}

func (a *Accounting) AddAccount(account *Account) error {
	if account == nil {
		return generic.Missing("account")
	}
	if err := a.owns(account.AccountingNumber); err != nil {
		return err
	}
	a.accounts[NormalizeAccountNumber(account.AccountNumber)] = account
	return nil
}

func (a *Accounting) AddBudgetAccount(account *BudgetAccount) error {
	if account == nil {
		return generic.Missing("budgetAccount")
	}
	if err := a.owns(account.AccountingNumber); err != nil {
		return err
	}
	a.budgetAccounts[NormalizeAccountNumber(account.AccountNumber)] = account
	return nil
}

func (a *Accounting) AddContactAccount(account *ContactAccount) error {
	if account == nil {
		return generic.Missing("contactAccount")
	}
	if err := a.owns(account.AccountingNumber); err != nil {
		return err
	}
	a.contactAccounts[NormalizeAccountNumber(account.AccountNumber)] = account
	return nil
}

func (a *Accounting) owns(accountingNumber int) error {
	if accountingNumber != a.Number {
		return &generic.InvalidValueError{
			Field:  "accountingNumber",
			Reason: fmt.Sprintf("account belongs to accounting %d, not %d", accountingNumber, a.Number),
		}
	}
	return nil
}

func (a *Accounting) Account(number string) (*Account, bool) {
	acc, ok := a.accounts[NormalizeAccountNumber(number)]
	return acc, ok
}

func (a *Accounting) BudgetAccount(number string) (*BudgetAccount, bool) {
	acc, ok := a.budgetAccounts[NormalizeAccountNumber(number)]
	return acc, ok
}

func (a *Accounting) ContactAccount(number string) (*ContactAccount, bool) {
	acc, ok := a.contactAccounts[NormalizeAccountNumber(number)]
	return acc, ok
}

// Accounts returns the accounts ordered by account number.
func (a *Accounting) Accounts() []*Account {
	return sortedValues(a.accounts)
}

func (a *Accounting) BudgetAccounts() []*BudgetAccount {
	return sortedValues(a.budgetAccounts)
}

func (a *Accounting) ContactAccounts() []*ContactAccount {
	return sortedValues(a.contactAccounts)
}

// Clone returns a deep copy of the accounting and every account.
func (a *Accounting) Clone() *Accounting {
	clone := &Accounting{
		Number:          a.Number,
		Name:            a.Name,
		BackDating:      a.BackDating,
		Unsealed:        a.Unsealed,
		accounts:        make(map[string]*Account, len(a.accounts)),
		budgetAccounts:  make(map[string]*BudgetAccount, len(a.budgetAccounts)),
		contactAccounts: make(map[string]*ContactAccount, len(a.contactAccounts)),
	}
	for k, v := range a.accounts {
		clone.accounts[k] = v.Clone()
	}
	for k, v := range a.budgetAccounts {
		clone.budgetAccounts[k] = v.Clone()
	}
	for k, v := range a.contactAccounts {
		clone.contactAccounts[k] = v.Clone()
	}
	return clone
}

// Calculate calculates every account at statusDate.
func (a *Accounting) Calculate(statusDate generic.TimePoint) *CalculatedAccounting {
	c := &CalculatedAccounting{
		number:     a.Number,
		name:       a.Name,
		statusDate: statusDate,
		Unsealed:   a.Unsealed,
	}
	for _, acc := range a.Accounts() {
		c.accounts = append(c.accounts, acc.Calculate(statusDate))
	}
	for _, acc := range a.BudgetAccounts() {
		c.budgetAccounts = append(c.budgetAccounts, acc.Calculate(statusDate))
	}
	for _, acc := range a.ContactAccounts() {
		c.contactAccounts = append(c.contactAccounts, acc.Calculate(statusDate))
	}
	return c
}

// AccountingView is the read side shared by calculated and sealed
// accountings.
type AccountingView interface {
	generic.Protectable
	Number() int
	Name() string
	StatusDate() generic.TimePoint
	AccountViews() []AccountView
	BudgetAccountViews() []BudgetAccountView
	ContactAccountViews() []ContactAccountView
}

var (
	_ AccountingView = (*CalculatedAccounting)(nil)
	_ AccountingView = (*SealedAccounting)(nil)
)

// CalculatedAccounting is an unsealed accounting snapshot.
type CalculatedAccounting struct {
	generic.Unsealed
	number          int
	name            string
	statusDate      generic.TimePoint
	accounts        []*CalculatedAccount
	budgetAccounts  []*CalculatedBudgetAccount
	contactAccounts []*CalculatedContactAccount
}

func (c *CalculatedAccounting) Number() int                   { return c.number }
func (c *CalculatedAccounting) Name() string                  { return c.name }
func (c *CalculatedAccounting) StatusDate() generic.TimePoint { return c.statusDate }
func (c *CalculatedAccounting) Accounts() []*CalculatedAccount {
	return slices.Clone(c.accounts)
}
func (c *CalculatedAccounting) BudgetAccounts() []*CalculatedBudgetAccount {
	return slices.Clone(c.budgetAccounts)
}
func (c *CalculatedAccounting) ContactAccounts() []*CalculatedContactAccount {
	return slices.Clone(c.contactAccounts)
}
func (c *CalculatedAccounting) AccountViews() []AccountView { return views[AccountView](c.accounts) }
func (c *CalculatedAccounting) BudgetAccountViews() []BudgetAccountView {
	return views[BudgetAccountView](c.budgetAccounts)
}
func (c *CalculatedAccounting) ContactAccountViews() []ContactAccountView {
	return views[ContactAccountView](c.contactAccounts)
}

// Seal seals the accounting and, through it, every account.
func (c *CalculatedAccounting) Seal() *SealedAccounting {
	s := &SealedAccounting{number: c.number, name: c.name, statusDate: c.statusDate}
	for _, acc := range c.accounts {
		s.accounts = append(s.accounts, acc.Seal())
	}
	for _, acc := range c.budgetAccounts {
		s.budgetAccounts = append(s.budgetAccounts, acc.Seal())
	}
	for _, acc := range c.contactAccounts {
		s.contactAccounts = append(s.contactAccounts, acc.Seal())
	}
	return s
}

// SealedAccounting is a read-only accounting snapshot.
type SealedAccounting struct {
	generic.Sealed
	number          int
	name            string
	statusDate      generic.TimePoint
	accounts        []*SealedAccount
	budgetAccounts  []*SealedBudgetAccount
	contactAccounts []*SealedContactAccount
}

func (s *SealedAccounting) Number() int                   { return s.number }
func (s *SealedAccounting) Name() string                  { return s.name }
func (s *SealedAccounting) StatusDate() generic.TimePoint { return s.statusDate }
func (s *SealedAccounting) Accounts() []*SealedAccount    { return slices.Clone(s.accounts) }
func (s *SealedAccounting) BudgetAccounts() []*SealedBudgetAccount {
	return slices.Clone(s.budgetAccounts)
}
func (s *SealedAccounting) ContactAccounts() []*SealedContactAccount {
	return slices.Clone(s.contactAccounts)
}
func (s *SealedAccounting) AccountViews() []AccountView { return views[AccountView](s.accounts) }
func (s *SealedAccounting) BudgetAccountViews() []BudgetAccountView {
	return views[BudgetAccountView](s.budgetAccounts)
}
func (s *SealedAccounting) ContactAccountViews() []ContactAccountView {
	return views[ContactAccountView](s.contactAccounts)
}
func (s *SealedAccounting) Seal() *SealedAccounting { return s }

func views[V any, T any](items []T) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, any(item).(V))
	}
	return out
}

func sortedValues[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
