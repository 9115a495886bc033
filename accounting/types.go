/*
Package accounting implements accountings and their accounts on top of
the generic engine.

PURPOSE:
  An accounting owns three kinds of accounts. Each account keeps a
  ledger of posting lines and one info bucket per month:

    Account         CreditInfo  (credit limit, balance movement)
    BudgetAccount   BudgetInfo  (income, expenses, posted movement)
    ContactAccount  BalanceInfo (balance movement)

  Calculate(statusDate) turns a loaded account into a calculated
  snapshot. A caller without modify rights seals the snapshot before
  handing it out.

FLOW:
  repository.Load*  ->  Calculate(statusDate)  ->  [Seal()]  ->  export

KEY CONCEPTS IN THIS FILE (types.go):
  - AccountIdentity: fields shared by every account kind
  - AccountGroup / BudgetAccountGroup: classifications rolled up in reports
  - NormalizeAccountNumber: canonical form of account numbers

SEE ALSO:
  - infos.go:    period bucket value types
  - account.go:  Account, CalculatedAccount, SealedAccount
  - journal.go:  applying journals and computing warnings
*/
package accounting

import (
	"strings"

	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// IDENTITY
// =============================================================================

// AccountIdentity holds the descriptive fields every account kind carries.
type AccountIdentity struct {
	AccountingNumber int
	AccountNumber    string
	Name             string
	Description      string
	Note             string
}

// Validate checks the required identity fields.
func (id AccountIdentity) Validate() error {
	if id.AccountingNumber <= 0 {
		return &generic.InvalidValueError{Field: "accountingNumber", Reason: "must be positive"}
	}
	if NormalizeAccountNumber(id.AccountNumber) == "" {
		return generic.Missing("accountNumber")
	}
	if strings.TrimSpace(id.Name) == "" {
		return generic.Missing("name")
	}
	return nil
}

// NormalizeAccountNumber trims and upper-cases an account number.
func NormalizeAccountNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

// =============================================================================
// ACCOUNT GROUPS
// =============================================================================

// AccountGroupType decides which side of the balance an account group
// contributes to.
type AccountGroupType int

const (
	Assets AccountGroupType = iota + 1
	Liabilities
)

func (t AccountGroupType) String() string {
	switch t {
	case Assets:
		return "Assets"
	case Liabilities:
		return "Liabilities"
	default:
		return "Unknown"
	}
}

// ParseAccountGroupType is the inverse of String.
func ParseAccountGroupType(s string) (AccountGroupType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assets":
		return Assets, nil
	case "liabilities":
		return Liabilities, nil
	default:
		return 0, &generic.InvalidValueError{Field: "accountGroupType", Reason: "must be Assets or Liabilities"}
	}
}

// AccountGroup classifies accounts for the balance sheet.
type AccountGroup struct {
	Number int
	Name   string
	Type   AccountGroupType
}

// BudgetAccountGroup classifies budget accounts.
type BudgetAccountGroup struct {
	Number int
	Name   string
}
