package accounting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// CREDIT INFO - Account buckets
// =============================================================================

// CreditInfo is one month of an Account: the stored credit limit and the
// balance movement posted in that month.
//
// Aggregation keeps the credit of the latest bucket (a limit is a level)
// and adds balances (a movement is a flow).
type CreditInfo struct {
	credit  decimal.Decimal
	balance decimal.Decimal
}

// NewCreditInfo fails with an InvalidValueError when credit is negative.
func NewCreditInfo(credit decimal.Decimal) (CreditInfo, error) {
	var c CreditInfo
	if err := c.SetCredit(credit); err != nil {
		return CreditInfo{}, err
	}
	return c, nil
}

func (c CreditInfo) Credit() decimal.Decimal  { return c.credit }
func (c CreditInfo) Balance() decimal.Decimal { return c.balance }

func (c *CreditInfo) SetCredit(v decimal.Decimal) error {
	if v.IsNegative() {
		return generic.BelowZero("credit")
	}
	c.credit = v
	return nil
}

func (c CreditInfo) Accumulate(next CreditInfo) CreditInfo {
	return CreditInfo{credit: next.credit, balance: c.balance.Add(next.balance)}
}

func (c CreditInfo) Values() CreditInfoValues {
	return CreditInfoValues{Credit: c.credit, Balance: c.balance}
}

// CreditInfoValues is the derived view of credit infos.
type CreditInfoValues struct {
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// Available is what can still be drawn: credit plus balance.
func (v CreditInfoValues) Available() decimal.Decimal {
	return v.Credit.Add(v.Balance)
}

// =============================================================================
// BUDGET INFO - Budget account buckets
// =============================================================================

// BudgetInfo is one month of a BudgetAccount. Income and expenses are
// stored and never negative; posted is computed from the ledger.
type BudgetInfo struct {
	income   decimal.Decimal
	expenses decimal.Decimal
	posted   decimal.Decimal
}

// NewBudgetInfo fails with an InvalidValueError when income or expenses
// is negative.
func NewBudgetInfo(income, expenses decimal.Decimal) (BudgetInfo, error) {
	var b BudgetInfo
	if err := b.SetIncome(income); err != nil {
		return BudgetInfo{}, err
	}
	if err := b.SetExpenses(expenses); err != nil {
		return BudgetInfo{}, err
	}
	return b, nil
}

func (b BudgetInfo) Income() decimal.Decimal   { return b.income }
func (b BudgetInfo) Expenses() decimal.Decimal { return b.expenses }
func (b BudgetInfo) Posted() decimal.Decimal   { return b.posted }

// Budget is income minus expenses.
func (b BudgetInfo) Budget() decimal.Decimal { return b.income.Sub(b.expenses) }

func (b *BudgetInfo) SetIncome(v decimal.Decimal) error {
	if v.IsNegative() {
		return generic.BelowZero("income")
	}
	b.income = v
	return nil
}

func (b *BudgetInfo) SetExpenses(v decimal.Decimal) error {
	if v.IsNegative() {
		return generic.BelowZero("expenses")
	}
	b.expenses = v
	return nil
}

func (b BudgetInfo) Accumulate(next BudgetInfo) BudgetInfo {
	return BudgetInfo{
		income:   b.income.Add(next.income),
		expenses: b.expenses.Add(next.expenses),
		posted:   b.posted.Add(next.posted),
	}
}

func (b BudgetInfo) Values() BudgetInfoValues {
	return BudgetInfoValues{Budget: b.Budget(), Posted: b.posted}
}

// BudgetInfoValues is the derived view of budget infos.
type BudgetInfoValues struct {
	Budget decimal.Decimal
	Posted decimal.Decimal
}

// Available is the room left in the budget. A negative budget is an
// expense budget: posted expenses count down from it.
func (v BudgetInfoValues) Available() decimal.Decimal {
	if v.Budget.IsNegative() {
		return v.Posted.Sub(v.Budget)
	}
	return v.Budget.Sub(v.Posted)
}

// =============================================================================
// BALANCE INFO - Contact account buckets
// =============================================================================

// BalanceInfo is one month of a ContactAccount: the balance movement
// posted in that month.
type BalanceInfo struct {
	balance decimal.Decimal
}

func (b BalanceInfo) Balance() decimal.Decimal { return b.balance }

func (b BalanceInfo) Accumulate(next BalanceInfo) BalanceInfo {
	return BalanceInfo{balance: b.balance.Add(next.balance)}
}

func (b BalanceInfo) Values() ContactInfoValues {
	return ContactInfoValues{Balance: b.balance}
}

// ContactInfoValues is the derived view of balance infos.
type ContactInfoValues struct {
	Balance decimal.Decimal
}
