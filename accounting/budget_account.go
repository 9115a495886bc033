package accounting

import (
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// BUDGET ACCOUNT - Loaded root
// =============================================================================

// BudgetAccount is an income/expense account with a monthly budget.
//
// Expenses are posted as credit, so they lower Posted the same way they
// lower Budget.
type BudgetAccount struct {
	AccountIdentity
	Group       BudgetAccountGroup
	BudgetInfos *generic.PeriodAggregate[BudgetInfo]
	Postings    *Ledger
	generic.Unsealed
}

func NewBudgetAccount(identity AccountIdentity, group BudgetAccountGroup) (*BudgetAccount, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	identity.AccountNumber = NormalizeAccountNumber(identity.AccountNumber)
	return &BudgetAccount{
		AccountIdentity: identity,
		Group:           group,
		BudgetInfos:     generic.NewPeriodAggregate[BudgetInfo](),
		Postings:        NewLedger(),
	}, nil
}

func (b *BudgetAccount) Clone() *BudgetAccount {
	clone := *b
	clone.BudgetInfos = cloneInfos(b.BudgetInfos)
	clone.Postings = cloneLedger(b.Postings)
	return &clone
}

// ValuesAtPostingDate returns the month's budget and what was posted in
// the month up to and including line.
func (b *BudgetAccount) ValuesAtPostingDate(line PostingLine) BudgetInfoValues {
	return budgetValuesAt(b.BudgetInfos, b.Postings, line)
}

// Calculate derives the snapshot of the budget account at statusDate.
func (b *BudgetAccount) Calculate(statusDate generic.TimePoint) *CalculatedBudgetAccount {
	infos := cloneInfos(b.BudgetInfos)
	postings := cloneLedger(b.Postings)

	for _, month := range monthsToCalculate(infos, postings, statusDate) {
		info, _ := infos.Get(month)
		info.posted = postedInMonth(postings, month, statusDate)
		infos.Put(month, info)
	}

	calculateLines(postings, func(line *PostingLine) {
		v := budgetValuesAt(infos, postings, *line)
		line.BudgetAccountValuesAtPostingDate = &v
	})

	return &CalculatedBudgetAccount{
		budgetAccountSnapshot: budgetAccountSnapshot{
			identity:   b.AccountIdentity,
			group:      b.Group,
			statusDate: statusDate,
			month:      infos.ValuesForMonth(statusDate).Values(),
			lastMonth:  infos.ValuesForLastMonth(statusDate).Values(),
			yearToDate: infos.ValuesForYearToDate(statusDate).Values(),
			lastYear:   infos.ValuesForLastYear(statusDate).Values(),
		},
		Unsealed:    b.Unsealed,
		budgetInfos: infos,
		postings:    postings,
	}
}

func budgetValuesAt(infos *generic.PeriodAggregate[BudgetInfo], postings *Ledger, line PostingLine) BudgetInfoValues {
	month := line.PostingDate.YearMonth()
	return BudgetInfoValues{
		Budget: infos.ValuesForMonth(line.PostingDate).Budget(),
		Posted: postedUpToLine(postings, month.FirstDay(), line),
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// BudgetAccountView is the read side of a calculated budget account.
type BudgetAccountView interface {
	generic.Protectable
	Identity() AccountIdentity
	Group() BudgetAccountGroup
	StatusDate() generic.TimePoint
	ValuesForMonthOfStatusDate() BudgetInfoValues
	ValuesForLastMonthOfStatusDate() BudgetInfoValues
	ValuesForYearToDateOfStatusDate() BudgetInfoValues
	ValuesForLastYearOfStatusDate() BudgetInfoValues
	Ledger() generic.LedgerView[PostingLine]
}

type budgetAccountSnapshot struct {
	identity   AccountIdentity
	group      BudgetAccountGroup
	statusDate generic.TimePoint
	month      BudgetInfoValues
	lastMonth  BudgetInfoValues
	yearToDate BudgetInfoValues
	lastYear   BudgetInfoValues
}

func (s budgetAccountSnapshot) Identity() AccountIdentity                        { return s.identity }
func (s budgetAccountSnapshot) Group() BudgetAccountGroup                        { return s.group }
func (s budgetAccountSnapshot) StatusDate() generic.TimePoint                    { return s.statusDate }
func (s budgetAccountSnapshot) ValuesForMonthOfStatusDate() BudgetInfoValues      { return s.month }
func (s budgetAccountSnapshot) ValuesForLastMonthOfStatusDate() BudgetInfoValues  { return s.lastMonth }
func (s budgetAccountSnapshot) ValuesForYearToDateOfStatusDate() BudgetInfoValues { return s.yearToDate }
func (s budgetAccountSnapshot) ValuesForLastYearOfStatusDate() BudgetInfoValues   { return s.lastYear }

type CalculatedBudgetAccount struct {
	budgetAccountSnapshot
	generic.Unsealed
	budgetInfos *generic.PeriodAggregate[BudgetInfo]
	postings    *Ledger
}

func (c *CalculatedBudgetAccount) BudgetInfos() *generic.PeriodAggregate[BudgetInfo] { return c.budgetInfos }
func (c *CalculatedBudgetAccount) Postings() *Ledger                                  { return c.postings }
func (c *CalculatedBudgetAccount) Ledger() generic.LedgerView[PostingLine]            { return c.postings }

func (c *CalculatedBudgetAccount) Seal() *SealedBudgetAccount {
	return &SealedBudgetAccount{
		budgetAccountSnapshot: c.budgetAccountSnapshot,
		budgetInfos:           c.budgetInfos.Seal(),
		postings:              c.postings.Seal(),
	}
}

type SealedBudgetAccount struct {
	budgetAccountSnapshot
	generic.Sealed
	budgetInfos generic.SealedPeriodAggregate[BudgetInfo]
	postings    generic.SealedPostingLedger[PostingLine]
}

func (s *SealedBudgetAccount) BudgetInfos() generic.SealedPeriodAggregate[BudgetInfo] { return s.budgetInfos }
func (s *SealedBudgetAccount) Postings() generic.SealedPostingLedger[PostingLine]     { return s.postings }
func (s *SealedBudgetAccount) Ledger() generic.LedgerView[PostingLine]                { return s.postings }
func (s *SealedBudgetAccount) Seal() *SealedBudgetAccount                             { return s }
