package accounting

import (
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// ACCOUNT - Loaded root
// =============================================================================

// Account is a balance sheet account as loaded by the repository.
type Account struct {
	AccountIdentity
	Group       AccountGroup
	CreditInfos *generic.PeriodAggregate[CreditInfo]
	Postings    *Ledger
	generic.Unsealed
}

// NewAccount returns an account with empty credit infos and ledger.
func NewAccount(identity AccountIdentity, group AccountGroup) (*Account, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	identity.AccountNumber = NormalizeAccountNumber(identity.AccountNumber)
	return &Account{
		AccountIdentity: identity,
		Group:           group,
		CreditInfos:     generic.NewPeriodAggregate[CreditInfo](),
		Postings:        NewLedger(),
	}, nil
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	clone := *a
	clone.CreditInfos = cloneInfos(a.CreditInfos)
	clone.Postings = cloneLedger(a.Postings)
	return &clone
}

// ValuesAtPostingDate returns the account values right after line was
// posted: the credit in force that month and the balance including every
// earlier line and the same-day lines up to line's sort order.
func (a *Account) ValuesAtPostingDate(line PostingLine) CreditInfoValues {
	return accountValuesAt(a.CreditInfos, a.Postings, line)
}

// Calculate derives the snapshot of the account at statusDate. The
// account itself is left untouched.
func (a *Account) Calculate(statusDate generic.TimePoint) *CalculatedAccount {
	infos := cloneInfos(a.CreditInfos)
	postings := cloneLedger(a.Postings)

	for _, month := range monthsToCalculate(infos, postings, statusDate) {
		info, ok := infos.Get(month)
		if !ok {
			// New months inherit the credit in force before them.
			info.credit = infos.ValuesAtStatusDate(month.Previous().LastDay()).Credit()
		}
		info.balance = postedInMonth(postings, month, statusDate)
		infos.Put(month, info)
	}

	calculateLines(postings, func(line *PostingLine) {
		v := accountValuesAt(infos, postings, *line)
		line.AccountValuesAtPostingDate = &v
	})

	return &CalculatedAccount{
		accountSnapshot: accountSnapshot{
			identity:         a.AccountIdentity,
			group:            a.Group,
			statusDate:       statusDate,
			atStatusDate:     infos.ValuesAtStatusDate(statusDate).Values(),
			atEndOfLastMonth: infos.ValuesAtEndOfLastMonth(statusDate).Values(),
			atEndOfLastYear:  infos.ValuesAtEndOfLastYear(statusDate).Values(),
		},
		Unsealed:    a.Unsealed,
		creditInfos: infos,
		postings:    postings,
	}
}

func accountValuesAt(infos *generic.PeriodAggregate[CreditInfo], postings *Ledger, line PostingLine) CreditInfoValues {
	return CreditInfoValues{
		Credit:  infos.ValuesAtStatusDate(line.PostingDate).Credit(),
		Balance: postedUpToLine(postings, generic.MinTimePoint, line),
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// AccountView is the read side of a calculated account, sealed or not.
type AccountView interface {
	generic.Protectable
	Identity() AccountIdentity
	Group() AccountGroup
	StatusDate() generic.TimePoint
	ValuesAtStatusDate() CreditInfoValues
	ValuesAtEndOfLastMonthFromStatusDate() CreditInfoValues
	ValuesAtEndOfLastYearFromStatusDate() CreditInfoValues
	Ledger() generic.LedgerView[PostingLine]
}

type accountSnapshot struct {
	identity         AccountIdentity
	group            AccountGroup
	statusDate       generic.TimePoint
	atStatusDate     CreditInfoValues
	atEndOfLastMonth CreditInfoValues
	atEndOfLastYear  CreditInfoValues
}

func (s accountSnapshot) Identity() AccountIdentity                             { return s.identity }
func (s accountSnapshot) Group() AccountGroup                                   { return s.group }
func (s accountSnapshot) StatusDate() generic.TimePoint                         { return s.statusDate }
func (s accountSnapshot) ValuesAtStatusDate() CreditInfoValues                  { return s.atStatusDate }
func (s accountSnapshot) ValuesAtEndOfLastMonthFromStatusDate() CreditInfoValues { return s.atEndOfLastMonth }
func (s accountSnapshot) ValuesAtEndOfLastYearFromStatusDate() CreditInfoValues  { return s.atEndOfLastYear }

// CalculatedAccount is an unsealed snapshot. Its credit infos and
// ledger may still be changed and its deletability toggled.
type CalculatedAccount struct {
	accountSnapshot
	generic.Unsealed
	creditInfos *generic.PeriodAggregate[CreditInfo]
	postings    *Ledger
}

func (c *CalculatedAccount) CreditInfos() *generic.PeriodAggregate[CreditInfo] { return c.creditInfos }
func (c *CalculatedAccount) Postings() *Ledger                                  { return c.postings }
func (c *CalculatedAccount) Ledger() generic.LedgerView[PostingLine]            { return c.postings }

// Seal returns the sealed form of the snapshot, with sealed credit infos
// and ledger.
func (c *CalculatedAccount) Seal() *SealedAccount {
	return &SealedAccount{
		accountSnapshot: c.accountSnapshot,
		creditInfos:     c.creditInfos.Seal(),
		postings:        c.postings.Seal(),
	}
}

// SealedAccount is a read-only, non-deletable snapshot.
type SealedAccount struct {
	accountSnapshot
	generic.Sealed
	creditInfos generic.SealedPeriodAggregate[CreditInfo]
	postings    generic.SealedPostingLedger[PostingLine]
}

func (s *SealedAccount) CreditInfos() generic.SealedPeriodAggregate[CreditInfo] { return s.creditInfos }
func (s *SealedAccount) Postings() generic.SealedPostingLedger[PostingLine]     { return s.postings }
func (s *SealedAccount) Ledger() generic.LedgerView[PostingLine]                { return s.postings }

// Seal is a no-op on a sealed account.
func (s *SealedAccount) Seal() *SealedAccount { return s }
