package accounting

import (
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// CONTACT ACCOUNT - Loaded root
// =============================================================================

// ContactAccount tracks what a debtor or creditor owes.
type ContactAccount struct {
	AccountIdentity
	MailAddress    string
	PrimaryPhone   string
	SecondaryPhone string
	BalanceInfos   *generic.PeriodAggregate[BalanceInfo]
	Postings       *Ledger
	generic.Unsealed
}

func NewContactAccount(identity AccountIdentity) (*ContactAccount, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	identity.AccountNumber = NormalizeAccountNumber(identity.AccountNumber)
	return &ContactAccount{
		AccountIdentity: identity,
		BalanceInfos:    generic.NewPeriodAggregate[BalanceInfo](),
		Postings:        NewLedger(),
	}, nil
}

func (c *ContactAccount) Clone() *ContactAccount {
	clone := *c
	clone.BalanceInfos = cloneInfos(c.BalanceInfos)
	clone.Postings = cloneLedger(c.Postings)
	return &clone
}

// ValuesAtPostingDate returns the contact balance right after line.
func (c *ContactAccount) ValuesAtPostingDate(line PostingLine) ContactInfoValues {
	return ContactInfoValues{Balance: postedUpToLine(c.Postings, generic.MinTimePoint, line)}
}

// Calculate derives the snapshot of the contact account at statusDate.
func (c *ContactAccount) Calculate(statusDate generic.TimePoint) *CalculatedContactAccount {
	infos := cloneInfos(c.BalanceInfos)
	postings := cloneLedger(c.Postings)

	for _, month := range monthsToCalculate(infos, postings, statusDate) {
		infos.Put(month, BalanceInfo{balance: postedInMonth(postings, month, statusDate)})
	}

	calculateLines(postings, func(line *PostingLine) {
		v := ContactInfoValues{Balance: postedUpToLine(postings, generic.MinTimePoint, *line)}
		line.ContactAccountValuesAtPostingDate = &v
	})

	return &CalculatedContactAccount{
		contactAccountSnapshot: contactAccountSnapshot{
			identity:         c.AccountIdentity,
			mailAddress:      c.MailAddress,
			primaryPhone:     c.PrimaryPhone,
			secondaryPhone:   c.SecondaryPhone,
			statusDate:       statusDate,
			atStatusDate:     infos.ValuesAtStatusDate(statusDate).Values(),
			atEndOfLastMonth: infos.ValuesAtEndOfLastMonth(statusDate).Values(),
			atEndOfLastYear:  infos.ValuesAtEndOfLastYear(statusDate).Values(),
		},
		Unsealed:     c.Unsealed,
		balanceInfos: infos,
		postings:     postings,
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// ContactAccountView is the read side of a calculated contact account.
type ContactAccountView interface {
	generic.Protectable
	Identity() AccountIdentity
	MailAddress() string
	PrimaryPhone() string
	SecondaryPhone() string
	StatusDate() generic.TimePoint
	ValuesAtStatusDate() ContactInfoValues
	ValuesAtEndOfLastMonthFromStatusDate() ContactInfoValues
	ValuesAtEndOfLastYearFromStatusDate() ContactInfoValues
	Ledger() generic.LedgerView[PostingLine]
}

type contactAccountSnapshot struct {
	identity         AccountIdentity
	mailAddress      string
	primaryPhone     string
	secondaryPhone   string
	statusDate       generic.TimePoint
	atStatusDate     ContactInfoValues
	atEndOfLastMonth ContactInfoValues
	atEndOfLastYear  ContactInfoValues
}

func (s contactAccountSnapshot) Identity() AccountIdentity     { return s.identity }
func (s contactAccountSnapshot) MailAddress() string           { return s.mailAddress }
func (s contactAccountSnapshot) PrimaryPhone() string          { return s.primaryPhone }
func (s contactAccountSnapshot) SecondaryPhone() string        { return s.secondaryPhone }
func (s contactAccountSnapshot) StatusDate() generic.TimePoint { return s.statusDate }
func (s contactAccountSnapshot) ValuesAtStatusDate() ContactInfoValues {
	return s.atStatusDate
}
func (s contactAccountSnapshot) ValuesAtEndOfLastMonthFromStatusDate() ContactInfoValues {
	return s.atEndOfLastMonth
}
func (s contactAccountSnapshot) ValuesAtEndOfLastYearFromStatusDate() ContactInfoValues {
	return s.atEndOfLastYear
}

type CalculatedContactAccount struct {
	contactAccountSnapshot
	generic.Unsealed
	balanceInfos *generic.PeriodAggregate[BalanceInfo]
	postings     *Ledger
}

func (c *CalculatedContactAccount) BalanceInfos() *generic.PeriodAggregate[BalanceInfo] {
	return c.balanceInfos
}
func (c *CalculatedContactAccount) Postings() *Ledger { return c.postings }
func (c *CalculatedContactAccount) Ledger() generic.LedgerView[PostingLine] {
	return c.postings
}

func (c *CalculatedContactAccount) Seal() *SealedContactAccount {
	return &SealedContactAccount{
		contactAccountSnapshot: c.contactAccountSnapshot,
		balanceInfos:           c.balanceInfos.Seal(),
		postings:               c.postings.Seal(),
	}
}

type SealedContactAccount struct {
	contactAccountSnapshot
	generic.Sealed
	balanceInfos generic.SealedPeriodAggregate[BalanceInfo]
	postings     generic.SealedPostingLedger[PostingLine]
}

func (s *SealedContactAccount) BalanceInfos() generic.SealedPeriodAggregate[BalanceInfo] {
	return s.balanceInfos
}
func (s *SealedContactAccount) Postings() generic.SealedPostingLedger[PostingLine] {
	return s.postings
}
func (s *SealedContactAccount) Ledger() generic.LedgerView[PostingLine] { return s.postings }
func (s *SealedContactAccount) Seal() *SealedContactAccount { return s }
