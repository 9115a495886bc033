package accounting

import (
	"slices"

	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// POSTING LINE - One ledger entry
// =============================================================================

// PostingLine is one recorded posting. The same line appears in the
// ledger of its account and, when set, in those of its budget account
// and contact account.
//
// The *ValuesAtPostingDate fields are filled in by Calculate: they hold
// each referenced account's values right after this line was posted.
type PostingLine struct {
	Identifier           string
	AccountingNumber     int
	PostingDate          generic.TimePoint
	Reference            string
	Details              string
	SortOrder            int
	AccountNumber        string
	BudgetAccountNumber  string // empty when the line has no budget account
	ContactAccountNumber string // empty when the line has no contact account
	Debit                decimal.Decimal
	Credit               decimal.Decimal

	AccountValuesAtPostingDate        *CreditInfoValues
	BudgetAccountValuesAtPostingDate  *BudgetInfoValues
	ContactAccountValuesAtPostingDate *ContactInfoValues
}

// PostingValue is debit minus credit.
func (p PostingLine) PostingValue() decimal.Decimal { return p.Debit.Sub(p.Credit) }

func (p PostingLine) PostedOn() generic.TimePoint { return p.PostingDate }
func (p PostingLine) Order() int                  { return p.SortOrder }

// CounterAccountValuesAtPostingDate returns the contact account snapshot
// statements print next to each line.
func (p PostingLine) CounterAccountValuesAtPostingDate() (ContactInfoValues, bool) {
	if p.ContactAccountValuesAtPostingDate == nil {
		return ContactInfoValues{}, false
	}
	return *p.ContactAccountValuesAtPostingDate, true
}

// CloneEntry returns a copy that shares no value snapshot with p.
func (p PostingLine) CloneEntry() PostingLine {
	if v := p.AccountValuesAtPostingDate; v != nil {
		c := *v
		p.AccountValuesAtPostingDate = &c
	}
	if v := p.BudgetAccountValuesAtPostingDate; v != nil {
		c := *v
		p.BudgetAccountValuesAtPostingDate = &c
	}
	if v := p.ContactAccountValuesAtPostingDate; v != nil {
		c := *v
		p.ContactAccountValuesAtPostingDate = &c
	}
	return p
}

// HasBudgetAccount and HasContactAccount report the optional references.
func (p PostingLine) HasBudgetAccount() bool  { return p.BudgetAccountNumber != "" }
func (p PostingLine) HasContactAccount() bool { return p.ContactAccountNumber != "" }

// Ledger is the posting ledger of an account.
type Ledger = generic.PostingLedger[PostingLine]

// NewLedger returns a ledger holding lines.
func NewLedger(lines ...PostingLine) *Ledger {
	return generic.NewPostingLedger(lines...)
}

// =============================================================================
// CALCULATION HELPERS (shared by the three account kinds)
// =============================================================================

// monthsToCalculate returns, ascending, every month up to the status
// month that has a bucket or a posting, plus the status month itself.
func monthsToCalculate[V generic.Accumulator[V]](infos *generic.PeriodAggregate[V], ledger *Ledger, statusDate generic.TimePoint) []generic.YearMonth {
	last := statusDate.YearMonth()
	seen := map[generic.YearMonth]bool{last: true}
	for _, k := range infos.Keys() {
		if k.BeforeOrEqual(last) {
			seen[k] = true
		}
	}
	for _, line := range ledger.Entries() {
		if k := line.PostingDate.YearMonth(); k.BeforeOrEqual(last) {
			seen[k] = true
		}
	}
	months := make([]generic.YearMonth, 0, len(seen))
	for k := range seen {
		months = append(months, k)
	}
	slices.SortFunc(months, generic.YearMonth.Compare)
	return months
}

// postedInMonth sums the month's postings, stopping at statusDate.
func postedInMonth(ledger *Ledger, month generic.YearMonth, statusDate generic.TimePoint) decimal.Decimal {
	end := month.LastDay()
	if statusDate.Before(end) {
		end = statusDate
	}
	return ledger.CalculatePostingValue(month.FirstDay(), end, nil)
}

// postedUpToLine sums everything from `from` up to and including line.
func postedUpToLine(ledger *Ledger, from generic.TimePoint, line PostingLine) decimal.Decimal {
	order := line.SortOrder
	return ledger.CalculatePostingValue(from, line.PostingDate, &order)
}

// calculateLines fills one snapshot field on every line of ledger.
func calculateLines(ledger *Ledger, set func(*PostingLine)) {
	for i, line := range ledger.Entries() {
		set(&line)
		ledger.Replace(i, line)
	}
}

func cloneLedger(ledger *Ledger) *Ledger {
	if ledger == nil {
		return NewLedger()
	}
	clone := NewLedger(ledger.Entries()...)
	clone.Unsealed = ledger.Unsealed
	return clone
}

func cloneInfos[V generic.Accumulator[V]](infos *generic.PeriodAggregate[V]) *generic.PeriodAggregate[V] {
	if infos == nil {
		return generic.NewPeriodAggregate[V]()
	}
	return infos.Clone()
}
