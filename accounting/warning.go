/*
warning.go - Posting warnings

PURPOSE:
  A warning ties a posting line to a business rule the line broke: the
  account ran past its credit, or an expense budget was overspent.

ORDER:
  WarningSet.Ordered sorts by posting date desc, sort order desc, then
  reason rank asc. A (line, reason) pair is kept once.

ENGINE:
  WarningEngine maps a ledger slice to a WarningSet. It is pure: the
  thresholds travel in Rules and the account values travel on the lines
  (the *ValuesAtPostingDate snapshots).
*/
package accounting

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// REASONS
// =============================================================================

// Reason is a closed set of rule violations. The numeric value is the
// tie-break rank.
type Reason int

const (
	AccountIsBeyondLimit Reason = iota
	BudgetAccountIsBeyondLimit
)

func (r Reason) Rank() int { return int(r) }

func (r Reason) String() string {
	switch r {
	case AccountIsBeyondLimit:
		return "AccountIsBeyondLimit"
	case BudgetAccountIsBeyondLimit:
		return "BudgetAccountIsBeyondLimit"
	default:
		return "Unknown"
	}
}

// =============================================================================
// WARNING & WARNING SET
// =============================================================================

// Warning is one rule violation caused by Posting.
type Warning struct {
	Reason        Reason
	AccountNumber string
	Amount        decimal.Decimal // how far beyond the limit, always <= 0
	Posting       PostingLine
}

type warningKey struct {
	identifier string
	date       string
	sortOrder  int
	reason     Reason
}

func (w Warning) key() warningKey {
	return warningKey{
		identifier: w.Posting.Identifier,
		date:       w.Posting.PostingDate.String(),
		sortOrder:  w.Posting.SortOrder,
		reason:     w.Reason,
	}
}

func compareWarnings(a, b Warning) int {
	if c := generic.CompareEntries(a.Posting, b.Posting); c != 0 {
		return c
	}
	return cmp.Compare(a.Reason.Rank(), b.Reason.Rank())
}

// WarningSet collects warnings.
type WarningSet struct {
	warnings []Warning
}

func NewWarningSet() *WarningSet {
	return &WarningSet{}
}

// Add fails with a MissingArgumentError when w is nil.
func (s *WarningSet) Add(w *Warning) error {
	if w == nil {
		return generic.Missing("warning")
	}
	s.warnings = append(s.warnings, *w)
	return nil
}

// AddAll fails with a MissingArgumentError when ws or one of its
// elements is nil. Nothing is added on failure.
func (s *WarningSet) AddAll(ws []*Warning) error {
	if ws == nil {
		return generic.Missing("warnings")
	}
	for _, w := range ws {
		if w == nil {
			return generic.Missing("warning")
		}
	}
	for _, w := range ws {
		s.warnings = append(s.warnings, *w)
	}
	return nil
}

func (s *WarningSet) Len() int { return len(s.warnings) }

// Warnings returns a copy of the warnings in their current order.
func (s *WarningSet) Warnings() []Warning { return slices.Clone(s.warnings) }

// Ordered returns a new set in canonical order with duplicates removed.
func (s *WarningSet) Ordered() *WarningSet {
	out := slices.Clone(s.warnings)
	slices.SortStableFunc(out, compareWarnings)
	seen := make(map[warningKey]bool, len(out))
	unique := out[:0]
	for _, w := range out {
		if seen[w.key()] {
			continue
		}
		seen[w.key()] = true
		unique = append(unique, w)
	}
	return &WarningSet{warnings: unique}
}

// =============================================================================
// WARNING ENGINE
// =============================================================================

// WarningEngine evaluates a ledger slice against business rules.
type WarningEngine interface {
	Evaluate(postings generic.LedgerView[PostingLine]) (*WarningSet, error)
}

// Rules holds the thresholds of the default engine.
type Rules struct {
	// MinimumAvailable is the lowest available amount (credit + balance)
	// an account may reach. Zero unless configured.
	MinimumAvailable decimal.Decimal
}

// PostingWarningCalculator is the default WarningEngine.
type PostingWarningCalculator struct {
	Rules Rules
}

func (c *PostingWarningCalculator) Evaluate(postings generic.LedgerView[PostingLine]) (*WarningSet, error) {
	if postings == nil {
		return nil, generic.Missing("postings")
	}
	set := NewWarningSet()
	for _, line := range postings.Entries() {
		if v := line.AccountValuesAtPostingDate; v != nil {
			if available := v.Available(); available.LessThan(c.Rules.MinimumAvailable) {
				set.warnings = append(set.warnings, Warning{
					Reason:        AccountIsBeyondLimit,
					AccountNumber: line.AccountNumber,
					Amount:        available.Sub(c.Rules.MinimumAvailable),
					Posting:       line,
				})
			}
		}
		if v := line.BudgetAccountValuesAtPostingDate; v != nil && v.Budget.IsNegative() {
			if available := v.Available(); available.IsNegative() {
				set.warnings = append(set.warnings, Warning{
					Reason:        BudgetAccountIsBeyondLimit,
					AccountNumber: line.BudgetAccountNumber,
					Amount:        available,
					Posting:       line,
				})
			}
		}
	}
	return set.Ordered(), nil
}
