/*
posting_ledger.go - Posting entries and range summation

PURPOSE:
  The PostingLedger is the collection of posting entries recorded on one
  account. Derived balances are always computed by summing entries;
  there's no stored balance that can get out of sync.

CANONICAL ORDER:
  Ordered() sorts by posting date descending, then sort order descending.
  Every consumer that needs a deterministic sequence (statements,
  warnings) starts from this order. Insertion order carries no meaning.

RANGE SUMMATION:
  CalculatePostingValue(from, to, ceiling) sums the posting value of
  entries with from <= date <= to. With a ceiling, entries dated exactly
  on `to` only count when their sort order is <= *ceiling, so postings
  recorded later on the same day are left out.

  Precondition: from <= to. The caller controls both bounds.

COPIES:
  Entries that implement EntryCloner are cloned every time they enter or
  leave a ledger, so a sealed ledger never shares state with its source
  or with a caller.
*/
package generic

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Entry is implemented by posting entries kept in a ledger.
type Entry interface {
	PostedOn() TimePoint
	Order() int
	PostingValue() decimal.Decimal
}

// EntryCloner is implemented by entries that hold references.
type EntryCloner[E any] interface {
	CloneEntry() E
}

func cloneEntry[E Entry](e E) E {
	if c, ok := any(e).(EntryCloner[E]); ok {
		return c.CloneEntry()
	}
	return e
}

func cloneEntries[E Entry](items []E) []E {
	out := slices.Clone(items)
	for i, e := range out {
		out[i] = cloneEntry(e)
	}
	return out
}

// CompareEntries is the canonical ordering: date desc, then sort order desc.
func CompareEntries[E Entry](a, b E) int {
	if c := b.PostedOn().Compare(a.PostedOn()); c != 0 {
		return c
	}
	return cmp.Compare(b.Order(), a.Order())
}

// LedgerView is the read side shared by sealed and unsealed ledgers.
type LedgerView[E Entry] interface {
	Protectable
	Entries() []E
	Len() int
	CalculatePostingValue(from, to TimePoint, sortOrderCeiling *int) decimal.Decimal
}

// =============================================================================
// ENTRIES - Read-only core
// =============================================================================

type entries[E Entry] struct {
	items []E
}

// Entries returns a copy of the entries in their current order.
func (l entries[E]) Entries() []E { return cloneEntries(l.items) }

func (l entries[E]) Len() int { return len(l.items) }

func (l entries[E]) CalculatePostingValue(from, to TimePoint, sortOrderCeiling *int) decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.items {
		at := e.PostedOn()
		if at.Before(from) || at.After(to) {
			continue
		}
		if sortOrderCeiling != nil && at.Equal(to) && e.Order() > *sortOrderCeiling {
			continue
		}
		total = total.Add(e.PostingValue())
	}
	return total
}

func (l entries[E]) ordered() []E {
	out := cloneEntries(l.items)
	slices.SortStableFunc(out, CompareEntries[E])
	return out
}

func (l entries[E]) top(n int) []E {
	if n < 0 {
		n = 0
	}
	if n > len(l.items) {
		n = len(l.items)
	}
	return cloneEntries(l.items[:n])
}

// =============================================================================
// POSTING LEDGER - Unsealed
// =============================================================================

// PostingLedger is the mutable ledger owned by an account or a journal result.
type PostingLedger[E Entry] struct {
	entries[E]
	Unsealed
}

// NewPostingLedger returns a ledger holding a copy of items.
func NewPostingLedger[E Entry](items ...E) *PostingLedger[E] {
	return &PostingLedger[E]{entries: entries[E]{items: cloneEntries(items)}}
}

// Add appends entries.
func (l *PostingLedger[E]) Add(items ...E) {
	l.items = append(l.items, cloneEntries(items)...)
}

// Replace overwrites the entry at index i.
func (l *PostingLedger[E]) Replace(i int, e E) {
	l.items[i] = cloneEntry(e)
}

// Ordered returns a new ledger in canonical order.
func (l *PostingLedger[E]) Ordered() *PostingLedger[E] {
	return &PostingLedger[E]{entries: entries[E]{items: l.ordered()}, Unsealed: l.Unsealed}
}

// Top returns a new ledger with the first n entries. Call it on an
// ordered ledger.
func (l *PostingLedger[E]) Top(n int) *PostingLedger[E] {
	return &PostingLedger[E]{entries: entries[E]{items: l.top(n)}, Unsealed: l.Unsealed}
}

// Seal returns a read-only copy.
func (l *PostingLedger[E]) Seal() SealedPostingLedger[E] {
	return SealedPostingLedger[E]{entries: entries[E]{items: cloneEntries(l.items)}}
}

// =============================================================================
// SEALED POSTING LEDGER
// =============================================================================

// SealedPostingLedger exposes only the read side.
type SealedPostingLedger[E Entry] struct {
	entries[E]
	Sealed
}

func (s SealedPostingLedger[E]) Ordered() SealedPostingLedger[E] {
	return SealedPostingLedger[E]{entries: entries[E]{items: s.ordered()}}
}

func (s SealedPostingLedger[E]) Top(n int) SealedPostingLedger[E] {
	return SealedPostingLedger[E]{entries: entries[E]{items: s.top(n)}}
}

// Seal is a no-op on a sealed ledger.
func (s SealedPostingLedger[E]) Seal() SealedPostingLedger[E] { return s }
