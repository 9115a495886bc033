// Package memory provides an in-memory accounting.Repository.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps accountings in memory. Loads hand out deep copies, so
// callers may calculate and mutate freely.
type Store struct {
	mu          sync.RWMutex
	accountings map[int]*accounting.Accounting
	sortOrders  map[int]int // last sort order handed out per accounting

	// NewID returns posting line identifiers. uuid.NewString when nil.
	NewID func() string
}

var _ accounting.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		accountings: make(map[int]*accounting.Accounting),
		sortOrders:  make(map[int]int),
	}
}

// SaveAccounting stores a copy of a, replacing any accounting with the
// same number.
func (m *Store) SaveAccounting(_ context.Context, a *accounting.Accounting) error {
	if a == nil {
		return generic.Missing("accounting")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := a.Clone()
	m.accountings[a.Number] = clone
	m.sortOrders[a.Number] = maxSortOrder(clone)
	return nil
}

// Reset drops every accounting.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accountings = make(map[int]*accounting.Accounting)
	m.sortOrders = make(map[int]int)
	return nil
}

func (m *Store) LoadAccounting(_ context.Context, accountingNumber int, asOf generic.TimePoint) (*accounting.Accounting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accountings[accountingNumber]
	if !ok {
		return nil, nil
	}
	clone := a.Clone()
	for _, acc := range clone.Accounts() {
		acc.Postings = upTo(acc.Postings, asOf)
	}
	for _, acc := range clone.BudgetAccounts() {
		acc.Postings = upTo(acc.Postings, asOf)
	}
	for _, acc := range clone.ContactAccounts() {
		acc.Postings = upTo(acc.Postings, asOf)
	}
	return clone, nil
}

func (m *Store) LoadAccount(_ context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*accounting.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accountings[accountingNumber]
	if !ok {
		return nil, nil
	}
	acc, ok := a.Account(accountNumber)
	if !ok {
		return nil, nil
	}
	clone := acc.Clone()
	clone.Postings = upTo(clone.Postings, asOf)
	return clone, nil
}

func (m *Store) LoadBudgetAccount(_ context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*accounting.BudgetAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accountings[accountingNumber]
	if !ok {
		return nil, nil
	}
	acc, ok := a.BudgetAccount(accountNumber)
	if !ok {
		return nil, nil
	}
	clone := acc.Clone()
	clone.Postings = upTo(clone.Postings, asOf)
	return clone, nil
}

func (m *Store) LoadContactAccount(_ context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*accounting.ContactAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accountings[accountingNumber]
	if !ok {
		return nil, nil
	}
	acc, ok := a.ContactAccount(accountNumber)
	if !ok {
		return nil, nil
	}
	clone := acc.Clone()
	clone.Postings = upTo(clone.Postings, asOf)
	return clone, nil
}

func (m *Store) LoadAccounts(_ context.Context, accountingNumber int, asOf generic.TimePoint) ([]*accounting.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accountings[accountingNumber]
	if !ok {
		return nil, nil
	}
	accounts := a.Accounts()
	out := make([]*accounting.Account, 0, len(accounts))
	for _, acc := range accounts {
		clone := acc.Clone()
		clone.Postings = upTo(clone.Postings, asOf)
		out = append(out, clone)
	}
	return out, nil
}

// ApplyJournal appends the journal's lines to the ledgers they reference.
// Every reference is checked before anything is written. An empty
// journal or an unknown accounting yields no result.
func (m *Store) ApplyJournal(_ context.Context, journal *accounting.Journal, engine accounting.WarningEngine) (*accounting.JournalResult, error) {
	if journal == nil {
		return nil, generic.Missing("journal")
	}
	if len(journal.Lines) == 0 {
		return nil, nil
	}
	if err := journal.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accountings[journal.AccountingNumber]
	if !ok {
		return nil, nil
	}
	if err := checkReferences(a, journal); err != nil {
		return nil, err
	}

	lines := make([]accounting.PostingLine, 0, len(journal.Lines))
	for _, jl := range journal.Lines {
		m.sortOrders[a.Number]++
		lines = append(lines, accounting.PostingLine{
			Identifier:           m.newID(),
			AccountingNumber:     a.Number,
			PostingDate:          jl.PostingDate,
			Reference:            jl.Reference,
			Details:              jl.Details,
			SortOrder:            m.sortOrders[a.Number],
			AccountNumber:        accounting.NormalizeAccountNumber(jl.AccountNumber),
			BudgetAccountNumber:  accounting.NormalizeAccountNumber(jl.BudgetAccountNumber),
			ContactAccountNumber: accounting.NormalizeAccountNumber(jl.ContactAccountNumber),
			Debit:                jl.Debit,
			Credit:               jl.Credit,
		})
	}

	for _, line := range lines {
		acc, _ := a.Account(line.AccountNumber)
		acc.Postings.Add(line)
		if line.HasBudgetAccount() {
			budget, _ := a.BudgetAccount(line.BudgetAccountNumber)
			budget.Postings.Add(line)
		}
		if line.HasContactAccount() {
			contact, _ := a.ContactAccount(line.ContactAccountNumber)
			contact.Postings.Add(line)
		}
	}

	return &accounting.JournalResult{
		Postings:   accounting.NewLedger(lines...),
		Accounting: a.Clone(),
		Engine:     engine,
	}, nil
}

func (m *Store) newID() string {
	if m.NewID != nil {
		return m.NewID()
	}
	return uuid.NewString()
}

func checkReferences(a *accounting.Accounting, journal *accounting.Journal) error {
	for i, jl := range journal.Lines {
		if _, ok := a.Account(jl.AccountNumber); !ok {
			return &generic.InvalidValueError{
				Field:  fmt.Sprintf("lines[%d].accountNumber", i),
				Reason: "no account " + jl.AccountNumber,
			}
		}
		if jl.BudgetAccountNumber != "" {
			if _, ok := a.BudgetAccount(jl.BudgetAccountNumber); !ok {
				return &generic.InvalidValueError{
					Field:  fmt.Sprintf("lines[%d].budgetAccountNumber", i),
					Reason: "no budget account " + jl.BudgetAccountNumber,
				}
			}
		}
		if jl.ContactAccountNumber != "" {
			if _, ok := a.ContactAccount(jl.ContactAccountNumber); !ok {
				return &generic.InvalidValueError{
					Field:  fmt.Sprintf("lines[%d].contactAccountNumber", i),
					Reason: "no contact account " + jl.ContactAccountNumber,
				}
			}
		}
	}
	return nil
}

// upTo returns a ledger holding the lines posted on or before asOf.
func upTo(ledger *accounting.Ledger, asOf generic.TimePoint) *accounting.Ledger {
	out := accounting.NewLedger()
	if ledger == nil {
		return out
	}
	out.Unsealed = ledger.Unsealed
	for _, line := range ledger.Entries() {
		if line.PostingDate.BeforeOrEqual(asOf) {
			out.Add(line)
		}
	}
	return out
}

func maxSortOrder(a *accounting.Accounting) int {
	highest := 0
	track := func(ledger *accounting.Ledger) {
		if ledger == nil {
			return
		}
		for _, line := range ledger.Entries() {
			highest = max(highest, line.SortOrder)
		}
	}
	for _, acc := range a.Accounts() {
		track(acc.Postings)
	}
	for _, acc := range a.BudgetAccounts() {
		track(acc.Postings)
	}
	for _, acc := range a.ContactAccounts() {
		track(acc.Postings)
	}
	return highest
}
