/*
journal.go - Applying a journal to the ledgers

PURPOSE:
  A Journal is a batch of posting lines submitted together. Applying it
  appends the lines to the ledgers of the referenced accounts and
  reports the warnings the new lines raise.

FLOW (JournalApplier.Apply):
  1. Repository.ApplyJournal persists the lines. It returns a raw
     JournalResult, or nil when nothing was applied.
  2. nil result: the applier builds an empty result dated today whose
     warnings come from running the engine over an empty ledger. The
     engine is always called.
  3. otherwise: the applier returns whatever JournalResult.Calculate
     yields for today. That is a distinct CalculatedJournalResult.

ERRORS:
  A nil journal is a MissingArgumentError. Repository and engine errors
  propagate wrapped, never swallowed.
*/
package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// JOURNAL
// =============================================================================

// JournalLine is one line of a journal before it is posted.
type JournalLine struct {
	PostingDate          generic.TimePoint
	Reference            string
	Details              string
	AccountNumber        string
	BudgetAccountNumber  string
	ContactAccountNumber string
	Debit                decimal.Decimal
	Credit               decimal.Decimal
}

// Journal is a batch of lines for one accounting.
type Journal struct {
	AccountingNumber int
	Lines            []JournalLine
}

// Validate returns every problem found, joined.
func (j *Journal) Validate() error {
	if j == nil {
		return generic.Missing("journal")
	}
	var errs []error
	if j.AccountingNumber <= 0 {
		errs = append(errs, &generic.InvalidValueError{Field: "accountingNumber", Reason: "must be positive"})
	}
	if len(j.Lines) == 0 {
		errs = append(errs, generic.Missing("lines"))
	}
	for i, line := range j.Lines {
		if line.PostingDate.IsZero() {
			errs = append(errs, generic.Missing(fmt.Sprintf("lines[%d].postingDate", i)))
		}
		if NormalizeAccountNumber(line.AccountNumber) == "" {
			errs = append(errs, generic.Missing(fmt.Sprintf("lines[%d].accountNumber", i)))
		}
		if line.Debit.IsNegative() {
			errs = append(errs, generic.BelowZero(fmt.Sprintf("lines[%d].debit", i)))
		}
		if line.Credit.IsNegative() {
			errs = append(errs, generic.BelowZero(fmt.Sprintf("lines[%d].credit", i)))
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// JOURNAL RESULT
// =============================================================================

// JournalResult is what a repository returns after applying a journal:
// the new lines, the accounting as it is after the lines were appended,
// and the engine to evaluate them with.
type JournalResult struct {
	Postings   *Ledger
	Accounting *Accounting
	Engine     WarningEngine
}

// CalculatedJournalResult is the outcome handed back to callers.
type CalculatedJournalResult struct {
	StatusDate generic.TimePoint
	Postings   *Ledger
	Warnings   *WarningSet
}

// Calculate fills in the value snapshots of every new line and evaluates
// the warnings. A line referencing an account the result does not carry
// is an InternalError.
func (r *JournalResult) Calculate(statusDate generic.TimePoint) (*CalculatedJournalResult, error) {
	if r.Engine == nil {
		return nil, &generic.InternalError{Value: "warning engine"}
	}
	if r.Accounting == nil {
		return nil, &generic.InternalError{Value: "accounting"}
	}
	postings := cloneLedger(r.Postings)

	var calcErr error
	calculateLines(postings, func(line *PostingLine) {
		if calcErr != nil {
			return
		}
		calcErr = r.calculateLine(line)
	})
	if calcErr != nil {
		return nil, calcErr
	}

	warnings, err := r.Engine.Evaluate(postings)
	if err != nil {
		return nil, fmt.Errorf("evaluate warnings: %w", err)
	}
	return &CalculatedJournalResult{
		StatusDate: statusDate,
		Postings:   postings.Ordered(),
		Warnings:   warnings.Ordered(),
	}, nil
}

func (r *JournalResult) calculateLine(line *PostingLine) error {
	account, ok := r.Accounting.Account(line.AccountNumber)
	if !ok {
		return &generic.InternalError{Value: "account " + line.AccountNumber}
	}
	av := account.ValuesAtPostingDate(*line)
	line.AccountValuesAtPostingDate = &av

	if line.HasBudgetAccount() {
		budget, ok := r.Accounting.BudgetAccount(line.BudgetAccountNumber)
		if !ok {
			return &generic.InternalError{Value: "budget account " + line.BudgetAccountNumber}
		}
		bv := budget.ValuesAtPostingDate(*line)
		line.BudgetAccountValuesAtPostingDate = &bv
	}

	if line.HasContactAccount() {
		contact, ok := r.Accounting.ContactAccount(line.ContactAccountNumber)
		if !ok {
			return &generic.InternalError{Value: "contact account " + line.ContactAccountNumber}
		}
		cv := contact.ValuesAtPostingDate(*line)
		line.ContactAccountValuesAtPostingDate = &cv
	}
	return nil
}

// =============================================================================
// JOURNAL APPLIER
// =============================================================================

// JournalRepository persists journals.
type JournalRepository interface {
	// ApplyJournal returns (nil, nil) when nothing was applied.
	ApplyJournal(ctx context.Context, journal *Journal, engine WarningEngine) (*JournalResult, error)
}

// JournalApplier is the journal application transaction.
type JournalApplier struct {
	Repository JournalRepository
	Engine     WarningEngine
	Logger     *slog.Logger
	Today      func() generic.TimePoint // generic.Today when nil
}

func (a *JournalApplier) Apply(ctx context.Context, journal *Journal) (*CalculatedJournalResult, error) {
	if journal == nil {
		return nil, generic.Missing("journal")
	}
	if a.Repository == nil {
		return nil, &generic.InternalError{Value: "journal repository"}
	}
	if a.Engine == nil {
		return nil, &generic.InternalError{Value: "warning engine"}
	}

	result, err := a.Repository.ApplyJournal(ctx, journal, a.Engine)
	if err != nil {
		return nil, fmt.Errorf("apply journal: %w", err)
	}

	today := a.today()
	if result == nil {
		a.logger().DebugContext(ctx, "journal produced no result",
			"accounting", journal.AccountingNumber, "lines", len(journal.Lines))
		empty := NewLedger()
		warnings, err := a.Engine.Evaluate(empty)
		if err != nil {
			return nil, fmt.Errorf("evaluate warnings: %w", err)
		}
		return &CalculatedJournalResult{StatusDate: today, Postings: empty, Warnings: warnings}, nil
	}

	calculated, err := result.Calculate(today)
	if err != nil {
		return nil, err
	}
	a.logger().InfoContext(ctx, "journal applied",
		"accounting", journal.AccountingNumber,
		"postings", calculated.Postings.Len(),
		"warnings", calculated.Warnings.Len())
	return calculated, nil
}

func (a *JournalApplier) today() generic.TimePoint {
	if a.Today != nil {
		return a.Today()
	}
	return generic.Today()
}

func (a *JournalApplier) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
