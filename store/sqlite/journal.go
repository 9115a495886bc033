package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// JOURNAL STORE (accounting.JournalRepository interface)
// =============================================================================

// ApplyJournal inserts the journal's lines in one transaction and returns
// them with the accounting as it stands afterwards. An empty journal or
// an unknown accounting yields no result.
func (s *Store) ApplyJournal(ctx context.Context, journal *accounting.Journal, engine accounting.WarningEngine) (*accounting.JournalResult, error) {
	if journal == nil {
		return nil, generic.Missing("journal")
	}
	if len(journal.Lines) == 0 {
		return nil, nil
	}
	if err := journal.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accountings WHERE number = ?", journal.AccountingNumber,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up accounting: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	if err := checkReferences(ctx, tx, journal); err != nil {
		return nil, err
	}

	var last sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT MAX(sort_order) FROM posting_lines WHERE accounting_number = ?", journal.AccountingNumber,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to read sort order: %w", err)
	}
	sortOrder := int(last.Int64)

	lines := make([]accounting.PostingLine, 0, len(journal.Lines))
	for _, jl := range journal.Lines {
		sortOrder++
		line := accounting.PostingLine{
			Identifier:           s.newID(),
			AccountingNumber:     journal.AccountingNumber,
			PostingDate:          jl.PostingDate,
			Reference:            jl.Reference,
			Details:              jl.Details,
			SortOrder:            sortOrder,
			AccountNumber:        accounting.NormalizeAccountNumber(jl.AccountNumber),
			BudgetAccountNumber:  accounting.NormalizeAccountNumber(jl.BudgetAccountNumber),
			ContactAccountNumber: accounting.NormalizeAccountNumber(jl.ContactAccountNumber),
			Debit:                jl.Debit,
			Credit:               jl.Credit,
		}
		if err := insertPosting(ctx, tx, line, "INSERT"); err != nil {
			if isUniqueConstraintError(err) {
				return nil, &generic.InvalidValueError{Field: "sortOrder", Reason: "already taken"}
			}
			return nil, err
		}
		lines = append(lines, line)
	}

	a, err := loadAccounting(ctx, tx, journal.AccountingNumber, generic.MaxTimePoint)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &generic.InternalError{Value: "accounting"}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit journal: %w", err)
	}

	return &accounting.JournalResult{
		Postings:   accounting.NewLedger(lines...),
		Accounting: a,
		Engine:     engine,
	}, nil
}

func checkReferences(ctx context.Context, q querier, journal *accounting.Journal) error {
	check := func(table, field string, i int, number string) error {
		var count int
		err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE accounting_number = ? AND account_number = ?",
			journal.AccountingNumber, accounting.NormalizeAccountNumber(number),
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", field, err)
		}
		if count == 0 {
			return &generic.InvalidValueError{
				Field:  fmt.Sprintf("lines[%d].%s", i, field),
				Reason: "no such account " + number,
			}
		}
		return nil
	}

	for i, jl := range journal.Lines {
		if err := check("accounts", "accountNumber", i, jl.AccountNumber); err != nil {
			return err
		}
		if jl.BudgetAccountNumber != "" {
			if err := check("budget_accounts", "budgetAccountNumber", i, jl.BudgetAccountNumber); err != nil {
				return err
			}
		}
		if jl.ContactAccountNumber != "" {
			if err := check("contact_accounts", "contactAccountNumber", i, jl.ContactAccountNumber); err != nil {
				return err
			}
		}
	}
	return nil
}
