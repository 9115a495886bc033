package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// SAVE
// =============================================================================

// SaveAccounting writes the accounting, its groups, accounts, stored
// buckets and posting lines. Existing rows are updated; posting lines
// already stored are left as they are.
func (s *Store) SaveAccounting(ctx context.Context, a *accounting.Accounting) error {
	if a == nil {
		return generic.Missing("accounting")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accountings (number, name, back_dating, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			name = excluded.name,
			back_dating = excluded.back_dating
	`, a.Number, a.Name, a.BackDating, now())
	if err != nil {
		return fmt.Errorf("failed to save accounting: %w", err)
	}

	for _, acc := range a.Accounts() {
		if err := saveAccount(ctx, tx, acc); err != nil {
			return err
		}
	}
	for _, acc := range a.BudgetAccounts() {
		if err := saveBudgetAccount(ctx, tx, acc); err != nil {
			return err
		}
	}
	for _, acc := range a.ContactAccounts() {
		if err := saveContactAccount(ctx, tx, acc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveAccount(ctx context.Context, db execer, acc *accounting.Account) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO account_groups (accounting_number, number, name, group_type)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(accounting_number, number) DO UPDATE SET
			name = excluded.name,
			group_type = excluded.group_type
	`, acc.AccountingNumber, acc.Group.Number, acc.Group.Name, acc.Group.Type.String())
	if err != nil {
		return fmt.Errorf("failed to save account group %d: %w", acc.Group.Number, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO accounts (accounting_number, account_number, name, description, note, group_number, deletable)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(accounting_number, account_number) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			note = excluded.note,
			group_number = excluded.group_number,
			deletable = excluded.deletable
	`, acc.AccountingNumber, acc.AccountNumber, acc.Name, acc.Description, acc.Note, acc.Group.Number, acc.IsDeletable())
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", acc.AccountNumber, err)
	}

	if acc.CreditInfos != nil {
		for _, b := range acc.CreditInfos.Buckets() {
			_, err := db.ExecContext(ctx, `
				INSERT INTO credit_infos (accounting_number, account_number, year, month, credit)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(accounting_number, account_number, year, month) DO UPDATE SET
					credit = excluded.credit
			`, acc.AccountingNumber, acc.AccountNumber, b.Key.Year, int(b.Key.Month), b.Values.Credit().String())
			if err != nil {
				return fmt.Errorf("failed to save credit info %s %s: %w", acc.AccountNumber, b.Key, err)
			}
		}
	}
	return savePostings(ctx, db, acc.Postings)
}

func saveBudgetAccount(ctx context.Context, db execer, acc *accounting.BudgetAccount) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO budget_account_groups (accounting_number, number, name)
		VALUES (?, ?, ?)
		ON CONFLICT(accounting_number, number) DO UPDATE SET
			name = excluded.name
	`, acc.AccountingNumber, acc.Group.Number, acc.Group.Name)
	if err != nil {
		return fmt.Errorf("failed to save budget account group %d: %w", acc.Group.Number, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO budget_accounts (accounting_number, account_number, name, description, note, group_number, deletable)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(accounting_number, account_number) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			note = excluded.note,
			group_number = excluded.group_number,
			deletable = excluded.deletable
	`, acc.AccountingNumber, acc.AccountNumber, acc.Name, acc.Description, acc.Note, acc.Group.Number, acc.IsDeletable())
	if err != nil {
		return fmt.Errorf("failed to save budget account %s: %w", acc.AccountNumber, err)
	}

	if acc.BudgetInfos != nil {
		for _, b := range acc.BudgetInfos.Buckets() {
			_, err := db.ExecContext(ctx, `
				INSERT INTO budget_infos (accounting_number, account_number, year, month, income, expenses)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(accounting_number, account_number, year, month) DO UPDATE SET
					income = excluded.income,
					expenses = excluded.expenses
			`, acc.AccountingNumber, acc.AccountNumber, b.Key.Year, int(b.Key.Month),
				b.Values.Income().String(), b.Values.Expenses().String())
			if err != nil {
				return fmt.Errorf("failed to save budget info %s %s: %w", acc.AccountNumber, b.Key, err)
			}
		}
	}
	return savePostings(ctx, db, acc.Postings)
}

func saveContactAccount(ctx context.Context, db execer, acc *accounting.ContactAccount) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO contact_accounts
		(accounting_number, account_number, name, description, note, mail_address, primary_phone, secondary_phone, deletable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(accounting_number, account_number) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			note = excluded.note,
			mail_address = excluded.mail_address,
			primary_phone = excluded.primary_phone,
			secondary_phone = excluded.secondary_phone,
			deletable = excluded.deletable
	`, acc.AccountingNumber, acc.AccountNumber, acc.Name, acc.Description, acc.Note,
		acc.MailAddress, acc.PrimaryPhone, acc.SecondaryPhone, acc.IsDeletable())
	if err != nil {
		return fmt.Errorf("failed to save contact account %s: %w", acc.AccountNumber, err)
	}
	return savePostings(ctx, db, acc.Postings)
}

// savePostings inserts lines not stored yet. A line appears in up to
// three ledgers but is stored once.
func savePostings(ctx context.Context, db execer, ledger *accounting.Ledger) error {
	if ledger == nil {
		return nil
	}
	for _, line := range ledger.Entries() {
		if line.Identifier == "" {
			return generic.Missing("postingLine.identifier")
		}
		if err := insertPosting(ctx, db, line, "INSERT OR IGNORE"); err != nil {
			return err
		}
	}
	return nil
}

func insertPosting(ctx context.Context, db execer, line accounting.PostingLine, verb string) error {
	_, err := db.ExecContext(ctx, verb+` INTO posting_lines
		(id, accounting_number, posting_date, sort_order, reference, details,
		 account_number, budget_account_number, contact_account_number, debit, credit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		line.Identifier,
		line.AccountingNumber,
		formatDate(line.PostingDate),
		line.SortOrder,
		line.Reference,
		line.Details,
		line.AccountNumber,
		nullString(line.BudgetAccountNumber),
		nullString(line.ContactAccountNumber),
		line.Debit.String(),
		line.Credit.String(),
		now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert posting line %s: %w", line.Identifier, err)
	}
	return nil
}

// =============================================================================
// LOAD (accounting.AccountingRepository interface)
// =============================================================================

func (s *Store) LoadAccounting(ctx context.Context, accountingNumber int, asOf generic.TimePoint) (*accounting.Accounting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadAccounting(ctx, s.db, accountingNumber, asOf)
}

func (s *Store) LoadAccount(ctx context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*accounting.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := loadAccounts(ctx, s.db, accountingNumber, accounting.NormalizeAccountNumber(accountNumber), asOf)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	return accounts[0], nil
}

func (s *Store) LoadBudgetAccount(ctx context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*accounting.BudgetAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := loadBudgetAccounts(ctx, s.db, accountingNumber, accounting.NormalizeAccountNumber(accountNumber), asOf)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	return accounts[0], nil
}

func (s *Store) LoadContactAccount(ctx context.Context, accountingNumber int, accountNumber string, asOf generic.TimePoint) (*accounting.ContactAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := loadContactAccounts(ctx, s.db, accountingNumber, accounting.NormalizeAccountNumber(accountNumber), asOf)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	return accounts[0], nil
}

func (s *Store) LoadAccounts(ctx context.Context, accountingNumber int, asOf generic.TimePoint) ([]*accounting.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM accountings WHERE number = ?", accountingNumber).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load accounting %d: %w", accountingNumber, err)
	}
	return loadAccounts(ctx, s.db, accountingNumber, "", asOf)
}

func loadAccounting(ctx context.Context, q querier, number int, asOf generic.TimePoint) (*accounting.Accounting, error) {
	var (
		name       string
		backDating int
	)
	err := q.QueryRowContext(ctx,
		"SELECT name, back_dating FROM accountings WHERE number = ?", number,
	).Scan(&name, &backDating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load accounting %d: %w", number, err)
	}

	a, err := accounting.NewAccounting(number, name)
	if err != nil {
		return nil, err
	}
	a.BackDating = backDating

	accounts, err := loadAccounts(ctx, q, number, "", asOf)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if err := a.AddAccount(acc); err != nil {
			return nil, err
		}
	}
	budgets, err := loadBudgetAccounts(ctx, q, number, "", asOf)
	if err != nil {
		return nil, err
	}
	for _, acc := range budgets {
		if err := a.AddBudgetAccount(acc); err != nil {
			return nil, err
		}
	}
	contacts, err := loadContactAccounts(ctx, q, number, "", asOf)
	if err != nil {
		return nil, err
	}
	for _, acc := range contacts {
		if err := a.AddContactAccount(acc); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// loadAccounts loads every account of the accounting, or only
// accountNumber when it is set. Rows are drained before the buckets and
// ledgers are queried: the store runs on a single connection.
func loadAccounts(ctx context.Context, q querier, accountingNumber int, accountNumber string, asOf generic.TimePoint) ([]*accounting.Account, error) {
	query := `
		SELECT a.account_number, a.name, a.description, a.note, a.deletable,
		       g.number, g.name, g.group_type
		FROM accounts a
		JOIN account_groups g ON g.accounting_number = a.accounting_number AND g.number = a.group_number
		WHERE a.accounting_number = ? AND (? = '' OR a.account_number = ?)
		ORDER BY a.account_number
	`
	rows, err := q.QueryContext(ctx, query, accountingNumber, accountNumber, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	accounts := []*accounting.Account{}
	for rows.Next() {
		var (
			id        = accounting.AccountIdentity{AccountingNumber: accountingNumber}
			group     accounting.AccountGroup
			groupType string
			deletable bool
		)
		if err := rows.Scan(&id.AccountNumber, &id.Name, &id.Description, &id.Note, &deletable,
			&group.Number, &group.Name, &groupType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if group.Type, err = accounting.ParseAccountGroupType(groupType); err != nil {
			rows.Close()
			return nil, err
		}
		acc, err := accounting.NewAccount(id, group)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if deletable {
			acc.AllowDeletion()
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, acc := range accounts {
		if err := loadCreditInfos(ctx, q, acc); err != nil {
			return nil, err
		}
		lines, err := queryPostings(ctx, q, "account_number", accountingNumber, acc.AccountNumber, asOf)
		if err != nil {
			return nil, err
		}
		acc.Postings = accounting.NewLedger(lines...)
	}
	return accounts, nil
}

func loadBudgetAccounts(ctx context.Context, q querier, accountingNumber int, accountNumber string, asOf generic.TimePoint) ([]*accounting.BudgetAccount, error) {
	query := `
		SELECT a.account_number, a.name, a.description, a.note, a.deletable, g.number, g.name
		FROM budget_accounts a
		JOIN budget_account_groups g ON g.accounting_number = a.accounting_number AND g.number = a.group_number
		WHERE a.accounting_number = ? AND (? = '' OR a.account_number = ?)
		ORDER BY a.account_number
	`
	rows, err := q.QueryContext(ctx, query, accountingNumber, accountNumber, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget accounts: %w", err)
	}

	accounts := []*accounting.BudgetAccount{}
	for rows.Next() {
		var (
			id        = accounting.AccountIdentity{AccountingNumber: accountingNumber}
			group     accounting.BudgetAccountGroup
			deletable bool
		)
		if err := rows.Scan(&id.AccountNumber, &id.Name, &id.Description, &id.Note, &deletable,
			&group.Number, &group.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan budget account: %w", err)
		}
		acc, err := accounting.NewBudgetAccount(id, group)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if deletable {
			acc.AllowDeletion()
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, acc := range accounts {
		if err := loadBudgetInfos(ctx, q, acc); err != nil {
			return nil, err
		}
		lines, err := queryPostings(ctx, q, "budget_account_number", accountingNumber, acc.AccountNumber, asOf)
		if err != nil {
			return nil, err
		}
		acc.Postings = accounting.NewLedger(lines...)
	}
	return accounts, nil
}

func loadContactAccounts(ctx context.Context, q querier, accountingNumber int, accountNumber string, asOf generic.TimePoint) ([]*accounting.ContactAccount, error) {
	query := `
		SELECT account_number, name, description, note, mail_address, primary_phone, secondary_phone, deletable
		FROM contact_accounts
		WHERE accounting_number = ? AND (? = '' OR account_number = ?)
		ORDER BY account_number
	`
	rows, err := q.QueryContext(ctx, query, accountingNumber, accountNumber, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact accounts: %w", err)
	}

	accounts := []*accounting.ContactAccount{}
	for rows.Next() {
		var (
			id                            = accounting.AccountIdentity{AccountingNumber: accountingNumber}
			mail, primaryPhone, secondary string
			deletable                     bool
		)
		if err := rows.Scan(&id.AccountNumber, &id.Name, &id.Description, &id.Note,
			&mail, &primaryPhone, &secondary, &deletable); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan contact account: %w", err)
		}
		acc, err := accounting.NewContactAccount(id)
		if err != nil {
			rows.Close()
			return nil, err
		}
		acc.MailAddress, acc.PrimaryPhone, acc.SecondaryPhone = mail, primaryPhone, secondary
		if deletable {
			acc.AllowDeletion()
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, acc := range accounts {
		lines, err := queryPostings(ctx, q, "contact_account_number", accountingNumber, acc.AccountNumber, asOf)
		if err != nil {
			return nil, err
		}
		acc.Postings = accounting.NewLedger(lines...)
	}
	return accounts, nil
}

func loadCreditInfos(ctx context.Context, q querier, acc *accounting.Account) error {
	rows, err := q.QueryContext(ctx, `
		SELECT year, month, credit FROM credit_infos
		WHERE accounting_number = ? AND account_number = ?
	`, acc.AccountingNumber, acc.AccountNumber)
	if err != nil {
		return fmt.Errorf("failed to query credit infos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			year, month int
			credit      string
		)
		if err := rows.Scan(&year, &month, &credit); err != nil {
			return fmt.Errorf("failed to scan credit info: %w", err)
		}
		key, err := generic.NewYearMonth(year, time.Month(month))
		if err != nil {
			return err
		}
		value, err := parseDecimal("credit", credit)
		if err != nil {
			return err
		}
		info, err := accounting.NewCreditInfo(value)
		if err != nil {
			return err
		}
		acc.CreditInfos.Put(key, info)
	}
	return rows.Err()
}

func loadBudgetInfos(ctx context.Context, q querier, acc *accounting.BudgetAccount) error {
	rows, err := q.QueryContext(ctx, `
		SELECT year, month, income, expenses FROM budget_infos
		WHERE accounting_number = ? AND account_number = ?
	`, acc.AccountingNumber, acc.AccountNumber)
	if err != nil {
		return fmt.Errorf("failed to query budget infos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			year, month      int
			income, expenses string
		)
		if err := rows.Scan(&year, &month, &income, &expenses); err != nil {
			return fmt.Errorf("failed to scan budget info: %w", err)
		}
		key, err := generic.NewYearMonth(year, time.Month(month))
		if err != nil {
			return err
		}
		in, err := parseDecimal("income", income)
		if err != nil {
			return err
		}
		out, err := parseDecimal("expenses", expenses)
		if err != nil {
			return err
		}
		info, err := accounting.NewBudgetInfo(in, out)
		if err != nil {
			return err
		}
		acc.BudgetInfos.Put(key, info)
	}
	return rows.Err()
}

// queryPostings loads the lines whose column equals accountNumber,
// posted on or before asOf.
func queryPostings(ctx context.Context, q querier, column string, accountingNumber int, accountNumber string, asOf generic.TimePoint) ([]accounting.PostingLine, error) {
	query := `
		SELECT id, accounting_number, posting_date, sort_order, reference, details,
		       account_number, budget_account_number, contact_account_number, debit, credit
		FROM posting_lines
		WHERE accounting_number = ? AND ` + column + ` = ? AND posting_date <= ?
		ORDER BY posting_date ASC, sort_order ASC
	`
	rows, err := q.QueryContext(ctx, query, accountingNumber, accountNumber, formatDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to query posting lines: %w", err)
	}
	defer rows.Close()

	var lines []accounting.PostingLine
	for rows.Next() {
		line, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func scanPosting(rows *sql.Rows) (accounting.PostingLine, error) {
	var (
		line          accounting.PostingLine
		postingDate   string
		budgetAccount sql.NullString
		contact       sql.NullString
		debit, credit string
	)
	err := rows.Scan(
		&line.Identifier, &line.AccountingNumber, &postingDate, &line.SortOrder,
		&line.Reference, &line.Details, &line.AccountNumber,
		&budgetAccount, &contact, &debit, &credit,
	)
	if err != nil {
		return line, fmt.Errorf("failed to scan posting line: %w", err)
	}
	if line.PostingDate, err = parseDate(postingDate); err != nil {
		return line, err
	}
	line.BudgetAccountNumber = budgetAccount.String
	line.ContactAccountNumber = contact.String
	if line.Debit, err = parseDecimal("debit", debit); err != nil {
		return line, err
	}
	if line.Credit, err = parseDecimal("credit", credit); err != nil {
		return line, err
	}
	return line, nil
}
