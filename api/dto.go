/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the calculated snapshots from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Money is decimal.Decimal, which marshals as a JSON string ("12.50").
  Dates are "YYYY-MM-DD".

VALIDATION:
  Validation is done by the domain (Journal.Validate), not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountGroupDTO struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
}

type CreditValuesDTO struct {
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
}

type BudgetValuesDTO struct {
	Budget    decimal.Decimal `json:"budget"`
	Posted    decimal.Decimal `json:"posted"`
	Available decimal.Decimal `json:"available"`
}

type BalanceValuesDTO struct {
	Balance decimal.Decimal `json:"balance"`
}

type AccountDTO struct {
	AccountingNumber       int             `json:"accounting_number"`
	AccountNumber          string          `json:"account_number"`
	Name                   string          `json:"name"`
	Description            string          `json:"description,omitempty"`
	Note                   string          `json:"note,omitempty"`
	Group                  AccountGroupDTO `json:"group"`
	StatusDate             string          `json:"status_date"`
	IsProtected            bool            `json:"is_protected"`
	IsDeletable            bool            `json:"is_deletable"`
	ValuesAtStatusDate     CreditValuesDTO `json:"values_at_status_date"`
	ValuesAtEndOfLastMonth CreditValuesDTO `json:"values_at_end_of_last_month"`
	ValuesAtEndOfLastYear  CreditValuesDTO `json:"values_at_end_of_last_year"`
	Postings               []PostingDTO    `json:"postings,omitempty"`
}

type BudgetAccountDTO struct {
	AccountingNumber    int             `json:"accounting_number"`
	AccountNumber       string          `json:"account_number"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Note                string          `json:"note,omitempty"`
	Group               AccountGroupDTO `json:"group"`
	StatusDate          string          `json:"status_date"`
	IsProtected         bool            `json:"is_protected"`
	IsDeletable         bool            `json:"is_deletable"`
	ValuesForMonth      BudgetValuesDTO `json:"values_for_month"`
	ValuesForLastMonth  BudgetValuesDTO `json:"values_for_last_month"`
	ValuesForYearToDate BudgetValuesDTO `json:"values_for_year_to_date"`
	ValuesForLastYear   BudgetValuesDTO `json:"values_for_last_year"`
	Postings            []PostingDTO    `json:"postings,omitempty"`
}

type ContactAccountDTO struct {
	AccountingNumber       int              `json:"accounting_number"`
	AccountNumber          string           `json:"account_number"`
	Name                   string           `json:"name"`
	MailAddress            string           `json:"mail_address,omitempty"`
	PrimaryPhone           string           `json:"primary_phone,omitempty"`
	SecondaryPhone         string           `json:"secondary_phone,omitempty"`
	StatusDate             string           `json:"status_date"`
	IsProtected            bool             `json:"is_protected"`
	IsDeletable            bool             `json:"is_deletable"`
	ValuesAtStatusDate     BalanceValuesDTO `json:"values_at_status_date"`
	ValuesAtEndOfLastMonth BalanceValuesDTO `json:"values_at_end_of_last_month"`
	ValuesAtEndOfLastYear  BalanceValuesDTO `json:"values_at_end_of_last_year"`
	Postings               []PostingDTO     `json:"postings,omitempty"`
}

// AccountingDTO is a whole accounting calculated at one status date.
type AccountingDTO struct {
	Number          int                 `json:"number"`
	Name            string              `json:"name"`
	StatusDate      string              `json:"status_date"`
	IsProtected     bool                `json:"is_protected"`
	Accounts        []AccountDTO        `json:"accounts"`
	BudgetAccounts  []BudgetAccountDTO  `json:"budget_accounts"`
	ContactAccounts []ContactAccountDTO `json:"contact_accounts"`
}

// =============================================================================
// POSTINGS & JOURNALS
// =============================================================================

type PostingDTO struct {
	ID                   string            `json:"id"`
	PostingDate          string            `json:"posting_date"`
	SortOrder            int               `json:"sort_order"`
	Reference            string            `json:"reference,omitempty"`
	Details              string            `json:"details,omitempty"`
	AccountNumber        string            `json:"account_number"`
	BudgetAccountNumber  string            `json:"budget_account_number,omitempty"`
	ContactAccountNumber string            `json:"contact_account_number,omitempty"`
	Debit                decimal.Decimal   `json:"debit"`
	Credit               decimal.Decimal   `json:"credit"`
	AccountValues        *CreditValuesDTO  `json:"account_values,omitempty"`
	BudgetAccountValues  *BudgetValuesDTO  `json:"budget_account_values,omitempty"`
	ContactAccountValues *BalanceValuesDTO `json:"contact_account_values,omitempty"`
}

type JournalLineRequest struct {
	PostingDate          string          `json:"posting_date"`
	Reference            string          `json:"reference"`
	Details              string          `json:"details"`
	AccountNumber        string          `json:"account_number"`
	BudgetAccountNumber  string          `json:"budget_account_number"`
	ContactAccountNumber string          `json:"contact_account_number"`
	Debit                decimal.Decimal `json:"debit"`
	Credit               decimal.Decimal `json:"credit"`
}

type JournalRequest struct {
	Lines []JournalLineRequest `json:"lines"`
}

type WarningDTO struct {
	Reason        string          `json:"reason"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Posting       PostingDTO      `json:"posting"`
}

type JournalResultDTO struct {
	StatusDate string       `json:"status_date"`
	Postings   []PostingDTO `json:"postings"`
	Warnings   []WarningDTO `json:"warnings"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCreditValuesDTO(v accounting.CreditInfoValues) CreditValuesDTO {
	return CreditValuesDTO{Credit: v.Credit, Balance: v.Balance, Available: v.Available()}
}

func toBudgetValuesDTO(v accounting.BudgetInfoValues) BudgetValuesDTO {
	return BudgetValuesDTO{Budget: v.Budget, Posted: v.Posted, Available: v.Available()}
}

func toBalanceValuesDTO(v accounting.ContactInfoValues) BalanceValuesDTO {
	return BalanceValuesDTO{Balance: v.Balance}
}

func toAccountDTO(a accounting.AccountView) AccountDTO {
	id := a.Identity()
	group := a.Group()
	return AccountDTO{
		AccountingNumber:       id.AccountingNumber,
		AccountNumber:          id.AccountNumber,
		Name:                   id.Name,
		Description:            id.Description,
		Note:                   id.Note,
		Group:                  AccountGroupDTO{Number: group.Number, Name: group.Name, Type: group.Type.String()},
		StatusDate:             a.StatusDate().String(),
		IsProtected:            a.IsProtected(),
		IsDeletable:            a.IsDeletable(),
		ValuesAtStatusDate:     toCreditValuesDTO(a.ValuesAtStatusDate()),
		ValuesAtEndOfLastMonth: toCreditValuesDTO(a.ValuesAtEndOfLastMonthFromStatusDate()),
		ValuesAtEndOfLastYear:  toCreditValuesDTO(a.ValuesAtEndOfLastYearFromStatusDate()),
	}
}

func toBudgetAccountDTO(b accounting.BudgetAccountView) BudgetAccountDTO {
	id := b.Identity()
	group := b.Group()
	return BudgetAccountDTO{
		AccountingNumber:    id.AccountingNumber,
		AccountNumber:       id.AccountNumber,
		Name:                id.Name,
		Description:         id.Description,
		Note:                id.Note,
		Group:               AccountGroupDTO{Number: group.Number, Name: group.Name},
		StatusDate:          b.StatusDate().String(),
		IsProtected:         b.IsProtected(),
		IsDeletable:         b.IsDeletable(),
		ValuesForMonth:      toBudgetValuesDTO(b.ValuesForMonthOfStatusDate()),
		ValuesForLastMonth:  toBudgetValuesDTO(b.ValuesForLastMonthOfStatusDate()),
		ValuesForYearToDate: toBudgetValuesDTO(b.ValuesForYearToDateOfStatusDate()),
		ValuesForLastYear:   toBudgetValuesDTO(b.ValuesForLastYearOfStatusDate()),
	}
}

func toContactAccountDTO(c accounting.ContactAccountView) ContactAccountDTO {
	id := c.Identity()
	return ContactAccountDTO{
		AccountingNumber:       id.AccountingNumber,
		AccountNumber:          id.AccountNumber,
		Name:                   id.Name,
		MailAddress:            c.MailAddress(),
		PrimaryPhone:           c.PrimaryPhone(),
		SecondaryPhone:         c.SecondaryPhone(),
		StatusDate:             c.StatusDate().String(),
		IsProtected:            c.IsProtected(),
		IsDeletable:            c.IsDeletable(),
		ValuesAtStatusDate:     toBalanceValuesDTO(c.ValuesAtStatusDate()),
		ValuesAtEndOfLastMonth: toBalanceValuesDTO(c.ValuesAtEndOfLastMonthFromStatusDate()),
		ValuesAtEndOfLastYear:  toBalanceValuesDTO(c.ValuesAtEndOfLastYearFromStatusDate()),
	}
}

func toAccountingDTO(a accounting.AccountingView) AccountingDTO {
	dto := AccountingDTO{
		Number:      a.Number(),
		Name:        a.Name(),
		StatusDate:  a.StatusDate().String(),
		IsProtected: a.IsProtected(),
	}
	accounts := a.AccountViews()
	dto.Accounts = make([]AccountDTO, 0, len(accounts))
	for _, v := range accounts {
		dto.Accounts = append(dto.Accounts, toAccountDTO(v))
	}
	budgets := a.BudgetAccountViews()
	dto.BudgetAccounts = make([]BudgetAccountDTO, 0, len(budgets))
	for _, v := range budgets {
		dto.BudgetAccounts = append(dto.BudgetAccounts, toBudgetAccountDTO(v))
	}
	contacts := a.ContactAccountViews()
	dto.ContactAccounts = make([]ContactAccountDTO, 0, len(contacts))
	for _, v := range contacts {
		dto.ContactAccounts = append(dto.ContactAccounts, toContactAccountDTO(v))
	}
	return dto
}

func toPostingDTO(line accounting.PostingLine) PostingDTO {
	dto := PostingDTO{
		ID:                   line.Identifier,
		PostingDate:          line.PostingDate.String(),
		SortOrder:            line.SortOrder,
		Reference:            line.Reference,
		Details:              line.Details,
		AccountNumber:        line.AccountNumber,
		BudgetAccountNumber:  line.BudgetAccountNumber,
		ContactAccountNumber: line.ContactAccountNumber,
		Debit:                line.Debit,
		Credit:               line.Credit,
	}
	if v := line.AccountValuesAtPostingDate; v != nil {
		d := toCreditValuesDTO(*v)
		dto.AccountValues = &d
	}
	if v := line.BudgetAccountValuesAtPostingDate; v != nil {
		d := toBudgetValuesDTO(*v)
		dto.BudgetAccountValues = &d
	}
	if v := line.ContactAccountValuesAtPostingDate; v != nil {
		d := toBalanceValuesDTO(*v)
		dto.ContactAccountValues = &d
	}
	return dto
}

func toPostingDTOs(lines []accounting.PostingLine) []PostingDTO {
	out := make([]PostingDTO, 0, len(lines))
	for _, line := range lines {
		out = append(out, toPostingDTO(line))
	}
	return out
}

func toJournalResultDTO(r *accounting.CalculatedJournalResult) JournalResultDTO {
	warnings := r.Warnings.Warnings()
	dto := JournalResultDTO{
		StatusDate: r.StatusDate.String(),
		Postings:   toPostingDTOs(r.Postings.Entries()),
		Warnings:   make([]WarningDTO, 0, len(warnings)),
	}
	for _, w := range warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			Reason:        w.Reason.String(),
			AccountNumber: w.AccountNumber,
			Amount:        w.Amount,
			Posting:       toPostingDTO(w.Posting),
		})
	}
	return dto
}

func (r JournalRequest) toJournal(accountingNumber int) (*accounting.Journal, error) {
	journal := &accounting.Journal{AccountingNumber: accountingNumber}
	for _, l := range r.Lines {
		date, err := generic.ParseTimePoint(l.PostingDate)
		if err != nil {
			return nil, err
		}
		journal.Lines = append(journal.Lines, accounting.JournalLine{
			PostingDate:          date,
			Reference:            l.Reference,
			Details:              l.Details,
			AccountNumber:        l.AccountNumber,
			BudgetAccountNumber:  l.BudgetAccountNumber,
			ContactAccountNumber: l.ContactAccountNumber,
			Debit:                l.Debit,
			Credit:               l.Credit,
		})
	}
	return journal, nil
}
