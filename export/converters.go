package export

import (
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// AccountCSV converts calculated accounts.
type AccountCSV struct{}

func (AccountCSV) Header() []string {
	return []string{
		"AccountNumber", "AccountName", "Description", "Note",
		"GroupNumber", "GroupName", "GroupType",
		"BalanceAtStatusDate", "CreditAtStatusDate",
		"BalanceAtEndOfLastMonth", "CreditAtEndOfLastMonth",
		"BalanceAtEndOfLastYear", "CreditAtEndOfLastYear",
	}
}

func (AccountCSV) Row(a accounting.AccountView) []string {
	id := a.Identity()
	group := a.Group()
	atStatus := a.ValuesAtStatusDate()
	lastMonth := a.ValuesAtEndOfLastMonthFromStatusDate()
	lastYear := a.ValuesAtEndOfLastYearFromStatusDate()
	return []string{
		id.AccountNumber, id.Name, id.Description, id.Note,
		number(group.Number), group.Name, group.Type.String(),
		amount(atStatus.Balance), amount(atStatus.Credit),
		amount(lastMonth.Balance), amount(lastMonth.Credit),
		amount(lastYear.Balance), amount(lastYear.Credit),
	}
}

// AccountGroupStatusCSV converts group roll-ups, one row per group.
type AccountGroupStatusCSV struct{}

func (AccountGroupStatusCSV) Header() []string {
	return []string{
		"GroupNumber", "GroupName", "GroupType",
		"AssetsAtStatusDate", "LiabilitiesAtStatusDate",
		"AssetsAtEndOfLastMonth", "LiabilitiesAtEndOfLastMonth",
		"AssetsAtEndOfLastYear", "LiabilitiesAtEndOfLastYear",
	}
}

func (AccountGroupStatusCSV) Row(s *accounting.AccountGroupStatus) []string {
	return []string{
		number(s.Group.Number), s.Group.Name, s.Group.Type.String(),
		amount(s.ValuesAtStatusDate.Assets), amount(s.ValuesAtStatusDate.Liabilities),
		amount(s.ValuesAtEndOfLastMonthFromStatusDate.Assets), amount(s.ValuesAtEndOfLastMonthFromStatusDate.Liabilities),
		amount(s.ValuesAtEndOfLastYearFromStatusDate.Assets), amount(s.ValuesAtEndOfLastYearFromStatusDate.Liabilities),
	}
}

// BudgetAccountCSV converts calculated budget accounts.
type BudgetAccountCSV struct{}

func (BudgetAccountCSV) Header() []string {
	return []string{
		"AccountNumber", "AccountName", "Description", "Note",
		"GroupNumber", "GroupName",
		"BudgetForMonth", "PostedForMonth", "AvailableForMonth",
		"BudgetForLastMonth", "PostedForLastMonth",
		"BudgetForYearToDate", "PostedForYearToDate",
		"BudgetForLastYear", "PostedForLastYear",
	}
}

func (BudgetAccountCSV) Row(b accounting.BudgetAccountView) []string {
	id := b.Identity()
	group := b.Group()
	month := b.ValuesForMonthOfStatusDate()
	lastMonth := b.ValuesForLastMonthOfStatusDate()
	ytd := b.ValuesForYearToDateOfStatusDate()
	lastYear := b.ValuesForLastYearOfStatusDate()
	return []string{
		id.AccountNumber, id.Name, id.Description, id.Note,
		number(group.Number), group.Name,
		amount(month.Budget), amount(month.Posted), amount(month.Available()),
		amount(lastMonth.Budget), amount(lastMonth.Posted),
		amount(ytd.Budget), amount(ytd.Posted),
		amount(lastYear.Budget), amount(lastYear.Posted),
	}
}

// ContactAccountCSV converts calculated contact accounts.
type ContactAccountCSV struct{}

func (ContactAccountCSV) Header() []string {
	return []string{
		"AccountNumber", "AccountName", "MailAddress", "PrimaryPhone", "SecondaryPhone",
		"BalanceAtStatusDate", "BalanceAtEndOfLastMonth", "BalanceAtEndOfLastYear",
	}
}

func (ContactAccountCSV) Row(c accounting.ContactAccountView) []string {
	id := c.Identity()
	return []string{
		id.AccountNumber, id.Name, c.MailAddress(), c.PrimaryPhone(), c.SecondaryPhone(),
		amount(c.ValuesAtStatusDate().Balance),
		amount(c.ValuesAtEndOfLastMonthFromStatusDate().Balance),
		amount(c.ValuesAtEndOfLastYearFromStatusDate().Balance),
	}
}

// StatementCSV converts the lines of an account statement: the newest
// lines first, with the contact balance after each line when known.
type StatementCSV struct{}

func (StatementCSV) Header() []string {
	return []string{
		"PostingDate", "SortOrder", "Reference", "Details",
		"Debit", "Credit", "Balance", "ContactAccountNumber", "ContactBalance",
	}
}

func (StatementCSV) Row(line accounting.PostingLine) []string {
	balance := ""
	if v := line.AccountValuesAtPostingDate; v != nil {
		balance = amount(v.Balance)
	}
	contactBalance := ""
	if v, ok := line.CounterAccountValuesAtPostingDate(); ok {
		contactBalance = amount(v.Balance)
	}
	return []string{
		line.PostingDate.String(), number(line.SortOrder), line.Reference, line.Details,
		amount(line.Debit), amount(line.Credit), balance, line.ContactAccountNumber, contactBalance,
	}
}

// StatementLength is how many lines a statement shows.
const StatementLength = 30

// StatementLines returns the lines a statement shows: canonical order,
// then the first StatementLength.
func StatementLines(postings generic.LedgerView[accounting.PostingLine]) []accounting.PostingLine {
	if postings == nil {
		return nil
	}
	return accounting.NewLedger(postings.Entries()...).Ordered().Top(StatementLength).Entries()
}
