package export_test

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/export"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var statusDate = generic.NewTimePoint(2024, time.March, 15)

func calculated(t *testing.T, number string, group accounting.AccountGroup, debit int64) accounting.AccountView {
	t.Helper()
	acc, err := accounting.NewAccount(accounting.AccountIdentity{AccountingNumber: 1, AccountNumber: number, Name: "Account " + number}, group)
	require.NoError(t, err)
	credit, err := accounting.NewCreditInfo(decimal.NewFromInt(250))
	require.NoError(t, err)
	acc.CreditInfos.Put(generic.YearMonth{Year: 2024, Month: time.January}, credit)
	acc.Postings.Add(accounting.PostingLine{
		Identifier:    number + "-1",
		PostingDate:   generic.NewTimePoint(2024, time.February, 1),
		SortOrder:     1,
		AccountNumber: number,
		Debit:         decimal.NewFromInt(debit),
	})
	return acc.Calculate(statusDate).Seal()
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

// =============================================================================
// ACCOUNT EXPORT
// =============================================================================

func TestWriteCSV_Accounts(t *testing.T) {
	bank := accounting.AccountGroup{Number: 1, Name: "Bank", Type: accounting.Assets}
	views := []accounting.AccountView{calculated(t, "1010", bank, 100)}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, export.AccountCSV{}, views))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, export.AccountCSV{}.Header(), records[0])
	assert.Equal(t, []string{
		"1010", "Account 1010", "", "",
		"1", "Bank", "Assets",
		"100.00", "250.00",
		"100.00", "250.00",
		"0.00", "0.00",
	}, records[1])
}

func TestWriteCSV_AccountGroupStatuses_OneLinePerGroup(t *testing.T) {
	// GIVEN: Three accounts in three groups
	// WHEN: Exporting the group statuses
	// THEN: One header line plus one line per group

	groups := []accounting.AccountGroup{
		{Number: 1, Name: "Bank", Type: accounting.Assets},
		{Number: 2, Name: "Loans", Type: accounting.Liabilities},
		{Number: 3, Name: "Savings", Type: accounting.Assets},
	}
	var views []accounting.AccountView
	for i, g := range groups {
		views = append(views, calculated(t, strconv.Itoa(1000+i), g, int64(10*(i+1))))
	}
	statuses, err := accounting.GroupByAccountGroup(views)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, export.AccountGroupStatusCSV{}, statuses))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)

	records := readCSV(t, buf.String())
	assert.Equal(t, []string{"2", "Loans", "Liabilities", "0.00", "20.00", "0.00", "20.00", "0.00", "0.00"}, records[2])
}

func TestWriteCSV_EveryConverterMatchesItsHeader(t *testing.T) {
	budget, err := accounting.NewBudgetAccount(accounting.AccountIdentity{AccountingNumber: 1, AccountNumber: "E1", Name: "Groceries"}, accounting.BudgetAccountGroup{Number: 1, Name: "Expenses"})
	require.NoError(t, err)
	contact, err := accounting.NewContactAccount(accounting.AccountIdentity{AccountingNumber: 1, AccountNumber: "C1", Name: "Grocer"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, export.BudgetAccountCSV{}, []accounting.BudgetAccountView{budget.Calculate(statusDate)}))
	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Len(t, records[1], len(export.BudgetAccountCSV{}.Header()))

	buf.Reset()
	require.NoError(t, export.WriteCSV(&buf, export.ContactAccountCSV{}, []accounting.ContactAccountView{contact.Calculate(statusDate).Seal()}))
	records = readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Len(t, records[1], len(export.ContactAccountCSV{}.Header()))
}

type brokenConverter struct{}

func (brokenConverter) Header() []string  { return []string{"a", "b"} }
func (brokenConverter) Row(int) []string { return []string{"only one"} }

func TestWriteCSV_RowWidthMismatchIsInternal(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteCSV[int](&buf, brokenConverter{}, []int{1})
	assert.True(t, generic.IsInternal(err))
}

func TestWriteCSV_NoItems_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, export.AccountCSV{}, []accounting.AccountView(nil)))
	assert.Len(t, readCSV(t, buf.String()), 1)
}

// =============================================================================
// STATEMENTS
// =============================================================================

func TestStatementLines_NewestFirstAndCapped(t *testing.T) {
	ledger := accounting.NewLedger()
	start := generic.NewTimePoint(2024, time.January, 1)
	for i := 0; i < 40; i++ {
		ledger.Add(accounting.PostingLine{
			PostingDate:   start.AddDays(i),
			SortOrder:     i + 1,
			AccountNumber: "1010",
			Debit:         decimal.NewFromInt(1),
		})
	}

	lines := export.StatementLines(ledger.Seal())

	require.Len(t, lines, export.StatementLength)
	assert.Equal(t, 40, lines[0].SortOrder)
	assert.Equal(t, 11, lines[len(lines)-1].SortOrder)
	assert.Nil(t, export.StatementLines(nil))
}

func TestStatementCSV_Row(t *testing.T) {
	l := accounting.PostingLine{
		PostingDate:                       generic.NewTimePoint(2024, time.January, 10),
		SortOrder:                         3,
		Reference:                         "GRO-01",
		Details:                           "Groceries",
		ContactAccountNumber:              "C1",
		Credit:                            decimal.NewFromInt(150),
		AccountValuesAtPostingDate:        &accounting.CreditInfoValues{Balance: decimal.NewFromInt(-150)},
		ContactAccountValuesAtPostingDate: &accounting.ContactInfoValues{Balance: decimal.NewFromInt(-150)},
	}

	assert.Equal(t, []string{
		"2024-01-10", "3", "GRO-01", "Groceries", "0.00", "150.00", "-150.00", "C1", "-150.00",
	}, export.StatementCSV{}.Row(l))

	bare := accounting.PostingLine{PostingDate: generic.NewTimePoint(2024, time.January, 10)}
	row := export.StatementCSV{}.Row(bare)
	assert.Len(t, row, len(export.StatementCSV{}.Header()))
	assert.Equal(t, "", row[6])
}
