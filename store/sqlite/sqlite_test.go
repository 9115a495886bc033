package sqlite_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
	"github.com/warp/accounting-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const books = 1

func day(month time.Month, d int) generic.TimePoint { return generic.NewTimePoint(2024, month, d) }

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	n := 0
	store.NewID = func() string { n++; return "line-" + strconv.Itoa(n) }
	return store
}

func testAccounting(t *testing.T) *accounting.Accounting {
	t.Helper()
	a, err := accounting.NewAccounting(books, "Household")
	require.NoError(t, err)
	a.BackDating = 30

	checking, err := accounting.NewAccount(
		accounting.AccountIdentity{AccountingNumber: books, AccountNumber: "1010", Name: "Checking", Description: "Main account"},
		accounting.AccountGroup{Number: 1, Name: "Bank", Type: accounting.Assets},
	)
	require.NoError(t, err)
	checking.AllowDeletion()
	for month, amount := range map[time.Month]int64{time.January: 100, time.March: 250} {
		credit, err := accounting.NewCreditInfo(decimal.NewFromInt(amount))
		require.NoError(t, err)
		checking.CreditInfos.Put(generic.YearMonth{Year: 2024, Month: month}, credit)
	}
	require.NoError(t, a.AddAccount(checking))

	card, err := accounting.NewAccount(
		accounting.AccountIdentity{AccountingNumber: books, AccountNumber: "2010", Name: "Credit card"},
		accounting.AccountGroup{Number: 2, Name: "Debt", Type: accounting.Liabilities},
	)
	require.NoError(t, err)
	require.NoError(t, a.AddAccount(card))

	groceries, err := accounting.NewBudgetAccount(
		accounting.AccountIdentity{AccountingNumber: books, AccountNumber: "E1", Name: "Groceries"},
		accounting.BudgetAccountGroup{Number: 2, Name: "Expenses"},
	)
	require.NoError(t, err)
	spend, err := accounting.NewBudgetInfo(decimal.Zero, decimal.RequireFromString("200.50"))
	require.NoError(t, err)
	groceries.BudgetInfos.Put(generic.YearMonth{Year: 2024, Month: time.January}, spend)
	require.NoError(t, a.AddBudgetAccount(groceries))

	grocer, err := accounting.NewContactAccount(accounting.AccountIdentity{AccountingNumber: books, AccountNumber: "C1", Name: "Grocer"})
	require.NoError(t, err)
	grocer.MailAddress = "billing@grocer.example"
	grocer.PrimaryPhone = "555-0100"
	require.NoError(t, a.AddContactAccount(grocer))

	return a
}

func groceryJournal(credits ...int64) *accounting.Journal {
	j := &accounting.Journal{AccountingNumber: books}
	for i, c := range credits {
		j.Lines = append(j.Lines, accounting.JournalLine{
			PostingDate:          day(time.January, 10),
			Reference:            "GRO-" + strconv.Itoa(i+1),
			Details:              "Groceries",
			AccountNumber:        "1010",
			BudgetAccountNumber:  "E1",
			ContactAccountNumber: "c1",
			Credit:               decimal.NewFromInt(c),
		})
	}
	return j
}

// =============================================================================
// SAVE & LOAD
// =============================================================================

func TestStore_SaveAndLoadAccounting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))

	a, err := store.LoadAccounting(ctx, books, generic.MaxTimePoint)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Household", a.Name)
	assert.Equal(t, 30, a.BackDating)
	assert.Len(t, a.Accounts(), 2)
	assert.Len(t, a.BudgetAccounts(), 1)
	assert.Len(t, a.ContactAccounts(), 1)

	checking, ok := a.Account("1010")
	require.True(t, ok)
	assert.Equal(t, "Main account", checking.Description)
	assert.Equal(t, accounting.Assets, checking.Group.Type)
	assert.True(t, checking.IsDeletable())
	march, ok := checking.CreditInfos.Get(generic.YearMonth{Year: 2024, Month: time.March})
	require.True(t, ok)
	assert.True(t, march.Credit().Equal(decimal.NewFromInt(250)))

	card, ok := a.Account("2010")
	require.True(t, ok)
	assert.Equal(t, accounting.Liabilities, card.Group.Type)
	assert.False(t, card.IsDeletable())

	groceries, ok := a.BudgetAccount("E1")
	require.True(t, ok)
	jan, ok := groceries.BudgetInfos.Get(generic.YearMonth{Year: 2024, Month: time.January})
	require.True(t, ok)
	assert.Equal(t, "200.5", jan.Expenses().String())

	grocer, ok := a.ContactAccount("C1")
	require.True(t, ok)
	assert.Equal(t, "billing@grocer.example", grocer.MailAddress)
	assert.Equal(t, "555-0100", grocer.PrimaryPhone)
}

func TestStore_SaveAccounting_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := testAccounting(t)
	require.NoError(t, store.SaveAccounting(ctx, a))

	a.Name = "Renamed"
	checking, _ := a.Account("1010")
	checking.DisallowDeletion()
	require.NoError(t, store.SaveAccounting(ctx, a))

	loaded, err := store.LoadAccounting(ctx, books, generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	reloaded, _ := loaded.Account("1010")
	assert.False(t, reloaded.IsDeletable())
}

func TestStore_LoadAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))

	acc, err := store.LoadAccount(ctx, books, "9999", generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Nil(t, acc)

	budget, err := store.LoadBudgetAccount(ctx, 42, "E1", generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Nil(t, budget)

	a, err := store.LoadAccounting(ctx, 42, generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Nil(t, a)

	accounts, err := store.LoadAccounts(ctx, 42, generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Nil(t, accounts, "unknown accounting")

	empty, err := accounting.NewAccounting(2, "Empty")
	require.NoError(t, err)
	require.NoError(t, store.SaveAccounting(ctx, empty))
	accounts, err = store.LoadAccounts(ctx, 2, generic.MaxTimePoint)
	require.NoError(t, err)
	assert.NotNil(t, accounts, "known accounting without accounts")
	assert.Empty(t, accounts)
}

// =============================================================================
// APPLY JOURNAL
// =============================================================================

func TestStore_ApplyJournal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))

	result, err := store.ApplyJournal(ctx, groceryJournal(150, 80), &accounting.PostingWarningCalculator{})
	require.NoError(t, err)
	require.NotNil(t, result)

	lines := result.Postings.Entries()
	require.Len(t, lines, 2)
	assert.Equal(t, "line-1", lines[0].Identifier)
	assert.Equal(t, 1, lines[0].SortOrder)
	assert.Equal(t, 2, lines[1].SortOrder)
	assert.Equal(t, "C1", lines[0].ContactAccountNumber, "numbers are normalized")

	checking, ok := result.Accounting.Account("1010")
	require.True(t, ok)
	assert.Equal(t, 2, checking.Postings.Len(), "result carries the accounting after the journal")

	contact, err := store.LoadContactAccount(ctx, books, "C1", generic.MaxTimePoint)
	require.NoError(t, err)
	require.Equal(t, 2, contact.Postings.Len())
	assert.Equal(t, "Groceries", contact.Postings.Entries()[0].Details)

	next, err := store.ApplyJournal(ctx, groceryJournal(5), &accounting.PostingWarningCalculator{})
	require.NoError(t, err)
	assert.Equal(t, 3, next.Postings.Entries()[0].SortOrder, "sort orders continue")
}

func TestStore_ApplyJournal_ThroughApplier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))

	applier := &accounting.JournalApplier{
		Repository: store,
		Engine:     &accounting.PostingWarningCalculator{},
		Today:      func() generic.TimePoint { return day(time.January, 31) },
	}
	result, err := applier.Apply(ctx, groceryJournal(150, 80))
	require.NoError(t, err)

	ordered := result.Postings.Entries()
	require.Len(t, ordered, 2)
	require.NotNil(t, ordered[0].BudgetAccountValuesAtPostingDate)
	assert.Equal(t, "-230", ordered[0].BudgetAccountValuesAtPostingDate.Posted.String())
	assert.Equal(t, "-29.5", ordered[0].BudgetAccountValuesAtPostingDate.Available().String())
	assert.Equal(t, 3, result.Warnings.Len())
}

func TestStore_ApplyJournal_RejectsUnknownAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))

	journal := groceryJournal(10, 20)
	journal.Lines[1].AccountNumber = "7777"

	_, err := store.ApplyJournal(ctx, journal, nil)
	require.Error(t, err)
	assert.True(t, generic.IsClientError(err))
	assert.Contains(t, err.Error(), "lines[1].accountNumber")

	acc, err := store.LoadAccount(ctx, books, "1010", generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Equal(t, 0, acc.Postings.Len(), "the transaction rolled back")
}

func TestStore_ApplyJournal_NoResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.ApplyJournal(ctx, groceryJournal(10), nil)
	require.NoError(t, err)
	assert.Nil(t, result, "unknown accounting")

	result, err = store.ApplyJournal(ctx, &accounting.Journal{AccountingNumber: books}, nil)
	require.NoError(t, err)
	assert.Nil(t, result, "empty journal")
}

func TestStore_LoadAsOf(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))

	journal := groceryJournal(10)
	journal.Lines = append(journal.Lines, accounting.JournalLine{
		PostingDate:   day(time.March, 1),
		AccountNumber: "1010",
		Debit:         decimal.NewFromInt(5),
	})
	_, err := store.ApplyJournal(ctx, journal, nil)
	require.NoError(t, err)

	feb, err := store.LoadAccount(ctx, books, "1010", day(time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, feb.Postings.Len())

	accounts, err := store.LoadAccounts(ctx, books, generic.MaxTimePoint)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "1010", accounts[0].AccountNumber)
	assert.Equal(t, 2, accounts[0].Postings.Len())
}

func TestStore_SavedPostingsNotDuplicated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := testAccounting(t)

	shared := accounting.PostingLine{
		Identifier:           "seed-1",
		AccountingNumber:     books,
		PostingDate:          day(time.January, 2),
		SortOrder:            1,
		AccountNumber:        "1010",
		ContactAccountNumber: "C1",
		Debit:                decimal.NewFromInt(40),
	}
	checking, _ := a.Account("1010")
	checking.Postings.Add(shared)
	grocer, _ := a.ContactAccount("C1")
	grocer.Postings.Add(shared)

	require.NoError(t, store.SaveAccounting(ctx, a))
	require.NoError(t, store.SaveAccounting(ctx, a))

	acc, err := store.LoadAccount(ctx, books, "1010", generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Equal(t, 1, acc.Postings.Len())

	result, err := store.ApplyJournal(ctx, groceryJournal(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Postings.Entries()[0].SortOrder, "continues after saved lines")
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAccounting(ctx, testAccounting(t)))
	_, err := store.ApplyJournal(ctx, groceryJournal(10), nil)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	a, err := store.LoadAccounting(ctx, books, generic.MaxTimePoint)
	require.NoError(t, err)
	assert.Nil(t, a)
}
