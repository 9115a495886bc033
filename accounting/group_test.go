package accounting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

func calculatedWithBalance(t *testing.T, number string, group accounting.AccountGroup, debit, credit int64) accounting.AccountView {
	t.Helper()
	acc := newAccount(t, number, group)
	acc.Postings.Add(line(number, day(time.January, 15), 1, debit, credit))
	return acc.Calculate(day(time.February, 10)).Seal()
}

func TestGroupByAccountGroup(t *testing.T) {
	// GIVEN: Two bank accounts and one loan account
	// WHEN: Grouping them
	// THEN: One status per group, balances on the side of the group type

	savings := accounting.AccountGroup{Number: 3, Name: "Savings", Type: accounting.Assets}
	statuses, err := accounting.GroupByAccountGroup([]accounting.AccountView{
		calculatedWithBalance(t, "3000", savings, 5, 0),
		calculatedWithBalance(t, "1010", bank, 100, 0),
		calculatedWithBalance(t, "2010", loans, 0, 40),
		calculatedWithBalance(t, "1020", bank, 0, 30),
	})
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, 1, statuses[0].Group.Number, "ordered by group number")
	assert.Len(t, statuses[0].Accounts, 2)
	assertDecimal(t, 70, statuses[0].ValuesAtStatusDate.Assets, "bank assets")
	assert.True(t, statuses[0].ValuesAtStatusDate.Liabilities.IsZero(), "negative asset balance stays on the asset side")
	assertDecimal(t, 70, statuses[0].ValuesAtEndOfLastMonthFromStatusDate.Assets, "bank assets end of last month")
	assert.True(t, statuses[0].ValuesAtEndOfLastYearFromStatusDate.Assets.IsZero())

	assert.Equal(t, 2, statuses[1].Group.Number)
	assertDecimal(t, -40, statuses[1].ValuesAtStatusDate.Liabilities, "loan liabilities")
	assert.True(t, statuses[1].ValuesAtStatusDate.Assets.IsZero())

	assert.Equal(t, 3, statuses[2].Group.Number)
}

func TestGroupByAccountGroup_Empty(t *testing.T) {
	statuses, err := accounting.GroupByAccountGroup([]accounting.AccountView{})
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestGroupByAccountGroup_NilInput(t *testing.T) {
	_, err := accounting.GroupByAccountGroup(nil)
	assert.ErrorIs(t, err, generic.ErrMissingArgument)

	_, err = accounting.GroupByAccountGroup([]accounting.AccountView{nil})
	assert.ErrorIs(t, err, generic.ErrMissingArgument)

	for _, typedNil := range []accounting.AccountView{(*accounting.SealedAccount)(nil), (*accounting.CalculatedAccount)(nil)} {
		assert.NotPanics(t, func() {
			_, err = accounting.GroupByAccountGroup([]accounting.AccountView{typedNil})
		})
		assert.ErrorIs(t, err, generic.ErrMissingArgument)
	}
}
