package accounting

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// ACCOUNT GROUP STATUS - Balance sheet roll-up
// =============================================================================

// AccountCollectionValues are the summed balances of a set of accounts.
type AccountCollectionValues struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
}

func (v AccountCollectionValues) add(group AccountGroupType, balance decimal.Decimal) AccountCollectionValues {
	switch group {
	case Assets:
		v.Assets = v.Assets.Add(balance)
	case Liabilities:
		v.Liabilities = v.Liabilities.Add(balance)
	}
	return v
}

// AccountGroupStatus is one account group with its members' balances
// summed at the status date, the end of last month and the end of last
// year.
type AccountGroupStatus struct {
	Group                                AccountGroup
	Accounts                             []AccountView
	ValuesAtStatusDate                   AccountCollectionValues
	ValuesAtEndOfLastMonthFromStatusDate AccountCollectionValues
	ValuesAtEndOfLastYearFromStatusDate  AccountCollectionValues
}

// GroupByAccountGroup partitions the accounts by group number and sums
// each member's balance into Assets or Liabilities according to the
// group type. The sign of the balance does not change the side. Groups
// are returned by group number.
func GroupByAccountGroup(accounts []AccountView) ([]*AccountGroupStatus, error) {
	if accounts == nil {
		return nil, generic.Missing("accounts")
	}
	byNumber := make(map[int]*AccountGroupStatus)
	for _, account := range accounts {
		if isNilAccountView(account) {
			return nil, generic.Missing("account")
		}
		group := account.Group()
		status, ok := byNumber[group.Number]
		if !ok {
			status = &AccountGroupStatus{Group: group}
			byNumber[group.Number] = status
		}
		status.Accounts = append(status.Accounts, account)
		status.ValuesAtStatusDate = status.ValuesAtStatusDate.add(group.Type, account.ValuesAtStatusDate().Balance)
		status.ValuesAtEndOfLastMonthFromStatusDate = status.ValuesAtEndOfLastMonthFromStatusDate.add(group.Type, account.ValuesAtEndOfLastMonthFromStatusDate().Balance)
		status.ValuesAtEndOfLastYearFromStatusDate = status.ValuesAtEndOfLastYearFromStatusDate.add(group.Type, account.ValuesAtEndOfLastYearFromStatusDate().Balance)
	}

	out := make([]*AccountGroupStatus, 0, len(byNumber))
	for _, status := range byNumber {
		out = append(out, status)
	}
	slices.SortFunc(out, func(a, b *AccountGroupStatus) int {
		return cmp.Compare(a.Group.Number, b.Group.Number)
	})
	return out, nil
}

// isNilAccountView also catches nil pointers stored in the interface.
func isNilAccountView(v AccountView) bool {
	switch a := v.(type) {
	case nil:
		return true
	case *CalculatedAccount:
		return a == nil
	case *SealedAccount:
		return a == nil
	}
	return false
}
