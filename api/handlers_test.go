/*
handlers_test.go - Tests for the HTTP surface

Tests for:
- Status queries over a loaded scenario (JSON)
- CSV exports
- Journal application and the warnings it returns
- Scenario loading and database reset
*/
package api_test

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/api"
	"github.com/warp/accounting-engine/generic"
	"github.com/warp/accounting-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := api.NewHandler(memory.New(), &accounting.PostingWarningCalculator{}, nil, logger)
	h.Today = func() generic.TimePoint { return generic.NewTimePoint(2024, time.February, 1) }
	return api.NewRouter(h, nil)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loadOverdrawn(t *testing.T, router http.Handler) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"overdrawn"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func readCSV(t *testing.T, rec *httptest.ResponseRecorder) [][]string {
	t.Helper()
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	return records
}

func assertDecimal(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s: want %d, got %s", msg, want, got)
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

func TestGetAccounting(t *testing.T) {
	// GIVEN: The overdrawn scenario
	// WHEN: Fetching the whole accounting at the end of January
	// THEN: Every account kind is calculated and sealed

	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	books := decode[api.AccountingDTO](t, rec)
	assert.Equal(t, 1, books.Number)
	assert.Equal(t, "Household", books.Name)
	assert.Equal(t, "2024-01-31", books.StatusDate)
	assert.True(t, books.IsProtected)
	require.Len(t, books.Accounts, 3)
	assertDecimal(t, -230, books.Accounts[0].ValuesAtStatusDate.Balance, "checking balance")
	require.Len(t, books.BudgetAccounts, 2)
	assert.Equal(t, "E1", books.BudgetAccounts[0].AccountNumber)
	assertDecimal(t, -30, books.BudgetAccounts[0].ValuesForMonth.Available, "groceries available")
	require.Len(t, books.ContactAccounts, 1)
	assertDecimal(t, -230, books.ContactAccounts[0].ValuesAtStatusDate.Balance, "grocer balance")
}

func TestUnknownAccounting_NotFound(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	for _, path := range []string{
		"/api/accountings/2",
		"/api/accountings/2/accounts",
		"/api/accountings/2/accounts/export.csv",
		"/api/accountings/2/budgetaccounts/export.csv",
		"/api/accountings/2/contactaccounts/export.csv",
		"/api/accountings/2/accountgroups/status.csv",
		"/api/accountings/2/accounts/1010/statement.csv",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestListAccounts(t *testing.T) {
	// GIVEN: The overdrawn scenario with checking credit 100
	// WHEN: Listing the accounts at the end of January
	// THEN: Checking carries both grocery runs

	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	accounts := decode[[]api.AccountDTO](t, rec)
	require.Len(t, accounts, 3)
	checking := accounts[0]
	assert.Equal(t, "1010", checking.AccountNumber)
	assert.Equal(t, "2024-01-31", checking.StatusDate)
	assert.True(t, checking.IsProtected, "snapshots are sealed without a modify checker")
	assertDecimal(t, 100, checking.ValuesAtStatusDate.Credit, "credit")
	assertDecimal(t, -230, checking.ValuesAtStatusDate.Balance, "balance")
	assertDecimal(t, -130, checking.ValuesAtStatusDate.Available, "available")
	assert.Empty(t, checking.Postings, "lists carry no statements")
}

func TestGetAccount_WithStatement(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts/1010?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	account := decode[api.AccountDTO](t, rec)
	require.Len(t, account.Postings, 2)
	assert.Equal(t, 2, account.Postings[0].SortOrder, "newest first")
	assert.Equal(t, "GRO-02", account.Postings[0].Reference)
	require.NotNil(t, account.Postings[0].AccountValues)
	assertDecimal(t, -230, account.Postings[0].AccountValues.Balance, "balance after second run")
	assertDecimal(t, -150, account.Postings[1].AccountValues.Balance, "balance after first run")
}

func TestGetAccount_DefaultsToToday(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts/1010", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-02-01", decode[api.AccountDTO](t, rec).StatusDate)
}

func TestGetBudgetAndContactAccounts(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/budgetaccounts/E1?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	budget := decode[api.BudgetAccountDTO](t, rec)
	assertDecimal(t, -200, budget.ValuesForMonth.Budget, "budget")
	assertDecimal(t, -230, budget.ValuesForMonth.Posted, "posted")
	assertDecimal(t, -30, budget.ValuesForMonth.Available, "available")
	assert.Len(t, budget.Postings, 2)

	rec = do(t, router, http.MethodGet, "/api/accountings/1/contactaccounts/C1?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	contact := decode[api.ContactAccountDTO](t, rec)
	assert.Equal(t, "billing@grocer.example", contact.MailAddress)
	assertDecimal(t, -230, contact.ValuesAtStatusDate.Balance, "contact balance")
}

func TestGetAccount_NotFound(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	for _, path := range []string{
		"/api/accountings/1/accounts/9999",
		"/api/accountings/2/accounts/1010",
		"/api/accountings/1/budgetaccounts/X9",
		"/api/accountings/1/contactaccounts/C9",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestBadRequests(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "accounting is not a number", path: "/api/accountings/abc/accounts"},
		{name: "accounting is not positive", path: "/api/accountings/0/accounts"},
		{name: "status date format", path: "/api/accountings/1/accounts?statusDate=31.01.2024"},
		{name: "status date on export", path: "/api/accountings/1/accounts/export.csv?statusDate=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[api.ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

// =============================================================================
// EXPORT ENDPOINTS
// =============================================================================

func TestExportAccounts_CSV(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts/export.csv?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "accounts.csv")

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 4, "header plus three accounts")
	assert.True(t, strings.HasPrefix(lines[1], "1010,Checking,"))
	assert.Contains(t, lines[1], "-230.00")
}

func TestExportBudgetAndContactAccounts_CSV(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/budgetaccounts/export.csv?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "budgetaccounts.csv")
	records := readCSV(t, rec)
	require.Len(t, records, 3, "header plus groceries and salary")
	assert.Equal(t, "E1", records[1][0])
	assert.Equal(t, "S1", records[2][0])

	rec = do(t, router, http.MethodGet, "/api/accountings/1/contactaccounts/export.csv?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	records = readCSV(t, rec)
	require.Len(t, records, 2, "header plus the grocer")
	assert.Equal(t, "C1", records[1][0])
}

func TestExportStatement_CSV(t *testing.T) {
	// GIVEN: Two grocery runs on the same day
	// WHEN: Exporting the checking statement
	// THEN: One line per posting, newest first, with the balance after each

	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts/1010/statement.csv?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement-1010.csv")

	records := readCSV(t, rec)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2024-01-10", "2", "GRO-02", "Groceries, second run", "0.00", "80.00", "-230.00", "C1", ""}, records[1])
	assert.Equal(t, "1", records[2][1])
	assert.Equal(t, "-150.00", records[2][6])

	rec = do(t, router, http.MethodGet, "/api/accountings/1/accounts/9999/statement.csv", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportAccountGroupStatuses_CSV(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accountgroups/status.csv?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3, "header plus bank and debt groups")
	assert.True(t, strings.HasPrefix(lines[1], "1,Bank,Assets,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,Debt,Liabilities,"))
}

// =============================================================================
// JOURNAL ENDPOINTS
// =============================================================================

func TestApplyJournal_ReturnsWarnings(t *testing.T) {
	// GIVEN: Checking already 130 below its credit
	// WHEN: Posting another grocery run of 20
	// THEN: The line overdraws the account and overruns the budget

	router := newTestRouter(t)
	loadOverdrawn(t, router)

	body := `{"lines":[{
		"posting_date":"2024-01-15",
		"reference":"GRO-03",
		"account_number":"1010",
		"budget_account_number":"E1",
		"contact_account_number":"C1",
		"debit":"0",
		"credit":"20"
	}]}`
	rec := do(t, router, http.MethodPost, "/api/accountings/1/journal", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[api.JournalResultDTO](t, rec)
	assert.Equal(t, "2024-02-01", result.StatusDate)
	require.Len(t, result.Postings, 1)
	assert.Equal(t, 3, result.Postings[0].SortOrder)
	require.NotNil(t, result.Postings[0].AccountValues)
	assertDecimal(t, -250, result.Postings[0].AccountValues.Balance, "balance")

	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "AccountIsBeyondLimit", result.Warnings[0].Reason)
	assertDecimal(t, -150, result.Warnings[0].Amount, "account overrun")
	assert.Equal(t, "BudgetAccountIsBeyondLimit", result.Warnings[1].Reason)
	assert.Equal(t, "E1", result.Warnings[1].AccountNumber)
	assertDecimal(t, -50, result.Warnings[1].Amount, "budget overrun")
}

func TestApplyJournal_Rejected(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed body", body: `{"lines":`},
		{name: "unknown account", body: `{"lines":[{"posting_date":"2024-01-15","account_number":"9999","debit":"1","credit":"0"}]}`},
		{name: "bad posting date", body: `{"lines":[{"posting_date":"15.01.2024","account_number":"1010","debit":"1","credit":"0"}]}`},
		{name: "negative amount", body: `{"lines":[{"posting_date":"2024-01-15","account_number":"1010","debit":"-1","credit":"0"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/accountings/1/journal", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts/1010", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[api.AccountDTO](t, rec).Postings, 2, "nothing was posted")
}

func TestApplyJournal_UnknownAccountingHasNoResult(t *testing.T) {
	router := newTestRouter(t)

	body := `{"lines":[{"posting_date":"2024-01-15","account_number":"1010","debit":"1","credit":"0"}]}`
	rec := do(t, router, http.MethodPost, "/api/accountings/7/journal", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[api.JournalResultDTO](t, rec)
	assert.Empty(t, result.Postings)
	assert.Empty(t, result.Warnings)
}

// =============================================================================
// SCENARIOS & ADMIN
// =============================================================================

func TestScenarios(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.ScenarioDTO](t, rec), 2)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"household"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "household", decode[api.ScenarioDTO](t, rec).ID)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadScenario_ReplacesPreviousData(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodGet, "/api/accountings/1/accounts/1010?statusDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	account := decode[api.AccountDTO](t, rec)
	assert.Len(t, account.Postings, 2)
	assertDecimal(t, -230, account.ValuesAtStatusDate.Balance, "balance")
}

func TestResetDatabase(t *testing.T) {
	router := newTestRouter(t)
	loadOverdrawn(t, router)

	rec := do(t, router, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reset", decode[map[string]string](t, rec)["status"])

	rec = do(t, router, http.MethodGet, "/api/accountings/1/accounts", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "the accounting is gone")

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}
