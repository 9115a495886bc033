/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built accountings that populate the store with realistic
	data for demos. Each scenario saves an accounting with its groups,
	accounts and budgets, then posts a journal through the store.

AVAILABLE SCENARIOS:

	household:  Checking, savings and credit card with monthly budgets
	overdrawn:  A checking account pushed past its credit, raising warnings

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Build the accounting and its accounts and save it
 3. Apply the scenario's journal

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "household"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a builder to 'scenarioBuilders'

SEE ALSO:
  - handlers.go: Handler context
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	AccountingNumber int    `json:"accounting_number"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

const demoAccountingNumber = 1

var scenarios = []ScenarioDTO{
	{
		ID:               "household",
		Name:             "Household",
		Description:      "Checking, savings and credit card with monthly budgets",
		AccountingNumber: demoAccountingNumber,
	},
	{
		ID:               "overdrawn",
		Name:             "Overdrawn",
		Description:      "Checking account pushed past its credit, raising warnings",
		AccountingNumber: demoAccountingNumber,
	},
}

type scenarioBuilder func(year int) (*accounting.Accounting, *accounting.Journal, error)

var scenarioBuilders = map[string]scenarioBuilder{
	"household": buildHouseholdScenario,
	"overdrawn": buildOverdrawnScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario saves a demo accounting and posts its journal.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	build, ok := scenarioBuilders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario",
			&generic.InvalidValueError{Field: "scenario_id", Reason: "unknown scenario " + req.ScenarioID})
		return
	}

	if err := h.loadScenario(r.Context(), build); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.currentScenario = req.ScenarioID
	h.Logger.InfoContext(r.Context(), "scenario loaded", "scenario", req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

func (h *Handler) loadScenario(ctx context.Context, build scenarioBuilder) error {
	a, journal, err := build(h.Today().Year())
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	h.currentScenario = ""
	if err := h.Store.SaveAccounting(ctx, a); err != nil {
		return fmt.Errorf("save scenario accounting: %w", err)
	}
	if _, err := h.Store.ApplyJournal(ctx, journal, h.Journals.Engine); err != nil {
		return fmt.Errorf("post scenario journal: %w", err)
	}
	return nil
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

var (
	demoBank     = accounting.AccountGroup{Number: 1, Name: "Bank", Type: accounting.Assets}
	demoDebt     = accounting.AccountGroup{Number: 2, Name: "Debt", Type: accounting.Liabilities}
	demoIncome   = accounting.BudgetAccountGroup{Number: 1, Name: "Income"}
	demoExpenses = accounting.BudgetAccountGroup{Number: 2, Name: "Expenses"}
)

func demoAccounting() (*accounting.Accounting, error) {
	a, err := accounting.NewAccounting(demoAccountingNumber, "Household")
	if err != nil {
		return nil, err
	}
	a.BackDating = 30

	checking, err := accounting.NewAccount(demoIdentity("1010", "Checking"), demoBank)
	if err != nil {
		return nil, err
	}
	savings, err := accounting.NewAccount(demoIdentity("1020", "Savings"), demoBank)
	if err != nil {
		return nil, err
	}
	card, err := accounting.NewAccount(demoIdentity("2010", "Credit card"), demoDebt)
	if err != nil {
		return nil, err
	}
	salary, err := accounting.NewBudgetAccount(demoIdentity("S1", "Salary"), demoIncome)
	if err != nil {
		return nil, err
	}
	groceries, err := accounting.NewBudgetAccount(demoIdentity("E1", "Groceries"), demoExpenses)
	if err != nil {
		return nil, err
	}
	grocer, err := accounting.NewContactAccount(demoIdentity("C1", "Corner grocer"))
	if err != nil {
		return nil, err
	}
	grocer.MailAddress = "billing@grocer.example"

	for _, add := range []func() error{
		func() error { return a.AddAccount(checking) },
		func() error { return a.AddAccount(savings) },
		func() error { return a.AddAccount(card) },
		func() error { return a.AddBudgetAccount(salary) },
		func() error { return a.AddBudgetAccount(groceries) },
		func() error { return a.AddContactAccount(grocer) },
	} {
		if err := add(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func demoIdentity(number, name string) accounting.AccountIdentity {
	return accounting.AccountIdentity{AccountingNumber: demoAccountingNumber, AccountNumber: number, Name: name}
}

func buildHouseholdScenario(year int) (*accounting.Accounting, *accounting.Journal, error) {
	a, err := demoAccounting()
	if err != nil {
		return nil, nil, err
	}
	checking, _ := a.Account("1010")
	card, _ := a.Account("2010")
	salary, _ := a.BudgetAccount("S1")
	groceries, _ := a.BudgetAccount("E1")

	for m := time.January; m <= time.December; m++ {
		key := generic.YearMonth{Year: year, Month: m}
		credit, err := accounting.NewCreditInfo(decimal.NewFromInt(500))
		if err != nil {
			return nil, nil, err
		}
		checking.CreditInfos.Put(key, credit)
		cardCredit, err := accounting.NewCreditInfo(decimal.NewFromInt(2000))
		if err != nil {
			return nil, nil, err
		}
		card.CreditInfos.Put(key, cardCredit)
		income, err := accounting.NewBudgetInfo(decimal.NewFromInt(3000), decimal.Zero)
		if err != nil {
			return nil, nil, err
		}
		salary.BudgetInfos.Put(key, income)
		spend, err := accounting.NewBudgetInfo(decimal.Zero, decimal.NewFromInt(600))
		if err != nil {
			return nil, nil, err
		}
		groceries.BudgetInfos.Put(key, spend)
	}

	journal := &accounting.Journal{AccountingNumber: demoAccountingNumber}
	for m := time.January; m <= time.March; m++ {
		journal.Lines = append(journal.Lines,
			accounting.JournalLine{
				PostingDate:         generic.NewTimePoint(year, m, 1),
				Reference:           fmt.Sprintf("SAL-%02d", m),
				Details:             "Salary",
				AccountNumber:       "1010",
				BudgetAccountNumber: "S1",
				Debit:               decimal.NewFromInt(3000),
			},
			accounting.JournalLine{
				PostingDate:          generic.NewTimePoint(year, m, 5),
				Reference:            fmt.Sprintf("GRO-%02d", m),
				Details:              "Groceries",
				AccountNumber:        "1010",
				BudgetAccountNumber:  "E1",
				ContactAccountNumber: "C1",
				Credit:               decimal.NewFromInt(420),
			},
			accounting.JournalLine{
				PostingDate:   generic.NewTimePoint(year, m, 20),
				Reference:     fmt.Sprintf("SAV-%02d", m),
				Details:       "Transfer to savings",
				AccountNumber: "1020",
				Debit:         decimal.NewFromInt(500),
			},
			accounting.JournalLine{
				PostingDate:   generic.NewTimePoint(year, m, 20),
				Reference:     fmt.Sprintf("SAV-%02d", m),
				Details:       "Transfer to savings",
				AccountNumber: "1010",
				Credit:        decimal.NewFromInt(500),
			},
		)
	}
	return a, journal, nil
}

func buildOverdrawnScenario(year int) (*accounting.Accounting, *accounting.Journal, error) {
	a, err := demoAccounting()
	if err != nil {
		return nil, nil, err
	}
	checking, _ := a.Account("1010")
	groceries, _ := a.BudgetAccount("E1")

	key := generic.YearMonth{Year: year, Month: time.January}
	credit, err := accounting.NewCreditInfo(decimal.NewFromInt(100))
	if err != nil {
		return nil, nil, err
	}
	checking.CreditInfos.Put(key, credit)
	spend, err := accounting.NewBudgetInfo(decimal.Zero, decimal.NewFromInt(200))
	if err != nil {
		return nil, nil, err
	}
	groceries.BudgetInfos.Put(key, spend)

	journal := &accounting.Journal{
		AccountingNumber: demoAccountingNumber,
		Lines: []accounting.JournalLine{
			{
				PostingDate:          generic.NewTimePoint(year, time.January, 10),
				Reference:            "GRO-01",
				Details:              "Groceries",
				AccountNumber:        "1010",
				BudgetAccountNumber:  "E1",
				ContactAccountNumber: "C1",
				Credit:               decimal.NewFromInt(150),
			},
			{
				PostingDate:          generic.NewTimePoint(year, time.January, 10),
				Reference:            "GRO-02",
				Details:              "Groceries, second run",
				AccountNumber:        "1010",
				BudgetAccountNumber:  "E1",
				ContactAccountNumber: "C1",
				Credit:               decimal.NewFromInt(80),
			},
		},
	}
	return a, journal, nil
}
