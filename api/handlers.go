/*
handlers.go - HTTP API handlers for the accounting engine

PURPOSE:
  Exposes status queries, CSV exports and journal application via a REST
  API. Handles HTTP request/response and JSON serialization, and
  delegates to the accounting services.

ENDPOINTS:
  Accounts:
    GET  /api/accountings/{accounting}                          Whole accounting
    GET  /api/accountings/{accounting}/accounts                 Calculated accounts
    GET  /api/accountings/{accounting}/accounts/{account}       One account with statement
    GET  /api/accountings/{accounting}/budgetaccounts/{account} One budget account
    GET  /api/accountings/{accounting}/contactaccounts/{account} One contact account

  Exports:
    GET  /api/accountings/{accounting}/accounts/export.csv          Account CSV
    GET  /api/accountings/{accounting}/accounts/{account}/statement.csv
                                                                    Statement CSV
    GET  /api/accountings/{accounting}/budgetaccounts/export.csv    Budget account CSV
    GET  /api/accountings/{accounting}/contactaccounts/export.csv   Contact account CSV
    GET  /api/accountings/{accounting}/accountgroups/status.csv     Group status CSV

  Journals:
    POST /api/accountings/{accounting}/journal                  Apply a journal

  Admin:
    POST /api/reset                                             Clear all data

  Every GET takes ?statusDate=YYYY-MM-DD; today when absent.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: MissingArgument / InvalidValue
  - 404: Account or accounting not found (lists and exports included)
  - 500: Internal errors

SECURITY NOTE:
  No authentication. Sealing is decided by the configured ModifyChecker.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/export"
	"github.com/warp/accounting-engine/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the handlers need.
type Store interface {
	accounting.Repository
	SaveAccounting(ctx context.Context, a *accounting.Accounting) error
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Status   *accounting.StatusService
	Journals *accounting.JournalApplier
	Logger   *slog.Logger
	Today    func() generic.TimePoint

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires the services over store. A nil modify seals every
// snapshot handed out.
func NewHandler(store Store, engine accounting.WarningEngine, modify accounting.ModifyChecker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		Store:  store,
		Status: &accounting.StatusService{Repository: store, Modify: modify},
		Logger: logger,
		Today:  generic.Today,
	}
	h.Journals = &accounting.JournalApplier{
		Repository: store,
		Engine:     engine,
		Logger:     logger,
		Today:      func() generic.TimePoint { return h.Today() },
	}
	return h
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// GetAccounting returns the whole accounting calculated at the status date.
func (h *Handler) GetAccounting(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadAccounting(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toAccountingDTO(view))
}

// ListAccounts returns every account calculated at the status date.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}

	views, err := h.Status.Accounts(r.Context(), accountingNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if views == nil {
		writeError(w, http.StatusNotFound, "Accounting not found", nil)
		return
	}

	dtos := make([]AccountDTO, 0, len(views))
	for _, v := range views {
		dtos = append(dtos, toAccountDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns one account with its statement lines.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}
	accountNumber := chi.URLParam(r, "account")

	view, err := h.Status.Account(r.Context(), accountingNumber, accountNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	dto := toAccountDTO(view)
	dto.Postings = toPostingDTOs(export.StatementLines(view.Ledger()))
	writeJSON(w, http.StatusOK, dto)
}

// GetBudgetAccount returns one budget account with its statement lines.
func (h *Handler) GetBudgetAccount(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}
	accountNumber := chi.URLParam(r, "account")

	view, err := h.Status.BudgetAccount(r.Context(), accountingNumber, accountNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "Budget account not found", nil)
		return
	}

	dto := toBudgetAccountDTO(view)
	dto.Postings = toPostingDTOs(export.StatementLines(view.Ledger()))
	writeJSON(w, http.StatusOK, dto)
}

// GetContactAccount returns one contact account with its statement lines.
func (h *Handler) GetContactAccount(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}
	accountNumber := chi.URLParam(r, "account")

	view, err := h.Status.ContactAccount(r.Context(), accountingNumber, accountNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "Contact account not found", nil)
		return
	}

	dto := toContactAccountDTO(view)
	dto.Postings = toPostingDTOs(export.StatementLines(view.Ledger()))
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// EXPORT ENDPOINTS
// =============================================================================

// ExportAccounts writes the account CSV.
func (h *Handler) ExportAccounts(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}

	views, err := h.Status.Accounts(r.Context(), accountingNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if views == nil {
		writeError(w, http.StatusNotFound, "Accounting not found", nil)
		return
	}
	writeCSV(h, w, r, "accounts.csv", export.AccountCSV{}, views)
}

// ExportStatement writes the statement lines of one account.
func (h *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}
	accountNumber := chi.URLParam(r, "account")

	view, err := h.Status.Account(r.Context(), accountingNumber, accountNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	filename := "statement-" + view.Identity().AccountNumber + ".csv"
	writeCSV(h, w, r, filename, export.StatementCSV{}, export.StatementLines(view.Ledger()))
}

// ExportBudgetAccounts writes the budget account CSV.
func (h *Handler) ExportBudgetAccounts(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadAccounting(w, r)
	if !ok {
		return
	}
	writeCSV(h, w, r, "budgetaccounts.csv", export.BudgetAccountCSV{}, view.BudgetAccountViews())
}

// ExportContactAccounts writes the contact account CSV.
func (h *Handler) ExportContactAccounts(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadAccounting(w, r)
	if !ok {
		return
	}
	writeCSV(h, w, r, "contactaccounts.csv", export.ContactAccountCSV{}, view.ContactAccountViews())
}

// ExportAccountGroupStatuses writes the account group status CSV.
func (h *Handler) ExportAccountGroupStatuses(w http.ResponseWriter, r *http.Request) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return
	}

	statuses, err := h.Status.AccountGroupStatuses(r.Context(), accountingNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if statuses == nil {
		writeError(w, http.StatusNotFound, "Accounting not found", nil)
		return
	}
	writeCSV(h, w, r, "accountgroups.csv", export.AccountGroupStatusCSV{}, statuses)
}

// =============================================================================
// JOURNAL ENDPOINTS
// =============================================================================

// ApplyJournal posts the lines of a journal and returns the calculated
// lines with the warnings they raised.
func (h *Handler) ApplyJournal(w http.ResponseWriter, r *http.Request) {
	accountingNumber, ok := h.parseAccounting(w, r)
	if !ok {
		return
	}

	var req JournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	journal, err := req.toJournal(accountingNumber)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	result, err := h.Journals.Apply(r.Context(), journal)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJournalResultDTO(result))
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseAccounting(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "accounting")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid accounting number",
			&generic.InvalidValueError{Field: "accounting", Reason: "must be a positive number"})
		return 0, false
	}
	return n, true
}

func (h *Handler) loadAccounting(w http.ResponseWriter, r *http.Request) (accounting.AccountingView, bool) {
	accountingNumber, statusDate, ok := h.parseCommon(w, r)
	if !ok {
		return nil, false
	}
	view, err := h.Status.Accounting(r.Context(), accountingNumber, statusDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, false
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "Accounting not found", nil)
		return nil, false
	}
	return view, true
}

func (h *Handler) parseCommon(w http.ResponseWriter, r *http.Request) (int, generic.TimePoint, bool) {
	accountingNumber, ok := h.parseAccounting(w, r)
	if !ok {
		return 0, generic.TimePoint{}, false
	}
	raw := r.URL.Query().Get("statusDate")
	if raw == "" {
		return accountingNumber, h.Today(), true
	}
	statusDate, err := generic.ParseTimePoint(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid statusDate", err)
		return 0, generic.TimePoint{}, false
	}
	return accountingNumber, statusDate, true
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "Internal error", err)
		return
	}
	var missing *generic.MissingArgumentError
	if errors.As(err, &missing) {
		writeError(w, status, "Missing argument", err)
		return
	}
	writeError(w, status, "Invalid request", err)
}

// writeCSV streams items as an attachment. Headers are already sent when
// the writer fails, so the failure is only logged.
func writeCSV[T any](h *Handler, w http.ResponseWriter, r *http.Request, filename string, c export.Converter[T], items []T) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, c, items); err != nil {
		h.Logger.ErrorContext(r.Context(), "csv export failed", "file", filename, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
