package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/extratolab/extrato/internal/api/middleware"
	"github.com/extratolab/extrato/internal/domain"
	"github.com/extratolab/extrato/internal/export"
	"github.com/extratolab/extrato/internal/ledger"
)

// LedgersHandler serves the review surface over extracted ledgers.
type LedgersHandler struct {
	store *ledger.Store
	log   zerolog.Logger
}

func NewLedgersHandler(store *ledger.Store, log zerolog.Logger) *LedgersHandler {
	return &LedgersHandler{store: store, log: log}
}

func (h *LedgersHandler) ledger(w http.ResponseWriter, r *http.Request) (*ledger.Ledger, bool) {
	id := mux.Vars(r)["ledgerID"]
	led, ok := h.store.Get(id)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Ledger not found")
		return nil, false
	}
	return led, true
}

// Get handles GET /api/ledgers/{ledgerID}.
func (h *LedgersHandler) Get(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledger(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, led.Snapshot())
}

type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditRecord handles PATCH /api/ledgers/{ledgerID}/records/{recordID}.
// Every edit triggers a full balance recompute; the response is the fresh
// ledger snapshot so the client never renders stale derived state.
func (h *LedgersHandler) EditRecord(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledger(w, r)
	if !ok {
		return
	}
	recordID := mux.Vars(r)["recordID"]

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := led.EditField(r.Context(), recordID, req.Field, req.Value); err != nil {
		code := errStatus(err, map[error]int{
			ledger.ErrRecordNotFound:  http.StatusNotFound,
			ledger.ErrUnknownField:    http.StatusBadRequest,
			ledger.ErrUnknownCategory: http.StatusBadRequest,
		})
		middleware.WriteError(w, code, err.Error())
		return
	}

	h.log.Debug().
		Str("ledger_id", led.ID()).
		Str("record_id", recordID).
		Str("field", req.Field).
		Msg("Record edited")

	middleware.WriteJSON(w, http.StatusOK, led.Snapshot())
}

// Filter handles POST /api/ledgers/{ledgerID}/filter. Filtering is a pure
// view over the ledger; the stored records are untouched.
func (h *LedgersHandler) Filter(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledger(w, r)
	if !ok {
		return
	}

	var criteria ledger.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	rows := ledger.ApplyFilter(led.Records(), criteria)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": rows,
		"count":        len(rows),
	})
}

// SuggestCategory handles POST /api/ledgers/{ledgerID}/records/{recordID}/suggest-category.
func (h *LedgersHandler) SuggestCategory(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledger(w, r)
	if !ok {
		return
	}
	recordID := mux.Vars(r)["recordID"]

	suggested, err := led.SuggestCategory(r.Context(), recordID)
	if err != nil {
		code := errStatus(err, map[error]int{
			ledger.ErrRecordNotFound:     http.StatusNotFound,
			ledger.ErrSuggestionInFlight: http.StatusConflict,
		})
		middleware.WriteError(w, code, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"category": suggested,
		"ledger":   led.Snapshot(),
	})
}

// Export handles GET /api/ledgers/{ledgerID}/export?format=csv|txt|xlsx.
// Filter criteria arrive as query parameters so the exported file matches
// whatever view the user has on screen.
func (h *LedgersHandler) Export(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledger(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	criteria := ledger.Criteria{
		Text:      q.Get("text"),
		Category:  q.Get("category"),
		Type:      ledger.TransactionType(q.Get("type")),
		Unusual:   ledger.UnusualStatus(q.Get("unusual")),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		MinAmount: q.Get("minAmount"),
		MaxAmount: q.Get("maxAmount"),
	}
	rows := export.Rows(ledger.ApplyFilter(led.Records(), criteria))

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	stamp := time.Now().Format("2006-01-02")

	var (
		contentType string
		filename    string
		write       func() error
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		filename = fmt.Sprintf("extrato-%s.csv", stamp)
		write = func() error { return export.WriteCSV(w, rows) }
	case "txt":
		contentType = "text/plain; charset=utf-8"
		filename = fmt.Sprintf("extrato-%s.txt", stamp)
		write = func() error { return export.WriteTXT(w, rows) }
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = fmt.Sprintf("extrato-%s.xlsx", stamp)
		write = func() error { return export.WriteXLSX(w, rows) }
	default:
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format %q", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := write(); err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("Export failed")
	}
}

// Delete handles DELETE /api/ledgers/{ledgerID}. Dropping the ledger is the
// reset path; the client uploads a new statement to start over.
func (h *LedgersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["ledgerID"]
	if _, ok := h.store.Get(id); !ok {
		middleware.WriteError(w, http.StatusNotFound, "Ledger not found")
		return
	}
	h.store.Delete(id)
	h.log.Info().Str("ledger_id", id).Msg("Ledger deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /api/categories.
func Categories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories":    domain.Categories,
		"uncategorized": domain.CategoryUncategorized,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
