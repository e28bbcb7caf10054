package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extratolab/extrato/internal/domain"
	"github.com/extratolab/extrato/internal/jobs"
	"github.com/extratolab/extrato/internal/ledger"
)

type stubPublisher struct {
	published []*jobs.ExtractStatementJob
	err       error
}

func (p *stubPublisher) PublishExtract(_ context.Context, job *jobs.ExtractStatementJob) error {
	if p.err != nil {
		return p.err
	}
	job.JobID = fmt.Sprintf("job-%d", len(p.published)+1)
	job.Status = jobs.StatusPending
	p.published = append(p.published, job)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

type stubJobStore struct {
	jobs map[string]*jobs.ExtractStatementJob
}

func (s *stubJobStore) SaveJob(_ context.Context, job *jobs.ExtractStatementJob) error {
	if s.jobs == nil {
		s.jobs = make(map[string]*jobs.ExtractStatementJob)
	}
	s.jobs[job.JobID] = job
	return nil
}

func (s *stubJobStore) GetJob(_ context.Context, jobID string) (*jobs.ExtractStatementJob, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return job, nil
}

func (s *stubJobStore) ListJobs(_ context.Context, status jobs.Status) ([]*jobs.ExtractStatementJob, error) {
	var out []*jobs.ExtractStatementJob
	for _, j := range s.jobs {
		if status == "" || j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

type stubSuggester struct {
	category string
}

func (s *stubSuggester) SuggestCategory(_ context.Context, _, _ string) (string, error) {
	return s.category, nil
}

func newTestRouter(t *testing.T) (*mux.Router, *ledger.Store, *ledger.Ledger) {
	t.Helper()
	log := zerolog.Nop()

	store := ledger.NewStore()
	led := ledger.New(nil, &stubSuggester{category: "Impostos e Taxas"}, log)
	led.Ingest(context.Background(), []domain.Transaction{
		{Date: "2024-01-05", Description: "PIX RECEBIDO ACME LTDA", Credit: "1.000,00", Category: "Receitas"},
		{Date: "2024-01-06", Description: "PAGAMENTO DARF", Debit: "250,00", Category: domain.CategoryUncategorized},
	}, nil)
	store.Put(led)

	ledgers := NewLedgersHandler(store, log)

	r := mux.NewRouter()
	r.HandleFunc("/api/ledgers/{ledgerID}", ledgers.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/ledgers/{ledgerID}", ledgers.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/ledgers/{ledgerID}/records/{recordID}", ledgers.EditRecord).Methods(http.MethodPatch)
	r.HandleFunc("/api/ledgers/{ledgerID}/records/{recordID}/suggest-category", ledgers.SuggestCategory).Methods(http.MethodPost)
	r.HandleFunc("/api/ledgers/{ledgerID}/filter", ledgers.Filter).Methods(http.MethodPost)
	r.HandleFunc("/api/ledgers/{ledgerID}/export", ledgers.Export).Methods(http.MethodGet)
	r.HandleFunc("/api/categories", Categories).Methods(http.MethodGet)
	return r, store, led
}

func decodeSnapshot(t *testing.T, body *bytes.Buffer) ledger.Snapshot {
	t.Helper()
	var snap ledger.Snapshot
	require.NoError(t, json.Unmarshal(body.Bytes(), &snap))
	return snap
}

func TestGetLedger(t *testing.T) {
	router, _, led := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ledgers/"+led.ID(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec.Body)
	assert.Equal(t, led.ID(), snap.ID)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, "1.000,00", snap.Records[0].Credit)
}

func TestGetLedgerNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ledgers/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditRecord(t *testing.T) {
	router, _, led := newTestRouter(t)
	recordID := led.Records()[1].ID

	body := strings.NewReader(`{"field":"debit","value":"300,00"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/ledgers/"+led.ID()+"/records/"+recordID, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec.Body)
	assert.Equal(t, "300,00", snap.Records[1].Debit)
	assert.Equal(t, "700.00", snap.Records[1].Balance.StringFixed(2))
}

func TestEditRecordUnknownField(t *testing.T) {
	router, _, led := newTestRouter(t)
	recordID := led.Records()[0].ID

	body := strings.NewReader(`{"field":"color","value":"blue"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/ledgers/"+led.ID()+"/records/"+recordID, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditRecordNotFound(t *testing.T) {
	router, _, led := newTestRouter(t)

	body := strings.NewReader(`{"field":"description","value":"x"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/ledgers/"+led.ID()+"/records/missing", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterLedger(t *testing.T) {
	router, _, led := newTestRouter(t)

	body := strings.NewReader(`{"type":"debit"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ledgers/"+led.ID()+"/filter", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "PAGAMENTO DARF", resp.Transactions[0].Description)
}

func TestSuggestCategory(t *testing.T) {
	router, _, led := newTestRouter(t)
	recordID := led.Records()[1].ID

	req := httptest.NewRequest(http.MethodPost, "/api/ledgers/"+led.ID()+"/records/"+recordID+"/suggest-category", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Impostos e Taxas", resp.Category)
	assert.Equal(t, "Impostos e Taxas", led.Records()[1].Category)
}

func TestExportCSV(t *testing.T) {
	router, _, led := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ledgers/"+led.ID()+"/export?format=csv&type=credit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2) // header + the single credit row
	assert.Contains(t, lines[1], "PIX RECEBIDO ACME LTDA")
}

func TestExportUnsupportedFormat(t *testing.T) {
	router, _, led := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ledgers/"+led.ID()+"/export?format=pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLedger(t *testing.T) {
	router, store, led := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/ledgers/"+led.ID(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestCategories(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Categories    []string `json:"categories"`
		Uncategorized string   `json:"uncategorized"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Categories, "Receitas")
	assert.Equal(t, domain.CategoryUncategorized, resp.Uncategorized)
}

func TestUploadStatement(t *testing.T) {
	pub := &stubPublisher{}
	store := &stubJobStore{}
	h := NewStatementsHandler(pub, store, nil, zerolog.Nop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "extrato-jan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/statements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp["job_id"])
	require.Len(t, pub.published, 1)
	assert.Equal(t, "extrato-jan.pdf", pub.published[0].Filename)
}

func TestUploadStatementMissingFile(t *testing.T) {
	h := NewStatementsHandler(&stubPublisher{}, &stubJobStore{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/statements", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob(t *testing.T) {
	store := &stubJobStore{}
	job := &jobs.ExtractStatementJob{JobID: "job-9", Status: jobs.StatusCompleted, LedgerID: "led-1"}
	require.NoError(t, store.SaveJob(context.Background(), job))

	h := NewStatementsHandler(&stubPublisher{}, store, nil, zerolog.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/api/jobs/{jobID}", h.GetJob).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-9", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got jobs.ExtractStatementJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, jobs.StatusCompleted, got.Status)
	assert.Equal(t, "led-1", got.LedgerID)
}

func TestGetJobNotFound(t *testing.T) {
	h := NewStatementsHandler(&stubPublisher{}, &stubJobStore{}, nil, zerolog.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/api/jobs/{jobID}", h.GetJob).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
