// Package handlers implements the HTTP endpoints the browser front end
// consumes: statement upload, job polling, ledger review/edit, filtering and
// export.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/extratolab/extrato/internal/api/middleware"
	"github.com/extratolab/extrato/internal/archive"
	"github.com/extratolab/extrato/internal/jobs"
)

// maxUploadBytes caps statement uploads; bank statement PDFs are small.
const maxUploadBytes = 20 << 20

// StatementsHandler accepts PDF uploads and enqueues extraction jobs.
type StatementsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	archiver  *archive.Archiver
	log       zerolog.Logger
}

// NewStatementsHandler creates the upload handler. archiver may be nil.
func NewStatementsHandler(publisher jobs.Publisher, store jobs.JobStore, archiver *archive.Archiver, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		publisher: publisher,
		store:     store,
		archiver:  archiver,
		log:       log,
	}
}

// Upload handles POST /api/statements. The PDF arrives as multipart field
// "file"; extraction runs async and the response carries the job id to poll.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Expected multipart upload with a 'file' field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = "statement.pdf"
	}

	job := &jobs.ExtractStatementJob{
		Filename: filename,
		PDF:      data,
	}
	if err := h.publisher.PublishExtract(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction")
		return
	}

	if h.archiver != nil {
		// Best effort; the review flow never waits on the archive.
		archiveCtx := context.WithoutCancel(r.Context())
		go func(name string, pdf []byte) {
			uri, err := h.archiver.Save(archiveCtx, name, pdf)
			if err != nil {
				h.log.Warn().Err(err).Str("filename", name).Msg("Failed to archive statement")
				return
			}
			h.log.Info().Str("gcs_uri", uri).Msg("Statement archived")
		}(filename, data)
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{jobID}.
func (h *StatementsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs with an optional ?status= filter.
func (h *StatementsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := jobs.Status(r.URL.Query().Get("status"))

	list, err := h.store.ListJobs(r.Context(), status)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// errStatus maps well-known domain errors onto HTTP codes.
func errStatus(err error, known map[error]int) int {
	for e, code := range known {
		if errors.Is(err, e) {
			return code
		}
	}
	return http.StatusInternalServerError
}
