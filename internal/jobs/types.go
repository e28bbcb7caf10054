// Package jobs defines the async extraction job model: an uploaded statement
// is parsed in the background while the browser polls for completion.
package jobs

import (
	"context"
	"time"
)

// Status is the lifecycle state of an extraction job.
type Status string

const (
	// StatusPending indicates the job is waiting for a worker.
	StatusPending Status = "pending"
	// StatusRunning indicates extraction is in progress.
	StatusRunning Status = "running"
	// StatusCompleted indicates a ledger is ready under LedgerID.
	StatusCompleted Status = "completed"
	// StatusFailed indicates extraction failed; the document must be
	// re-uploaded. There is no automatic retry: the model either reads the
	// statement or it does not.
	StatusFailed Status = "failed"
)

// ExtractStatementJob tracks one uploaded PDF through extraction. The PDF
// bytes ride along in memory; statements are a few hundred KB at most and the
// payload is dropped once the job finishes.
type ExtractStatementJob struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	PDF      []byte `json:"-"`

	// LedgerID is set when the job completes; the browser fetches the ledger
	// from it.
	LedgerID string `json:"ledger_id,omitempty"`

	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Publisher enqueues extraction jobs.
type Publisher interface {
	PublishExtract(ctx context.Context, job *ExtractStatementJob) error
	Close() error
}

// Consumer drains the queue, calling the handler once per job.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}

// Handler processes one job. A returned error marks the job failed; the error
// text is surfaced to the user as the retry-able upload failure.
type Handler func(ctx context.Context, job *ExtractStatementJob) error

// JobStore records job state for polling.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExtractStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ExtractStatementJob, error)
	ListJobs(ctx context.Context, status Status) ([]*ExtractStatementJob, error)
}
