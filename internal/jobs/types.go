package jobs

import (
	"context"
	"time"

	"github.com/nmthanh/warehouse-vision/internal/recon"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeReconcileInvoice represents an invoice reconciliation job.
	JobTypeReconcileInvoice JobType = "reconcile_invoice"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ReconcileInvoiceJob carries one invoice's raw OCR text through the
// asynchronous reconciliation path and, once completed, the result.
type ReconcileInvoiceJob struct {
	JobID string `json:"job_id"`

	// RawText is the OCR output block to reconcile, one physical row per
	// line.
	RawText string `json:"raw_text"`

	// Result is populated when the job completes.
	Result *recon.BatchResult `json:"result,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains failure details when Status is failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ReconcileInvoiceJob) GetID() string { return j.JobID }

func (j *ReconcileInvoiceJob) GetType() JobType { return JobTypeReconcileInvoice }

func (j *ReconcileInvoiceJob) GetStatus() JobStatus { return j.Status }

// Publisher publishes jobs to a queue. The abstraction keeps the HTTP layer
// independent of the queue implementation.
type Publisher interface {
	PublishReconcile(ctx context.Context, job *ReconcileInvoiceJob) error
	Close() error
}

// Consumer consumes jobs from a queue.
type Consumer interface {
	// Start begins consuming; handler is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore stores and retrieves job state so callers can poll for results.
type JobStore interface {
	SaveJob(ctx context.Context, job *ReconcileInvoiceJob) error
	GetJob(ctx context.Context, jobID string) (*ReconcileInvoiceJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReconcileInvoiceJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
