package database

import (
	"github.com/voidshard/otto/pkg/structs"
)

// Database is the durable job record store. It is the only state shared
// between the submitting process and the worker process; it must provide
// read-after-write consistency per record.
type Database interface {
	// InsertJob creates a job record (status UPLOADED).
	InsertJob(j *structs.Job) error

	// Jobs returns jobs matching the given query.
	Jobs(q *structs.Query) ([]*structs.Job, error)

	// ClaimJob atomically moves the given UPLOADED job to RUNNING,
	// stamping started_at and the new etag. Returns ErrNotClaimed if the
	// job is not UPLOADED (another worker claimed it, or it already ran).
	ClaimJob(id, newTag string) (*structs.Job, error)

	// ClaimNextUploaded atomically claims the oldest UPLOADED job.
	// If perUserLimit > 0, jobs whose user already has that many RUNNING
	// jobs are skipped. Returns (nil, nil) when there is nothing to claim.
	ClaimNextUploaded(newTag string, perUserLimit int) (*structs.Job, error)

	// AppendLogLines appends lines to the job's execution log, in order.
	// It does not touch the etag; the executor owns the job while it runs.
	AppendLogLines(id string, lines []string) error

	// RequestCancel flips cancel_requested on the given jobs. The flag
	// only ever goes false -> true; repeat requests are no-ops. Any
	// process may call this, which is why it takes no etag.
	RequestCancel(ids []string) (int64, error)

	// CancelRequested re-reads the authoritative flag for one job.
	CancelRequested(id string) (bool, error)

	// SetQueueJobID records the queue's ID for a job (so a queued job can
	// be killed later). Guarded by etag.
	SetQueueJobID(id, etag, newTag, queueJobID string) error

	// FinishJob moves a job to a final status, stamping completed_at and
	// optionally error_message / exit_code. Guarded by etag.
	FinishJob(id, etag, newTag string, status structs.Status, errMsg string, exitCode *int64) error

	// MarkOrphaned fails every RUNNING job, recording the given message.
	// Called once at worker startup, before any claims; after a restart no
	// RUNNING job can have a live process under this worker.
	MarkOrphaned(msg, newTag string) (int64, error)

	Close() error
}
