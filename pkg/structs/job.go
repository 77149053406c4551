package structs

// JobSpec are fields that can be set when a job is created.
type JobSpec struct {
	// Name is an optional human readable name for this job
	// (usually the uploaded filename).
	Name string `json:"name"`

	// UserID identifies the submitting user. Opaque to the engine; only
	// used when a per-user concurrency limit is configured.
	UserID string `json:"user_id"`

	// ScriptPath is the script source on disk. The engine reads it, it
	// never writes or removes it.
	//
	// Required.
	ScriptPath string `json:"script_path"`

	// WorkDir is the directory the script is run in.
	// Defaults to the directory of ScriptPath.
	WorkDir string `json:"work_dir"`
}

// Job is one user-submitted script execution request and its persisted state.
//
// The record is the only channel shared between the submitter and the worker;
// all coordination (including cancellation) goes through it.
type Job struct {
	JobSpec `json:",inline"`

	// ID is a unique identifier for this job
	ID string `json:"id"`

	// Status is the current status of this job
	Status Status `json:"status"`

	// ETag is used when updating a job for optimistic locking.
	// It changes when ownership of the record changes (claim, finish),
	// not on log appends or cancel requests.
	ETag string `json:"etag"`

	// ExecutionLog is the captured output, append-only, one line per entry.
	// Synthetic engine lines (heartbeats etc) are interleaved in flush order.
	ExecutionLog string `json:"execution_log"`

	// ErrorMessage is set when the job FAILED. It states what went wrong
	// and, where applicable, the exact remedial command.
	ErrorMessage string `json:"error_message"`

	// CancelRequested may be flipped false -> true by any process with
	// write access to the record, at any time. It is never reset; setting
	// it twice is the same as setting it once.
	CancelRequested bool `json:"cancel_requested"`

	// ExitCode of the subprocess. Nil until the process has exited.
	ExitCode *int64 `json:"exit_code"`

	// QueueJobID is the ID of the job in the Queue (ie. the ID returned
	// when we Enqueue it). Kept for tracking & best-effort Kill().
	QueueJobID string `json:"queue_job_id"`

	// StartedAt is unix seconds; 0 until the job leaves UPLOADED.
	StartedAt int64 `json:"started_at"`

	// CompletedAt is unix seconds; 0 until the job reaches a final status.
	CompletedAt int64 `json:"completed_at"`

	// CreatedAt is the time this job was created unix time in seconds
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the time this job was last updated unix time in seconds
	UpdatedAt int64 `json:"updated_at"`
}
