package structs

import (
	"time"
)

// Dispatch modes: how the worker obtains jobs to run.
const (
	// DispatchQueue delivers jobs over the work queue; the submitter
	// enqueues the job ID at creation time.
	DispatchQueue = "queue"

	// DispatchPoll has the worker poll the database, claiming the oldest
	// UPLOADED job whenever a slot is free.
	DispatchPoll = "poll"
)

// Options tune the engine. All durations are tunable; the defaults below are
// not contractual.
type Options struct {
	// Worker, if true, runs the background worker: recovery sweep,
	// dispatcher and tidy routines. False is intended for API-only
	// processes (they only create / query / cancel jobs).
	Worker bool

	// DispatchMode is either DispatchQueue or DispatchPoll.
	DispatchMode string

	// MaxConcurrentJobs bounds how many jobs this worker runs at once.
	MaxConcurrentJobs int

	// PerUserLimit bounds how many jobs a single user may have RUNNING
	// at once. 0 means the global cap is the only limit.
	PerUserLimit int

	// PollInterval is how often the poll dispatcher looks for claimable
	// jobs (and how long a queue-mode job waits when its user is at the
	// per-user limit).
	PollInterval time.Duration

	// ReadTimeout bounds a single read from the subprocess output pipe,
	// so the executor can interleave cancellation checks & heartbeats.
	ReadTimeout time.Duration

	// Heartbeat is how often a synthetic status line is flushed when the
	// script produces no output.
	Heartbeat time.Duration

	// CancelPollInterval is how often the executor re-reads the
	// cancel_requested flag from the database.
	CancelPollInterval time.Duration

	// GraceWindow is how long a terminated process tree is given to exit
	// after the graceful signal before it is force-killed.
	GraceWindow time.Duration

	// MaxRuntime is the absolute maximum time a script is permitted to
	// run for. Exceeding it is a FAILED, not a CANCELLED.
	MaxRuntime time.Duration

	// Interpreter runs the script (argv[0]); InterpreterArgs are passed
	// before the script path.
	Interpreter     string
	InterpreterArgs []string

	// TidyFrequency is how often we recheck UPLOADED jobs in case their
	// enqueue was dropped, and RequeueAfter is how stale such a job must
	// be before we re-enqueue it.
	TidyFrequency time.Duration
	RequeueAfter  time.Duration
}

// OptionsWorkerDefault returns options for a process that executes jobs.
func OptionsWorkerDefault() *Options {
	o := OptionsClientDefault()
	o.Worker = true
	return o
}

// OptionsClientDefault returns options for a process that only submits,
// queries and cancels jobs (ie. an API server).
func OptionsClientDefault() *Options {
	return &Options{
		DispatchMode:       DispatchQueue,
		MaxConcurrentJobs:  4,
		PerUserLimit:       0,
		PollInterval:       1 * time.Second,
		ReadTimeout:        100 * time.Millisecond,
		Heartbeat:          2 * time.Second,
		CancelPollInterval: 500 * time.Millisecond,
		GraceWindow:        5 * time.Second,
		MaxRuntime:         1 * time.Hour,
		Interpreter:        "python3",
		InterpreterArgs:    []string{"-u"},
		TidyFrequency:      2 * time.Minute,
		RequeueAfter:       5 * time.Minute,
	}
}
