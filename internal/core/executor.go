package core

import (
	goerrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/voidshard/otto/internal/metrics"
	"github.com/voidshard/otto/internal/utils"
	"github.com/voidshard/otto/pkg/database"
	"github.com/voidshard/otto/pkg/errors"
	"github.com/voidshard/otto/pkg/structs"
)

// JobExecutor runs one claimed job at a time end to end: claim, validate,
// spawn, stream, finalise. Every failure inside a run is converted into a
// final job status; nothing is allowed to crash the worker.
type JobExecutor struct {
	db        database.Database
	validator *DependencyValidator
	sink      metrics.Sink
	opts      *structs.Options
}

func NewJobExecutor(db database.Database, v *DependencyValidator, sink metrics.Sink, opts *structs.Options) *JobExecutor {
	return &JobExecutor{db: db, validator: v, sink: sink, opts: opts}
}

// Execute claims the given job and runs it. A lost claim is not an error;
// another worker (or an earlier delivery) got there first.
func (e *JobExecutor) Execute(id string) error {
	job, err := e.db.ClaimJob(id, utils.NewRandomID())
	if err != nil {
		if goerrors.Is(err, errors.ErrNotClaimed) {
			log.Println("[Executor] job", id, "not claimed, skipping")
			return nil
		}
		return err
	}
	e.runClaimed(job)
	return nil
}

// runClaimed drives a job this worker has already claimed; job.ETag must be
// the tag written by the claim.
func (e *JobExecutor) runClaimed(job *structs.Job) {
	e.sink.JobStarted()
	start := timeNow()

	defer func() {
		if r := recover(); r != nil {
			// a per-job panic must never take down the worker
			log.Println("[Executor] panic running job", job.ID, ":", r)
			e.finish(job, start, structs.FAILED, fmt.Sprintf("Internal error: %v", r), nil)
		}
	}()

	mon := newCancelMonitor(e.db, job.ID, e.opts.CancelPollInterval)

	// a cancel can land between submission and claim
	if cancelled, _ := mon.Cancelled(); cancelled {
		e.sink.CancelObserved()
		e.finish(job, start, structs.CANCELLED, "", nil)
		return
	}

	src, err := os.ReadFile(job.ScriptPath)
	if err != nil {
		e.finish(job, start, structs.FAILED, fmt.Sprintf("Script file not found: %s", job.ScriptPath), nil)
		return
	}

	report, err := e.validator.Validate(string(src))
	if err != nil {
		msg := fmt.Sprintf("Could not verify installed packages: %v", err)
		if goerrors.Is(err, errors.ErrParseFailed) {
			msg = fmt.Sprintf("Script validation failed: %v", err)
		}
		e.finish(job, start, structs.FAILED, msg, nil)
		return
	}
	if !report.AllSatisfied() {
		// fail before spawning anything; the message names the exact
		// packages and the command that installs them
		e.finish(job, start, structs.FAILED, MissingPackagesMessage(report.Missing), nil)
		return
	}

	dir := job.WorkDir
	if dir == "" {
		dir = filepath.Dir(job.ScriptPath)
	}
	command := append(append([]string{e.opts.Interpreter}, e.opts.InterpreterArgs...), job.ScriptPath)
	proc, err := StartProcess(command, dir, []string{"PYTHONUNBUFFERED=1"})
	if err != nil {
		e.finish(job, start, structs.FAILED, fmt.Sprintf("Failed to start script: %v", err), nil)
		return
	}

	agg := NewOutputAggregator(e.db, e.sink, job.ID, e.opts.Heartbeat)
	e.logErr(agg.Start())

	deadline := start.Add(e.opts.MaxRuntime)
	var sawEOF, cancelled, timedOut bool
	for !sawEOF && !cancelled && !timedOut {
		line, ev := proc.ReadLine(e.opts.ReadTimeout)
		switch ev {
		case EventLine:
			e.logErr(agg.Line(line))
		case EventTimeout:
			e.logErr(agg.Idle())
		}

		// checked before EOF so that a cancel racing a natural exit
		// still lands as CANCELLED
		c, err := mon.Cancelled()
		e.logErr(err)
		switch {
		case c:
			cancelled = true
		case ev == EventEOF:
			sawEOF = true
		case timeNow().After(deadline):
			timedOut = true
		}
	}

	switch {
	case cancelled:
		e.sink.CancelObserved()
		proc.Terminate(e.opts.GraceWindow)
		e.logErr(agg.Note(cancelledLine))
		e.finish(job, start, structs.CANCELLED, "", nil)
	case timedOut:
		proc.Terminate(e.opts.GraceWindow)
		e.finish(job, start, structs.FAILED, fmt.Sprintf("Script exceeded maximum runtime of %s", e.opts.MaxRuntime), nil)
	default:
		code, err := proc.ExitCode()
		if err != nil {
			e.finish(job, start, structs.FAILED, fmt.Sprintf("Internal error: %v", err), nil)
			return
		}
		if code == 0 {
			e.finish(job, start, structs.COMPLETED, "", &code)
		} else {
			e.finish(job, start, structs.FAILED, fmt.Sprintf("Script exited with code %d", code), &code)
		}
	}
}

func (e *JobExecutor) finish(job *structs.Job, start time.Time, status structs.Status, msg string, exitCode *int64) {
	err := e.db.FinishJob(job.ID, job.ETag, utils.NewRandomID(), status, msg, exitCode)
	if err != nil {
		log.Println("[Executor] failed to finalise job", job.ID, "as", status, ":", err)
	}
	e.sink.JobFinished(string(status), timeNow().Sub(start))
}

func (e *JobExecutor) logErr(err error) {
	if err != nil {
		log.Println("[Executor]", err)
	}
}
