package core

import (
	goerrors "errors"
	"fmt"
	"log"
	"time"

	"github.com/voidshard/otto/internal/metrics"
	"github.com/voidshard/otto/internal/utils"
	"github.com/voidshard/otto/pkg/database"
	"github.com/voidshard/otto/pkg/errors"
	"github.com/voidshard/otto/pkg/queue"
	"github.com/voidshard/otto/pkg/structs"
)

const (
	maxNameLength = 500
	maxPathLength = 500

	orphanedMessage = "Worker restarted while the script was running; execution was interrupted. Re-submit the script to run it again."

	tidyPageSize = 500
)

// Service implements the public API. In worker mode it additionally
// reconciles orphaned jobs on startup and dispatches uploaded jobs for
// execution, either from the queue or by polling the database directly.
type Service struct {
	db   database.Database
	qu   queue.Queue
	opts *structs.Options
	sink metrics.Sink
	exec *JobExecutor

	stop chan struct{}
	errs chan error
}

// NewService builds a Service. Worker-mode background routines start
// immediately; errors they hit at runtime are logged, not returned.
func NewService(db database.Database, qu queue.Queue, sink metrics.Sink, opts *structs.Options) (*Service, error) {
	if opts == nil {
		opts = structs.OptionsClientDefault()
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	validator, err := NewDependencyValidator(opts.Interpreter, nil)
	if err != nil {
		return nil, err
	}

	me := &Service{
		db:   db,
		qu:   qu,
		opts: opts,
		sink: sink,
		exec: NewJobExecutor(db, validator, sink, opts),
		stop: make(chan struct{}),
		errs: make(chan error),
	}
	go func() {
		for {
			select {
			case <-me.stop:
				return
			case err := <-me.errs:
				if err != nil {
					log.Println("[Service]", err)
				}
			}
		}
	}()

	if opts.Worker {
		err = me.startWorker()
		if err != nil {
			close(me.stop) // releases the logger above
			return nil, err
		}
	}
	return me, nil
}

func (c *Service) startWorker() error {
	// reconcile jobs orphaned by a previous worker instance before
	// accepting anything new
	n, err := c.db.MarkOrphaned(orphanedMessage, utils.NewRandomID())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Println("[Service] failed", n, "orphaned running job(s) from a previous instance")
	}

	switch c.opts.DispatchMode {
	case structs.DispatchQueue:
		err = c.qu.Register(c.handleDelivery)
		if err != nil {
			return err
		}
		go func() {
			c.reportErr(c.qu.Run())
		}()
		go c.tidyUploaded()
	case structs.DispatchPoll:
		go c.pollUploaded()
	default:
		return fmt.Errorf("%w unknown dispatch mode %q", errors.ErrInvalidArg, c.opts.DispatchMode)
	}
	return nil
}

// handleDelivery runs one queue-delivered job. Claiming is what makes this
// safe: a duplicate or stale delivery simply fails to claim.
func (c *Service) handleDelivery(jobID string) error {
	if c.opts.PerUserLimit > 0 {
		atLimit, err := c.userAtLimit(jobID)
		if err != nil {
			return err
		}
		if atLimit {
			// the owner already has their fill of running jobs; push
			// the delivery back rather than holding a worker slot
			_, err = c.qu.EnqueueAfter(jobID, c.opts.PollInterval)
			return err
		}
	}
	return c.exec.Execute(jobID)
}

// reportErr hands an error to the logging routine without blocking past
// shutdown; after Close both it and the logger bail out on stop.
func (c *Service) reportErr(err error) {
	select {
	case c.errs <- err:
	case <-c.stop:
	}
}

func (c *Service) userAtLimit(jobID string) (bool, error) {
	jobs, err := c.db.Jobs(&structs.Query{JobIDs: []string{jobID}, Limit: 1})
	if err != nil {
		return false, err
	}
	if len(jobs) == 0 || jobs[0].UserID == "" {
		return false, nil
	}
	running, err := c.db.Jobs(&structs.Query{
		UserIDs:  []string{jobs[0].UserID},
		Statuses: []structs.Status{structs.RUNNING},
		Limit:    c.opts.PerUserLimit,
	})
	if err != nil {
		return false, err
	}
	return len(running) >= c.opts.PerUserLimit, nil
}

// pollUploaded claims and runs uploaded jobs straight from the database.
func (c *Service) pollUploaded() {
	slots := make(chan struct{}, c.opts.MaxConcurrentJobs)
	tick := time.NewTicker(c.opts.PollInterval)
	defer tick.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-tick.C:
		}
	claim:
		for {
			select {
			case slots <- struct{}{}:
			default:
				break claim // all slots busy; wait for the next tick
			}
			job, err := c.db.ClaimNextUploaded(utils.NewRandomID(), c.opts.PerUserLimit)
			if err != nil {
				c.reportErr(err)
				<-slots
				break claim
			}
			if job == nil {
				<-slots
				break claim
			}
			go func(j *structs.Job) {
				defer func() { <-slots }()
				c.exec.runClaimed(j)
			}(job)
		}
	}
}

// tidyUploaded re-enqueues uploaded jobs whose queue delivery was lost, eg.
// the submitter crashed between insert and enqueue, or the broker dropped
// it. Duplicate deliveries are harmless; only one claim can win.
func (c *Service) tidyUploaded() {
	tick := time.NewTicker(c.opts.TidyFrequency)
	defer tick.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-tick.C:
		}
		q := &structs.Query{
			Limit:         tidyPageSize,
			Statuses:      []structs.Status{structs.UPLOADED},
			UpdatedBefore: timeNow().Add(-c.opts.RequeueAfter).Unix(),
		}
		for {
			jobs, err := c.db.Jobs(q)
			if err != nil {
				c.reportErr(err)
				break
			}
			for _, j := range jobs {
				qid, err := c.qu.Enqueue(j.ID)
				if err != nil {
					c.reportErr(err)
					continue
				}
				err = c.db.SetQueueJobID(j.ID, j.ETag, utils.NewRandomID(), qid)
				if err != nil && !goerrors.Is(err, errors.ErrETagMismatch) {
					c.reportErr(err)
				}
			}
			if len(jobs) < q.Limit {
				break
			}
			q.Offset += q.Limit
		}
	}
}

// CreateJob registers a new job and, in queue mode, dispatches it. An
// enqueue failure is not fatal; the job stays UPLOADED and the tidy routine
// will pick it up.
func (c *Service) CreateJob(spec *structs.JobSpec) (*structs.Job, error) {
	err := validateJobSpec(spec)
	if err != nil {
		return nil, err
	}

	job := &structs.Job{
		JobSpec: *spec,
		ID:      utils.NewRandomID(),
		Status:  structs.UPLOADED,
		ETag:    utils.NewRandomID(),
	}
	err = c.db.InsertJob(job)
	if err != nil {
		return nil, err
	}

	if c.opts.DispatchMode == structs.DispatchQueue {
		qid, err := c.qu.Enqueue(job.ID)
		if err != nil {
			log.Println("[Service] enqueue failed for job", job.ID, ":", err)
			return job, nil
		}
		newTag := utils.NewRandomID()
		err = c.db.SetQueueJobID(job.ID, job.ETag, newTag, qid)
		if err == nil {
			job.ETag = newTag
			job.QueueJobID = qid
		} else if !goerrors.Is(err, errors.ErrETagMismatch) {
			log.Println("[Service] failed to record queue id for job", job.ID, ":", err)
		}
	}
	return job, nil
}

// Jobs returns jobs matching the given query.
func (c *Service) Jobs(q *structs.Query) ([]*structs.Job, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	return c.db.Jobs(q)
}

// Cancel flags the given jobs for cancellation and returns how many were
// newly flagged. The flag is durable; running executors act on it at their
// next poll, wherever they are.
func (c *Service) Cancel(ids []string) (int64, error) {
	for _, id := range ids {
		if !utils.IsValidID(id) {
			return 0, fmt.Errorf("%w invalid id %s", errors.ErrInvalidArg, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	count, err := c.db.RequestCancel(ids)
	if err != nil {
		return count, err
	}

	// best effort: pull jobs that are still sitting in the queue so they
	// don't occupy a worker slot just to be cancelled on claim
	jobs, err := c.db.Jobs(&structs.Query{JobIDs: ids, Limit: len(ids)})
	if err != nil {
		return count, nil
	}
	for _, j := range jobs {
		if j.Status != structs.UPLOADED || j.QueueJobID == "" {
			continue
		}
		err = c.qu.Kill(j.QueueJobID)
		if err != nil {
			log.Println("[Service] failed to drop queued job", j.ID, ":", err)
			continue
		}
		// nothing will ever claim it now; finalise directly. If a worker
		// claimed it while we looked, the etag no longer matches and the
		// executor's own cancel check takes over.
		err = c.db.FinishJob(j.ID, j.ETag, utils.NewRandomID(), structs.CANCELLED, "", nil)
		if err != nil && !goerrors.Is(err, errors.ErrETagMismatch) {
			log.Println("[Service] failed to finalise cancelled job", j.ID, ":", err)
		}
	}
	return count, nil
}

// Close stops background routines and releases the queue and database.
func (c *Service) Close() error {
	close(c.stop)
	c.qu.Close()
	c.db.Close()
	return nil
}

func validateJobSpec(spec *structs.JobSpec) error {
	if spec == nil || spec.ScriptPath == "" {
		return errors.ErrNoScript
	}
	if len(spec.Name) > maxNameLength {
		return fmt.Errorf("%w name exceeds %d chars", errors.ErrMaxExceeded, maxNameLength)
	}
	if len(spec.ScriptPath) > maxPathLength || len(spec.WorkDir) > maxPathLength {
		return fmt.Errorf("%w path exceeds %d chars", errors.ErrMaxExceeded, maxPathLength)
	}
	return nil
}
