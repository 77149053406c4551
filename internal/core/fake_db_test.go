package core

import (
	"fmt"
	"sync"

	"github.com/voidshard/otto/pkg/errors"
	"github.com/voidshard/otto/pkg/structs"
)

// fakeDB is an in-memory Database for tests that exercise the executor and
// its helpers end to end without postgres.
type fakeDB struct {
	mu   sync.Mutex
	jobs map[string]*structs.Job
	logs map[string][]string

	cancelChecks int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		jobs: map[string]*structs.Job{},
		logs: map[string][]string{},
	}
}

func (f *fakeDB) InsertJob(j *structs.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeDB) Jobs(q *structs.Query) ([]*structs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*structs.Job{}
	for _, j := range f.jobs {
		cp := *j
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeDB) ClaimJob(id, newTag string) (*structs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok || j.Status != structs.UPLOADED {
		return nil, fmt.Errorf("%w %s", errors.ErrNotClaimed, id)
	}
	j.Status = structs.RUNNING
	j.ETag = newTag
	cp := *j
	return &cp, nil
}

func (f *fakeDB) ClaimNextUploaded(newTag string, perUserLimit int) (*structs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.Status == structs.UPLOADED {
			j.Status = structs.RUNNING
			j.ETag = newTag
			cp := *j
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) AppendLogLines(id string, lines []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[id] = append(f.logs[id], lines...)
	return nil
}

func (f *fakeDB) RequestCancel(ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		j, ok := f.jobs[id]
		if ok && !structs.IsFinalStatus(j.Status) && !j.CancelRequested {
			j.CancelRequested = true
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) CancelRequested(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelChecks++
	j, ok := f.jobs[id]
	if !ok {
		return false, fmt.Errorf("%w %s", errors.ErrNotFound, id)
	}
	return j.CancelRequested, nil
}

func (f *fakeDB) SetQueueJobID(id, etag, newTag, queueJobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok || j.ETag != etag {
		return errors.ErrETagMismatch
	}
	j.ETag = newTag
	j.QueueJobID = queueJobID
	return nil
}

func (f *fakeDB) FinishJob(id, etag, newTag string, status structs.Status, errMsg string, exitCode *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok || j.ETag != etag {
		return errors.ErrETagMismatch
	}
	j.Status = status
	j.ETag = newTag
	j.ErrorMessage = errMsg
	j.ExitCode = exitCode
	return nil
}

func (f *fakeDB) MarkOrphaned(msg, newTag string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, j := range f.jobs {
		if j.Status == structs.RUNNING {
			j.Status = structs.FAILED
			j.ErrorMessage = msg
			j.ETag = newTag
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) job(id string) *structs.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.jobs[id]
	return &cp
}

func (f *fakeDB) logLines(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.logs[id]...)
}
