package core

import (
	goerrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/voidshard/otto/internal/metrics"
	"github.com/voidshard/otto/internal/mocks/pkg/database_mock"
	"github.com/voidshard/otto/internal/mocks/pkg/queue_mock"
	"github.com/voidshard/otto/internal/utils"
	"github.com/voidshard/otto/pkg/errors"
	"github.com/voidshard/otto/pkg/structs"
)

func testService(t *testing.T) (*Service, *database_mock.MockDatabase, *queue_mock.MockQueue) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mdb := database_mock.NewMockDatabase(ctrl)
	mq := queue_mock.NewMockQueue(ctrl)
	svc := &Service{
		db:   mdb,
		qu:   mq,
		opts: structs.OptionsClientDefault(),
		sink: metrics.NewNoopSink(),
	}
	return svc, mdb, mq
}

func TestCreateJobValidation(t *testing.T) {
	svc, _, _ := testService(t)

	cases := []struct {
		Name   string
		Given  *structs.JobSpec
		Expect error
	}{
		{"NilSpec", nil, errors.ErrNoScript},
		{"NoScriptPath", &structs.JobSpec{Name: "x"}, errors.ErrNoScript},
		{
			"NameTooLong",
			&structs.JobSpec{Name: strings.Repeat("a", maxNameLength+1), ScriptPath: "/tmp/x.py"},
			errors.ErrMaxExceeded,
		},
		{
			"PathTooLong",
			&structs.JobSpec{Name: "x", ScriptPath: "/" + strings.Repeat("a", maxPathLength)},
			errors.ErrMaxExceeded,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := svc.CreateJob(c.Given)

			assert.True(t, goerrors.Is(err, c.Expect))
		})
	}
}

func TestCreateJobEnqueues(t *testing.T) {
	svc, mdb, mq := testService(t)

	mdb.EXPECT().InsertJob(gomock.Any()).Return(nil)
	mq.EXPECT().Enqueue(gomock.Any()).Return("queue-id-1", nil)
	mdb.EXPECT().SetQueueJobID(gomock.Any(), gomock.Any(), gomock.Any(), "queue-id-1").Return(nil)

	job, err := svc.CreateJob(&structs.JobSpec{Name: "test", ScriptPath: "/tmp/x.py"})

	assert.Nil(t, err)
	assert.Equal(t, structs.UPLOADED, job.Status)
	assert.Equal(t, "queue-id-1", job.QueueJobID)
	assert.True(t, utils.IsValidID(job.ID))
	assert.True(t, utils.IsValidID(job.ETag))
}

func TestCreateJobSurvivesEnqueueFailure(t *testing.T) {
	// the record is durable; the tidy routine re-enqueues it later
	svc, mdb, mq := testService(t)

	mdb.EXPECT().InsertJob(gomock.Any()).Return(nil)
	mq.EXPECT().Enqueue(gomock.Any()).Return("", goerrors.New("redis down"))

	job, err := svc.CreateJob(&structs.JobSpec{Name: "test", ScriptPath: "/tmp/x.py"})

	assert.Nil(t, err)
	assert.Equal(t, structs.UPLOADED, job.Status)
	assert.Equal(t, "", job.QueueJobID)
}

func TestCreateJobPollModeSkipsQueue(t *testing.T) {
	svc, mdb, _ := testService(t)
	svc.opts.DispatchMode = structs.DispatchPoll

	mdb.EXPECT().InsertJob(gomock.Any()).Return(nil)

	job, err := svc.CreateJob(&structs.JobSpec{Name: "test", ScriptPath: "/tmp/x.py"})

	assert.Nil(t, err)
	assert.Equal(t, structs.UPLOADED, job.Status)
}

func TestJobsSanitizesQuery(t *testing.T) {
	svc, mdb, _ := testService(t)

	mdb.EXPECT().Jobs(gomock.Any()).DoAndReturn(func(q *structs.Query) ([]*structs.Job, error) {
		assert.Equal(t, 1000, q.Limit)
		return []*structs.Job{}, nil
	})

	_, err := svc.Jobs(&structs.Query{})

	assert.Nil(t, err)
}

func TestCancelRejectsBadIDs(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.Cancel([]string{"not-an-id"})

	assert.True(t, goerrors.Is(err, errors.ErrInvalidArg))
}

func TestCancelFlagsAndDropsQueued(t *testing.T) {
	svc, mdb, mq := testService(t)

	idA := utils.NewRandomID()
	idB := utils.NewRandomID()

	mdb.EXPECT().RequestCancel([]string{idA, idB}).Return(int64(2), nil)
	mdb.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{
		&structs.Job{ID: idA, Status: structs.UPLOADED, QueueJobID: "q1"},
		&structs.Job{ID: idB, Status: structs.RUNNING, QueueJobID: "q2"},
	}, nil)
	// only the still-queued job is pulled & finalised; the running one is
	// stopped by its executor observing the flag
	mq.EXPECT().Kill("q1").Return(nil)
	mdb.EXPECT().FinishJob(idA, gomock.Any(), gomock.Any(), structs.CANCELLED, "", gomock.Nil()).Return(nil)

	n, err := svc.Cancel([]string{idA, idB})

	assert.Nil(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCancelEmpty(t *testing.T) {
	svc, _, _ := testService(t)

	n, err := svc.Cancel([]string{})

	assert.Nil(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUserAtLimit(t *testing.T) {
	svc, mdb, _ := testService(t)
	svc.opts.PerUserLimit = 2

	mdb.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{
		&structs.Job{ID: "j1", JobSpec: structs.JobSpec{UserID: "u1"}},
	}, nil)
	mdb.EXPECT().Jobs(gomock.Any()).DoAndReturn(func(q *structs.Query) ([]*structs.Job, error) {
		assert.Equal(t, []string{"u1"}, q.UserIDs)
		assert.Equal(t, []structs.Status{structs.RUNNING}, q.Statuses)
		return []*structs.Job{
			&structs.Job{ID: "a", Status: structs.RUNNING},
			&structs.Job{ID: "b", Status: structs.RUNNING},
		}, nil
	})

	atLimit, err := svc.userAtLimit("j1")

	assert.Nil(t, err)
	assert.True(t, atLimit)
}

func TestHandleDeliveryRequeuesAtLimit(t *testing.T) {
	svc, mdb, mq := testService(t)
	svc.opts.PerUserLimit = 1

	mdb.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{
		&structs.Job{ID: "j1", JobSpec: structs.JobSpec{UserID: "u1"}},
	}, nil)
	mdb.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{
		&structs.Job{ID: "other", Status: structs.RUNNING},
	}, nil)
	mq.EXPECT().EnqueueAfter("j1", svc.opts.PollInterval).Return("q2", nil)

	assert.Nil(t, svc.handleDelivery("j1"))
}

func TestHandleDeliveryNoUserSkipsLimit(t *testing.T) {
	svc, mdb, _ := testService(t)
	svc.opts.PerUserLimit = 1

	// anonymous jobs are only bounded by the global cap
	mdb.EXPECT().Jobs(gomock.Any()).Return([]*structs.Job{
		&structs.Job{ID: "j1"},
	}, nil)

	atLimit, err := svc.userAtLimit("j1")

	assert.Nil(t, err)
	assert.False(t, atLimit)
}

func TestNewServiceWorkerFailsOrphans(t *testing.T) {
	// a job left RUNNING by a dead worker is failed before we accept work
	ctrl := gomock.NewController(t)
	mq := queue_mock.NewMockQueue(ctrl)
	mq.EXPECT().Close().Return(nil)

	db := newFakeDB()
	db.InsertJob(&structs.Job{ID: "orphan", Status: structs.RUNNING, ETag: "old"})

	opts := structs.OptionsWorkerDefault()
	opts.DispatchMode = structs.DispatchPoll

	svc, err := NewService(db, mq, nil, opts)

	assert.Nil(t, err)
	j := db.job("orphan")
	assert.Equal(t, structs.FAILED, j.Status)
	assert.Contains(t, j.ErrorMessage, "restarted")
	assert.Nil(t, svc.Close())
}

func TestNewServiceWorkerQueueModeRegisters(t *testing.T) {
	ctrl := gomock.NewController(t)
	mq := queue_mock.NewMockQueue(ctrl)
	mq.EXPECT().Register(gomock.Any()).Return(nil)
	mq.EXPECT().Run().Return(nil).AnyTimes()
	mq.EXPECT().Close().Return(nil)

	svc, err := NewService(newFakeDB(), mq, nil, structs.OptionsWorkerDefault())

	assert.Nil(t, err)
	assert.Nil(t, svc.Close())
}

func TestNewServiceRejectsUnknownDispatchMode(t *testing.T) {
	opts := structs.OptionsWorkerDefault()
	opts.DispatchMode = "carrier-pigeon"

	_, err := NewService(newFakeDB(), nil, nil, opts)

	assert.True(t, goerrors.Is(err, errors.ErrInvalidArg))
}

func TestCloseStopsEverything(t *testing.T) {
	svc, mdb, mq := testService(t)
	svc.stop = make(chan struct{})

	mq.EXPECT().Close().Return(nil)
	mdb.EXPECT().Close().Return(nil)

	assert.Nil(t, svc.Close())

	select {
	case <-svc.stop:
	case <-time.After(time.Second):
		t.Fatal("stop channel not closed")
	}
}
