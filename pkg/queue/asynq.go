package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

const (
	asynqWorkQueue = "otto:work"
	asynqTaskType  = "otto:execute"
)

type Asynq struct {
	opts *Options
	conn asynq.RedisConnOpt

	// the asynq client & inspector
	ins *asynq.Inspector
	cli *asynq.Client

	// if Register is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server
}

func NewAsynqQueue(opts *Options) (*Asynq, error) {
	conn, err := asynq.ParseRedisURI(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.TLSConfig != nil {
		if c, ok := conn.(asynq.RedisClientOpt); ok {
			c.TLSConfig = opts.TLSConfig
			conn = c
		}
	}
	return &Asynq{
		opts: opts,
		conn: conn,
		ins:  asynq.NewInspector(conn),
		cli:  asynq.NewClient(conn),
	}, nil
}

func (a *Asynq) Close() error {
	if a.srv == nil {
		return nil
	}
	a.srv.Stop()
	a.srv.Shutdown()
	return nil
}

func (a *Asynq) Register(handler func(jobID string) error) error {
	if a.mux == nil {
		a.buildServer()
	}
	a.mux.HandleFunc(asynqTaskType, func(ctx context.Context, t *asynq.Task) error {
		return handler(string(t.Payload()))
	})
	return nil
}

func (a *Asynq) Run() error {
	if a.srv == nil {
		return fmt.Errorf("no handler registered")
	}
	return a.srv.Run(a.mux)
}

func (a *Asynq) Enqueue(jobID string) (string, error) {
	return a.enqueue(jobID)
}

func (a *Asynq) EnqueueAfter(jobID string, delay time.Duration) (string, error) {
	return a.enqueue(jobID, asynq.ProcessIn(delay))
}

func (a *Asynq) enqueue(jobID string, extra ...asynq.Option) (string, error) {
	// MaxRetry(0): the executor converts failures into a final job status
	// itself; the queue redelivering would start a second attempt for a
	// job that already finished.
	opts := append([]asynq.Option{asynq.Queue(asynqWorkQueue), asynq.MaxRetry(0)}, extra...)
	info, err := a.cli.Enqueue(asynq.NewTask(asynqTaskType, []byte(jobID)), opts...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *Asynq) Kill(queueJobID string) error {
	// Best effort; asynq can't guarantee this will stop it. Jobs that are
	// already executing are stopped by the cancel flag on the record.
	err := a.ins.DeleteTask(asynqWorkQueue, queueJobID)
	if err == nil {
		return nil
	}
	return a.ins.CancelProcessing(queueJobID)
}

func (a *Asynq) buildServer() {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return
	}
	concurrency := a.opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	srv := asynq.NewServer(
		a.conn,
		asynq.Config{
			Queues:      map[string]int{asynqWorkQueue: 1},
			Concurrency: concurrency,
		},
	)
	mux := asynq.NewServeMux()
	a.srv = srv
	a.mux = mux
}
