package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voidshard/otto/internal/core"
	"github.com/voidshard/otto/internal/metrics"
	"github.com/voidshard/otto/pkg/database"
	"github.com/voidshard/otto/pkg/queue"
	"github.com/voidshard/otto/pkg/structs"
)

// OptionsWorkerDefault returns sensible defaults for a worker process.
func OptionsWorkerDefault() *structs.Options {
	return structs.OptionsWorkerDefault()
}

// OptionsClientDefault returns sensible defaults for a client / API process.
func OptionsClientDefault() *structs.Options {
	return structs.OptionsClientDefault()
}

// New connects to the database and queue and builds the service. Workers
// export Prometheus metrics on the default registry; clients do not.
func New(dbOpts *database.Options, qOpts *queue.Options, opts *structs.Options) (API, error) {
	if opts == nil {
		opts = OptionsClientDefault()
	}

	db, err := database.NewPostgres(dbOpts)
	if err != nil {
		return nil, err
	}

	if qOpts.Concurrency == 0 {
		qOpts.Concurrency = opts.MaxConcurrentJobs
	}
	qu, err := queue.NewAsynqQueue(qOpts)
	if err != nil {
		db.Close()
		return nil, err
	}

	return NewAPI(db, qu, opts)
}

// NewAPI builds the service on already constructed database and queue
// implementations.
func NewAPI(db database.Database, qu queue.Queue, opts *structs.Options) (API, error) {
	var sink metrics.Sink = metrics.NewNoopSink()
	if opts != nil && opts.Worker {
		sink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
	}
	return core.NewService(db, qu, sink, opts)
}
