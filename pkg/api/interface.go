package api

import (
	"github.com/voidshard/otto/pkg/structs"
)

// API is the interface exposed by the service, regardless of transport.
type API interface {
	// CreateJob registers a script for execution and dispatches it.
	CreateJob(spec *structs.JobSpec) (*structs.Job, error)

	// Jobs returns jobs matching the given query.
	Jobs(q *structs.Query) ([]*structs.Job, error)

	// Cancel flags the given jobs for cancellation, returning how many
	// were newly flagged.
	Cancel(ids []string) (int64, error)

	// Close tears down the service.
	Close() error
}

// Server is anything that can serve an API to callers.
type Server interface {
	// ServeForever blocks, serving the given API.
	ServeForever(api API) error

	// Close stops the server.
	Close() error
}
