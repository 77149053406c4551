package queue

import (
	"time"
)

// Queue carries job IDs from the submitting process to a worker. The job
// record in the database remains the source of truth; a duplicate or stale
// delivery is harmless because the worker's claim is an atomic status CAS.
type Queue interface {
	// Register the handler invoked once per delivered job ID.
	Register(handler func(jobID string) error) error

	// Run the queue & process jobs (via the Register handler). This
	// blocks until Close() is called.
	Run() error

	// Enqueue a job for execution.
	//
	// If it supports it, the Queue returns a unique id for the queued job
	// with which we can call Kill(the-given-id) before a worker picks it up.
	Enqueue(jobID string) (string, error)

	// EnqueueAfter is Enqueue with a delivery delay.
	EnqueueAfter(jobID string, delay time.Duration) (string, error)

	// Kill a queued job with the ID given to us by Enqueue. Best effort;
	// a job already executing is stopped via its cancel flag instead.
	Kill(queueJobID string) error

	// Close & shutdown the queue.
	Close() error
}
