package metrics

import (
	"time"
)

// Sink records engine metrics. All methods must be non-blocking and
// fire-and-forget; the executor never waits on metrics.
type Sink interface {
	// JobStarted is called when a job is claimed (RUNNING).
	JobStarted()

	// JobFinished is called when a job reaches a final status.
	JobFinished(status string, duration time.Duration)

	// HeartbeatEmitted is called per synthetic status line flushed.
	HeartbeatEmitted()

	// LinesFlushed is called with the number of log lines written to the
	// job record in one flush.
	LinesFlushed(n int)

	// CancelObserved is called when the executor acts on a cancel flag.
	CancelObserved()
}
