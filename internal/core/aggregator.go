package core

import (
	"fmt"
	"time"

	"github.com/voidshard/otto/internal/metrics"
	"github.com/voidshard/otto/pkg/database"
)

// these exact strings are part of the captured-log contract; clients grep
// for them
const (
	startedLine   = "Script started, waiting for output..."
	heartbeatFmt  = "[Status: Script running... %ds elapsed, %d lines captured]"
	cancelledLine = "[Script cancelled by user request]"
)

// swappable in tests
var timeNow = time.Now

// OutputAggregator appends a job's output stream to its durable record.
// Real lines flush as they arrive; idle stretches get a heartbeat line so a
// silent script is distinguishable from a dead worker. Not safe for
// concurrent use; one executor goroutine owns it.
type OutputAggregator struct {
	db        database.Database
	sink      metrics.Sink
	jobID     string
	heartbeat time.Duration

	started   time.Time
	lastFlush time.Time
	captured  int
}

func NewOutputAggregator(db database.Database, sink metrics.Sink, jobID string, heartbeat time.Duration) *OutputAggregator {
	return &OutputAggregator{db: db, sink: sink, jobID: jobID, heartbeat: heartbeat}
}

// Start emits the initial status line. Called once, after the subprocess
// spawns and before the first read.
func (a *OutputAggregator) Start() error {
	a.started = timeNow()
	return a.flush(startedLine)
}

// Line records one line of real script output.
func (a *OutputAggregator) Line(line string) error {
	a.captured++
	return a.flush(line)
}

// Idle is called on read cycles that produced no output; it emits a
// heartbeat when one is due. Heartbeats never count toward the captured
// line total they report.
func (a *OutputAggregator) Idle() error {
	now := timeNow()
	if now.Sub(a.lastFlush) < a.heartbeat {
		return nil
	}
	elapsed := int(now.Sub(a.started).Seconds())
	a.sink.HeartbeatEmitted()
	return a.flush(fmt.Sprintf(heartbeatFmt, elapsed, a.captured))
}

// Note emits a synthetic engine line, eg. a cancellation notice.
func (a *OutputAggregator) Note(line string) error {
	return a.flush(line)
}

func (a *OutputAggregator) flush(line string) error {
	a.lastFlush = timeNow()
	err := a.db.AppendLogLines(a.jobID, []string{line})
	if err == nil {
		a.sink.LinesFlushed(1)
	}
	return err
}
