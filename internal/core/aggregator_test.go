package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/otto/internal/metrics"
)

func TestAggregatorStartLine(t *testing.T) {
	db := newFakeDB()
	agg := NewOutputAggregator(db, metrics.NewNoopSink(), "j1", 2*time.Second)

	assert.Nil(t, agg.Start())

	assert.Equal(t, []string{"Script started, waiting for output..."}, db.logLines("j1"))
}

func TestAggregatorFlushesLinesImmediately(t *testing.T) {
	db := newFakeDB()
	agg := NewOutputAggregator(db, metrics.NewNoopSink(), "j1", 2*time.Second)

	assert.Nil(t, agg.Start())
	assert.Nil(t, agg.Line("hello"))
	assert.Nil(t, agg.Line("world"))

	assert.Equal(t, []string{startedLine, "hello", "world"}, db.logLines("j1"))
}

func TestAggregatorHeartbeat(t *testing.T) {
	defer func() { timeNow = time.Now }()
	now := time.Unix(1000, 0)
	timeNow = func() time.Time { return now }

	db := newFakeDB()
	agg := NewOutputAggregator(db, metrics.NewNoopSink(), "j1", 2*time.Second)

	assert.Nil(t, agg.Start())

	// not due yet
	now = now.Add(500 * time.Millisecond)
	assert.Nil(t, agg.Idle())
	assert.Equal(t, 1, len(db.logLines("j1")))

	// a real line resets the idle clock
	now = now.Add(2 * time.Second)
	assert.Nil(t, agg.Line("real output"))
	assert.Nil(t, agg.Idle())
	assert.Equal(t, 2, len(db.logLines("j1")))

	// due; elapsed is measured from Start, captured counts real lines only
	now = now.Add(3 * time.Second)
	assert.Nil(t, agg.Idle())

	assert.Equal(t, []string{
		startedLine,
		"real output",
		"[Status: Script running... 5s elapsed, 1 lines captured]",
	}, db.logLines("j1"))
}

func TestAggregatorHeartbeatNotCounted(t *testing.T) {
	defer func() { timeNow = time.Now }()
	now := time.Unix(1000, 0)
	timeNow = func() time.Time { return now }

	db := newFakeDB()
	agg := NewOutputAggregator(db, metrics.NewNoopSink(), "j1", 2*time.Second)

	assert.Nil(t, agg.Start())
	now = now.Add(2 * time.Second)
	assert.Nil(t, agg.Idle())
	now = now.Add(2 * time.Second)
	assert.Nil(t, agg.Idle())

	assert.Equal(t, []string{
		startedLine,
		"[Status: Script running... 2s elapsed, 0 lines captured]",
		"[Status: Script running... 4s elapsed, 0 lines captured]",
	}, db.logLines("j1"))
}

func TestAggregatorNote(t *testing.T) {
	db := newFakeDB()
	agg := NewOutputAggregator(db, metrics.NewNoopSink(), "j1", 2*time.Second)

	assert.Nil(t, agg.Start())
	assert.Nil(t, agg.Note(cancelledLine))

	assert.Equal(t, []string{startedLine, "[Script cancelled by user request]"}, db.logLines("j1"))
}
