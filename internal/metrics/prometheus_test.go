package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusSinkCounts(t *testing.T) {
	s := NewPrometheusSink(prometheus.NewRegistry())

	s.JobStarted()
	s.JobStarted()
	assert.Equal(t, float64(2), testutil.ToFloat64(s.jobsStarted))
	assert.Equal(t, float64(2), testutil.ToFloat64(s.jobsRunning))

	s.JobFinished("COMPLETED", time.Second)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.jobsFinished.WithLabelValues("COMPLETED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.jobsRunning))

	s.HeartbeatEmitted()
	assert.Equal(t, float64(1), testutil.ToFloat64(s.heartbeats))

	s.LinesFlushed(3)
	s.LinesFlushed(2)
	assert.Equal(t, float64(5), testutil.ToFloat64(s.linesFlushed))

	s.CancelObserved()
	assert.Equal(t, float64(1), testutil.ToFloat64(s.cancelObserved))
}

func TestPrometheusSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()

	// re-registering must not panic; errors are logged & swallowed
	NewPrometheusSink(reg)
	NewPrometheusSink(reg)
}
