package metrics

import (
	"time"
)

// NoopSink discards all metrics. Used when metrics are disabled and in tests.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (s *NoopSink) JobStarted()                                  {}
func (s *NoopSink) JobFinished(status string, d time.Duration)   {}
func (s *NoopSink) HeartbeatEmitted()                            {}
func (s *NoopSink) LinesFlushed(n int)                           {}
func (s *NoopSink) CancelObserved()                              {}
