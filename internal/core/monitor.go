package core

import (
	"time"

	"github.com/voidshard/otto/pkg/database"
)

// cancelMonitor checks a job's cancel flag without hammering the database:
// reads are rate limited to one per poll interval, and since the flag never
// resets a true result is cached forever.
type cancelMonitor struct {
	db       database.Database
	jobID    string
	interval time.Duration

	lastCheck time.Time
	cancelled bool
}

func newCancelMonitor(db database.Database, jobID string, interval time.Duration) *cancelMonitor {
	return &cancelMonitor{db: db, jobID: jobID, interval: interval}
}

// Cancelled reports whether a cancel has been requested for the job. A
// database error leaves the last known answer in place.
func (m *cancelMonitor) Cancelled() (bool, error) {
	if m.cancelled {
		return true, nil
	}
	now := timeNow()
	if !m.lastCheck.IsZero() && now.Sub(m.lastCheck) < m.interval {
		return false, nil
	}
	m.lastCheck = now

	cancelled, err := m.db.CancelRequested(m.jobID)
	if err != nil {
		return false, err
	}
	m.cancelled = cancelled
	return cancelled, nil
}
