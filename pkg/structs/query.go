package structs

const (
	queryLimitDefault = 1000
	queryLimitMax     = 10000
)

type Query struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	JobIDs   []string `json:"job_ids,omitempty"`
	UserIDs  []string `json:"user_ids,omitempty"`
	Statuses []Status `json:"statuses,omitempty"`

	// UpdatedBefore matches jobs whose last update is at or before the
	// given unix time (0 disables the filter).
	UpdatedBefore int64 `json:"updated_before,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = queryLimitDefault
	}
	if q.Limit > queryLimitMax {
		q.Limit = queryLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.JobIDs == nil || len(q.JobIDs) == 0 {
		q.JobIDs = nil
	}
	if q.UserIDs == nil || len(q.UserIDs) == 0 {
		q.UserIDs = nil
	}
	if q.Statuses == nil || len(q.Statuses) == 0 {
		q.Statuses = nil
	}
	if q.UpdatedBefore < 0 {
		q.UpdatedBefore = 0
	}
}
