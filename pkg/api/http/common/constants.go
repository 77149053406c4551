package common

const (
	// API_JOBS is used to get or create jobs
	API_JOBS = "/api/v1/jobs"

	// API_CANCEL is used to request cancellation of jobs
	API_CANCEL = "/api/v1/cancel"
)
