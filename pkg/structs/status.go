package structs

import (
	"strings"
)

type Status string

const (
	// transient states
	UPLOADED Status = "UPLOADED"
	RUNNING  Status = "RUNNING"

	// end states
	COMPLETED Status = "COMPLETED"
	FAILED    Status = "FAILED"
	CANCELLED Status = "CANCELLED"
)

// IsFinalStatus returns true if a job in this status is done; final statuses
// are never left once entered.
func IsFinalStatus(status Status) bool {
	switch status {
	case COMPLETED, FAILED, CANCELLED:
		return true
	default:
		return false
	}
}

func ToStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "UPLOADED":
		return UPLOADED
	case "RUNNING":
		return RUNNING
	case "COMPLETED":
		return COMPLETED
	case "FAILED":
		return FAILED
	case "CANCELLED":
		return CANCELLED
	default:
		return ""
	}
}
