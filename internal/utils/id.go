package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewRandomID returns a new unique ID (32 hex chars). Used for job IDs and
// etags alike.
func NewRandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValidID returns true if the given string looks like one of our IDs.
func IsValidID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		ok := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !ok {
			return false
		}
	}
	return true
}
