package errors

import (
	"fmt"
)

var (
	ErrNoScript     = fmt.Errorf("no script specified")
	ErrNotFound     = fmt.Errorf("not found")
	ErrNotClaimed   = fmt.Errorf("job not claimed")
	ErrETagMismatch = fmt.Errorf("etag mismatch")
	ErrMaxExceeded  = fmt.Errorf("max length exceeded")
	ErrInvalidState = fmt.Errorf("invalid state")
	ErrInvalidArg   = fmt.Errorf("invalid arg")
	ErrParseFailed  = fmt.Errorf("script could not be parsed")
)
