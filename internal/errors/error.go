package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUpstreamTimeout = errors.New("upstream request timed out")
	ErrValidation      = errors.New("invalid input")
	ErrNotFound        = errors.New("resource not found")
)

// UpstreamError is a non-2xx reply from the remote platform. Body carries the
// upstream message verbatim so it can be embedded in the surfaced 500.
type UpstreamError struct {
	Body   string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error status=%d body=%s", e.Status, e.Body)
}
