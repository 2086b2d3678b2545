package domain

import "errors"

// Error taxonomy (sentinels)
var (
	ErrInvalidEvent   = errors.New("invalid event payload")
	ErrNotFound       = errors.New("not found")
	ErrTransientData  = errors.New("transient data error")
	ErrRetryExhausted = errors.New("retry exhausted")
	ErrFetchFailed    = errors.New("order fetch failed")
	ErrPublishFailed  = errors.New("publish failed")
	ErrInternal       = errors.New("internal error")
)

// FailureCode maps an error onto a stable label for metrics and
// dead-letter headers.
func FailureCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidEvent):
		return "INVALID_EVENT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	case errors.Is(err, ErrTransientData):
		return "TRANSIENT_DATA"
	case errors.Is(err, ErrFetchFailed):
		return "FETCH_FAILED"
	case errors.Is(err, ErrPublishFailed):
		return "PUBLISH_FAILED"
	default:
		return "INTERNAL"
	}
}

// IsRetryableData reports whether a relational read error should be
// retried by the chunk retry loop.
func IsRetryableData(err error) bool {
	return errors.Is(err, ErrTransientData)
}
