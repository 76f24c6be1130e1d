package model

import (
	"fmt"
	"time"
)

// HTTPError is returned by the scrape client for non-200 responses. The
// retry loop inspects StatusCode to decide retryability and honors
// RetryAfter when the site sets the header.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // zero when the header is absent or unparsable
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
