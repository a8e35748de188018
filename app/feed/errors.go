package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkFailure is matched by every feed fetch failure: transport
	// errors, timeouts and non-2xx responses
	ErrNetworkFailure = errors.New("network failure")

	// ErrMalformedFeed is returned when the feed document cannot be parsed
	ErrMalformedFeed = errors.New("malformed feed")
)

// FetchError describes a failed feed fetch
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network failure fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("network failure fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrNetworkFailure
}
