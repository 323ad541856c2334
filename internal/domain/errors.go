package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedUnavailable is returned when the product feed cannot be fetched
	ErrFeedUnavailable = errors.New("product feed unavailable")

	// ErrProductNotFound is returned when a product id is not in the loaded catalog
	ErrProductNotFound = errors.New("product not found")

	// ErrItemNotFound is returned when a cart line item does not exist
	ErrItemNotFound = errors.New("cart item not found")

	// ErrKeyNotFound is returned by a KeyValueStore for a missing key
	ErrKeyNotFound = errors.New("key not found")

	// ErrStorageUnavailable is returned when durable storage cannot be read or written
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// TransportError reports a failed feed fetch. StatusCode is 0 when the
// request never produced a response.
type TransportError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %s: %v", ErrFeedUnavailable, e.URL, e.Err)
	}
	return fmt.Sprintf("%v: %s: status %d", ErrFeedUnavailable, e.URL, e.StatusCode)
}

// Unwrap lets errors.Is match both ErrFeedUnavailable and the cause
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFeedUnavailable}
	}
	return []error{ErrFeedUnavailable, e.Err}
}
