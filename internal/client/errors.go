package client

import "fmt"

// The transport layer translates every failure into one of the four error
// shapes below before it reaches the matching/bidding core.

type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type TimeoutError struct {
	Message string
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %s", e.Message)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// APIError carries the status code and raw body so callers can inspect
// domain-level conditions (duplicate orders, missing bids) without
// re-parsing transport details.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed [%d]: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }
