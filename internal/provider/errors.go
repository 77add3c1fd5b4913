package provider

import "errors"

// Sentinel errors implementations map backend failures onto. Callers classify
// with errors.Is.
var (
	// ErrAuth indicates the API rejected the configured credentials.
	ErrAuth = errors.New("provider: invalid API key")

	// ErrRateLimit indicates the API asked us to retry later.
	ErrRateLimit = errors.New("provider: rate limited, retry later")

	// ErrEmptyResponse indicates the API answered without any choices.
	ErrEmptyResponse = errors.New("provider: no response received")

	// ErrUnavailable indicates the backend could not be reached or failed
	// server-side.
	ErrUnavailable = errors.New("provider: backend unavailable")
)
