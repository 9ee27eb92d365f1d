package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCategory indicates that the requested poll category is unknown
	ErrInvalidCategory = errors.New("unknown poll category")

	// ErrProviderTimeout indicates that an upstream provider request timed out
	ErrProviderTimeout = errors.New("timeout while fetching polls")

	// ErrProviderUnavailable indicates that an upstream provider returned an
	// error status or an unusable payload
	ErrProviderUnavailable = errors.New("poll provider unavailable")

	// ErrEmptyPayload indicates that a provider responded successfully but
	// with no usable records (treated as a soft failure by the fetch chain)
	ErrEmptyPayload = errors.New("provider returned no usable records")

	// ErrRateLimitExceeded indicates that rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrCacheUnavailable indicates a cache miss or an unavailable cache backend
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

// ProviderError represents an error from a single upstream poll provider.
// These are non-fatal to the fetch chain: they are logged and the chain
// moves on to the next provider.
type ProviderError struct {
	Provider string
	Endpoint string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s (%s): %s: %v", e.Provider, e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("provider %s (%s): %s", e.Provider, e.Endpoint, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider-specific error
func NewProviderError(provider, endpoint, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}
