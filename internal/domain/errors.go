package domain

import "errors"

var (
	// ErrProductNotFound is returned when no export row carries the requested product id
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSourceUnavailable is returned when a pipeline artifact cannot be read or decoded
	ErrSourceUnavailable = errors.New("pipeline artifact unavailable")
)
