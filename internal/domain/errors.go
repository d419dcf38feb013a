package domain

import "errors"

var (
	// ErrProductNotFound is returned when the food database has no record
	// for the scanned code.
	ErrProductNotFound = errors.New("product not found in food database")

	// ErrLookupFailure is returned when the food database request fails
	// at the transport level (network error, unexpected HTTP status).
	ErrLookupFailure = errors.New("food database request failed")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
