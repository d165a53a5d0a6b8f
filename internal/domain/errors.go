package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoCopyFields is returned when a copy document yields no active fields
	ErrNoCopyFields = errors.New("copy document contains no active fields")

	// ErrUnsupportedFormat is returned for file types no parser or extractor handles
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMalformedDocument is returned when a copy document cannot be read
	ErrMalformedDocument = errors.New("malformed copy document")

	// ErrExtractionService is returned when the remote text-extraction service fails
	ErrExtractionService = errors.New("extraction service request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
