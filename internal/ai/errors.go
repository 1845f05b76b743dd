package ai

import "errors"

var (
	// ErrInvalidInput marks requests rejected before any model call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream marks failed or empty model calls.
	ErrUpstream = errors.New("model request failed")
	// ErrMalformedOutput marks model text that could not be extracted.
	ErrMalformedOutput = errors.New("malformed model output")
)
