package domain

import "errors"

// ErrNotFound indicates no snapshot exists for the requested user key.
var ErrNotFound = errors.New("domain: not found")

// ErrInvalidDimension indicates an aggregation dimension outside {artist, album}.
var ErrInvalidDimension = errors.New("domain: invalid dimension")

// ErrInvalidLimit indicates a non-positive aggregation limit.
var ErrInvalidLimit = errors.New("domain: limit must be positive")
