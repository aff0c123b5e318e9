package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required source file or column was not found
	ErrNotFound = errors.New("not found")

	// ErrCorrupt indicates a source file could not be parsed as a table
	ErrCorrupt = errors.New("corrupt source")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLocked indicates another run holds the output directory
	ErrLocked = errors.New("output directory locked")
)
