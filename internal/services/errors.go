package services

import "errors"

var (
	// Dataset errors
	ErrNoData        = errors.New("no procedure data loaded")
	ErrYearNotLoaded = errors.New("year not loaded")
	ErrUnknownTable  = errors.New("unknown table")

	// Export errors
	ErrFormatDisabled = errors.New("export format not available")
	ErrUnknownChart   = errors.New("unknown chart")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
