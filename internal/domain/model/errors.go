package model

import "errors"

// Sentinel kinds for model construction errors.
var (
	ErrInvalidProbabilities = errors.New("invalid probability triple")
	ErrInvalidOutcome       = errors.New("invalid outcome symbol")
)
