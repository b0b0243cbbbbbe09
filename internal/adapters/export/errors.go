package export

import "errors"

// Sentinel error kinds for exporters.
var (
	ErrWrite         = errors.New("write export")
	ErrUnknownFormat = errors.New("unknown export format")
)
