package generator

import "errors"

// ErrMatchCount is returned when the classified slate is not a full card.
var ErrMatchCount = errors.New("generator needs a full card of classified matches")
