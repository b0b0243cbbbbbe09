package classifier

import "errors"

// ErrInput is returned when the match list cannot be classified: wrong
// match count or a probability triple that cannot be normalized.
var ErrInput = errors.New("invalid classifier input")
