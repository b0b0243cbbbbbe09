package matchfile

import "errors"

// ErrLoad marks any failure to read or parse a match file.
var ErrLoad = errors.New("load matches")
