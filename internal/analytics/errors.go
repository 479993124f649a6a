package analytics

import "errors"

// ErrInvalidLimit indicates a non-positive or non-numeric result limit.
var ErrInvalidLimit = errors.New("n must be a positive integer")
