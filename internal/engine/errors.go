package engine

import "errors"

var (
	ErrMalformedDuration = errors.New("duration must be a non-negative finite number")
	ErrUnknownCategory   = errors.New("unknown category in allocation")
	ErrInvalidAllocation = errors.New("allocation percentages must be non-negative and sum to 100")
)
