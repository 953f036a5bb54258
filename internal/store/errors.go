package store

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidAllocation = errors.New("invalid target allocation")
)
