package errors

import "errors"

var (
	ErrInvalidFounderID = errors.New("founder id is required")
	ErrConflict         = errors.New("registry record conflicts with existing state")
)
