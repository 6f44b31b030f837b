package apperr

import "errors"

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrNotFound      = errors.New("not found")
)
