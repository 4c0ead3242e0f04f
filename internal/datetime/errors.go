package datetime

import "errors"

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidTime  = errors.New("invalid time")
	ErrInvalidRange = errors.New("end is before start")
	ErrOutOfRange   = errors.New("date outside of supported range 1900-3000")
)
