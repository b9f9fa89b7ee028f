package space

import "errors"

var (
	ErrDimension = errors.New("invalid dimension")
	ErrComponent = errors.New("component outside field")
	ErrTooLarge  = errors.New("state space too large")
)
