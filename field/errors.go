package field

import "errors"

// Sentinel errors for field construction and arithmetic.
var (
	ErrInvalidOrder = errors.New("invalid field order")
	ErrZeroInverse  = errors.New("zero has no multiplicative inverse")
)
