package matrix

import "errors"

// Sentinel errors for matrix construction and algebra.
var (
	ErrDimension     = errors.New("dimension mismatch")
	ErrElement       = errors.New("entry outside field")
	ErrNotInvertible = errors.New("matrix is singular")
	ErrOrderBound    = errors.New("exponent is not a multiple of the order")
)
