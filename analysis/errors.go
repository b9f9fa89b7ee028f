package analysis

import "errors"

// Sentinel errors for analysis requests.
var (
	ErrUnknownQuantity = errors.New("unknown quantity")
	ErrStateLimit      = errors.New("state space exceeds configured limit")
)
