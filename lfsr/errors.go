package lfsr

import "errors"

var (
	ErrInvalidSpec  = errors.New("invalid register spec")
	ErrInvalidState = errors.New("invalid register state")
)
