package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownProgram = errors.New("unknown program")
	ErrNilStore       = errors.New("store must not be nil")
)
