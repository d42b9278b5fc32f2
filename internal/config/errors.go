package config

import (
	"errors"
)

// Error kinds returned by Load. Callers branch with errors.Is: a load
// failure means a source could not be read, a validation failure means
// the merged result is unusable.
var (
	ErrInvalidConfig = errors.New("configuration failed validation")
	ErrLoadConfig    = errors.New("configuration could not be loaded")
)
