package repository

import "errors"

// Sentinel kinds for record-store errors.
var (
	ErrNoData = errors.New("no data for requested day")
	ErrTx     = errors.New("transaction failed")
)
