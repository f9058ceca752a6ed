package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrMalformedStoredData = errors.New("malformed stored data")
	ErrUnknownBlock        = errors.New("unknown block")
	ErrNotEmpty            = errors.New("block is not empty")
)
