package services

import "errors"

// Service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// Analytics errors
	ErrUnknownAction = errors.New("unknown analytics action")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
