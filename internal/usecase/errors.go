package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrRateLimited           = errors.New("rate limited by upstream")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrDependencyTimeout     = errors.New("dependency timed out")
)
