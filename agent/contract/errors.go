package contract

import "errors"

var (
	ErrModelInvoke         = errors.New("model invoke failed")
	ErrRateLimited         = errors.New("provider rate limited")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrValidation          = errors.New("validation failed")
)
