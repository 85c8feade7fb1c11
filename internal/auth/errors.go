package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrSessionInvalid     = errors.New("auth: session invalid or expired")
	ErrForbidden          = errors.New("auth: access denied")
	ErrThrottled          = errors.New("auth: too many login attempts")
)
