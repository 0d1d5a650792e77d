package entity

import "errors"

// Domain errors
var (
	// Auth errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrWrongTokenType     = errors.New("wrong token type")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")

	// External service errors
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrUpstreamFailed      = errors.New("upstream service request failed")
	ErrResultTimeout       = errors.New("timed out waiting for task result")
)
