package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// ErrInvalidOrExpiredCode is returned verbatim to clients. It deliberately
// does not say whether the destination or the code was wrong, so a caller
// cannot probe which field failed.
var ErrInvalidOrExpiredCode = errors.New("The verification code is invalid or expired. Try again")
