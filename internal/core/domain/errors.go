package domain

import "errors"

// Credential store.
var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Token authority. These never reach the client individually; the request
// guard wraps them in ErrUnauthenticated.
var (
	ErrTokenInvalid   = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// Request guard and ownership.
var (
	ErrUnauthenticated = errors.New("not authorized")
	ErrNotOwner        = errors.New("user not authorized")
	ErrRateLimited     = errors.New("too many login attempts")
)

var ErrExpenseNotFound = errors.New("expense not found")
