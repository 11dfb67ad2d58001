package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthenticated   = errors.New("no active session")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPersistence       = errors.New("persistence failure")
	ErrTooManyAttempts   = errors.New("too many attempts, try again later")
)
