package state

import "errors"

// Set of errors returned by escrow operations. Callers test for them with
// errors.Is since each is wrapped with the detail of the failure.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrAlreadyCompleted  = errors.New("milestone already completed")
	ErrInsufficientFunds = errors.New("insufficient funds in escrow")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidAccount    = errors.New("invalid account")
)
