package bank

import (
	"errors"
	"fmt"
)

// ErrValidation is the base of every local precondition failure. These are
// raised before any remote call is made.
var ErrValidation = errors.New("bank: validation failed")

// Validation failures. All wrap ErrValidation.
var (
	// ErrNotAuthenticated is returned for money movement without a session.
	ErrNotAuthenticated = fmt.Errorf("%w: not authenticated", ErrValidation)

	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)

	// ErrInsufficientBalance is returned when the local balance guard
	// rejects a withdrawal or transfer. The remote service remains the
	// authority and may reject amounts this guard lets through.
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", ErrValidation)

	// ErrInvalidRecipient is returned when a transfer recipient identifier
	// is not a positive integer.
	ErrInvalidRecipient = fmt.Errorf("%w: invalid recipient identifier", ErrValidation)

	// ErrInvalidName is returned when creating an account without a name.
	ErrInvalidName = fmt.Errorf("%w: name is required", ErrValidation)

	// ErrInvalidTaxID is returned when a tax id is not an 11-digit
	// numeric string.
	ErrInvalidTaxID = fmt.Errorf("%w: tax id must be 11 digits", ErrValidation)

	// ErrNegativeBalance is returned when creating an account with a
	// negative initial balance.
	ErrNegativeBalance = fmt.Errorf("%w: initial balance cannot be negative", ErrValidation)
)

// ErrBusy is returned when an operation is already in flight. Overlapping
// calls are rejected, never queued, to avoid duplicate remote side effects.
var ErrBusy = errors.New("bank: operation already in flight")

// ErrReadOnly is returned for money movement while the session is degraded
// (restored from cache but never confirmed by the account service).
var ErrReadOnly = errors.New("bank: session is read-only until the account service confirms it")

// IsValidation reports whether err is a local precondition failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
