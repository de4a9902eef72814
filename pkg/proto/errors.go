package proto

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized is returned when the caller is not authorized to perform action.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when an email and password pair does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenExpired is returned when a session token is expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExist is returned when an account with the same id or email already exists.
	ErrAccountExist = errors.New("account already exists")
	// ErrInvalidAccount is returned when account fields fail validation.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrAccountHasHandle is returned when an initial reservation is made for
	// an account that already holds a different handle.
	ErrAccountHasHandle = errors.New("account already has a handle")

	// ErrHandleNotFound is returned when no account holds the handle.
	ErrHandleNotFound = errors.New("handle not found")
	// ErrHandleTaken is returned when the handle is reserved by another account.
	ErrHandleTaken = errors.New("handle is already taken")
	// ErrInvalidHandle is returned when a handle fails format validation.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrStaleHandle is returned when the old handle given for a change is
	// not the account's current handle.
	ErrStaleHandle = errors.New("old handle does not match the account's current handle")
	// ErrCooldownActive is matched by *CooldownError.
	ErrCooldownActive = errors.New("handle change cooldown active")

	// ErrStorageUnavailable is returned when the store failed or timed out.
	// The operation had no effect and may be retried.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrTransactionConflict is returned when the operation kept conflicting
	// with concurrent writers. The operation had no effect and may be retried.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// CooldownError is returned when a handle change is attempted before the
// cooldown since the previous change has elapsed.
type CooldownError struct {
	// DaysRemaining is the number of whole days left, rounded up.
	DaysRemaining int
	// Remaining is the exact time left.
	Remaining time.Duration
	// Until is when the next change becomes possible.
	Until time.Time
}

// Error implements error.
func (e *CooldownError) Error() string {
	unit := "days"
	if e.DaysRemaining == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s: %d %s remaining", ErrCooldownActive, e.DaysRemaining, unit)
}

// Is reports whether target is ErrCooldownActive.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// IsTransient reports whether err is a failure the caller may retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrTransactionConflict)
}
