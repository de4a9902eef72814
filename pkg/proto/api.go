package proto

import (
	"errors"
	"time"
)

// Error codes carried in API error responses.
const (
	CodeBadRequest          = "bad_request"
	CodeUnauthorized        = "unauthorized"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeTokenExpired        = "token_expired"
	CodeNotFound            = "not_found"
	CodeAccountNotFound     = "account_not_found"
	CodeAccountExists       = "account_exists"
	CodeInvalidAccount      = "invalid_account"
	CodeAccountHasHandle    = "account_has_handle"
	CodeHandleNotFound      = "handle_not_found"
	CodeHandleTaken         = "handle_taken"
	CodeInvalidHandle       = "invalid_handle"
	CodeStaleHandle         = "stale_handle"
	CodeCooldownActive      = "cooldown_active"
	CodeStorageUnavailable  = "storage_unavailable"
	CodeTransactionConflict = "transaction_conflict"
	CodeInternal            = "internal"
)

var codeErrors = []struct {
	code string
	err  error
}{
	{CodeUnauthorized, ErrUnauthorized},
	{CodeInvalidCredentials, ErrInvalidCredentials},
	{CodeTokenExpired, ErrTokenExpired},
	{CodeAccountNotFound, ErrAccountNotFound},
	{CodeAccountExists, ErrAccountExist},
	{CodeInvalidAccount, ErrInvalidAccount},
	{CodeAccountHasHandle, ErrAccountHasHandle},
	{CodeHandleNotFound, ErrHandleNotFound},
	{CodeHandleTaken, ErrHandleTaken},
	{CodeInvalidHandle, ErrInvalidHandle},
	{CodeStaleHandle, ErrStaleHandle},
	{CodeCooldownActive, ErrCooldownActive},
	{CodeStorageUnavailable, ErrStorageUnavailable},
	{CodeTransactionConflict, ErrTransactionConflict},
}

// ErrorCode returns the API error code for err.
func ErrorCode(err error) string {
	for _, ce := range codeErrors {
		if errors.Is(err, ce.err) {
			return ce.code
		}
	}
	return CodeInternal
}

// CodeError returns the error for an API error code, or nil when the code is
// unknown.
func CodeError(code string) error {
	for _, ce := range codeErrors {
		if ce.code == code {
			return ce.err
		}
	}
	return nil
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
	// RetryAfter is in seconds.
	RetryAfter int64 `json:"retry_after,omitempty"`
}

// CreateAccountRequest is the sign-up request body.
type CreateAccountRequest struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Password    string `json:"password,omitempty"`
	Handle      string `json:"handle,omitempty"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	Handle          string     `json:"handle,omitempty"`
	HandleChangedAt *time.Time `json:"handle_changed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewAccountResponse returns the public view of acc.
func NewAccountResponse(acc Account) AccountResponse {
	res := AccountResponse{
		ID:          acc.ID(),
		Email:       acc.Email(),
		DisplayName: acc.DisplayName(),
		Handle:      acc.Handle(),
		CreatedAt:   acc.CreatedAt(),
	}
	if t := acc.HandleChangedAt(); !t.IsZero() {
		res.HandleChangedAt = &t
	}
	return res
}

// SessionRequest is the sign-in request body.
type SessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries a session token.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

// HandleRequest is the body of handle reservation requests. OldHandle is only
// used when changing handles.
type HandleRequest struct {
	Handle    string `json:"handle"`
	OldHandle string `json:"old_handle,omitempty"`
}

// HandleLookupResponse is the result of a handle lookup.
type HandleLookupResponse struct {
	Handle    string `json:"handle"`
	AccountID string `json:"account_id"`
}

// AvailabilityOptions are the query parameters of an availability check.
type AvailabilityOptions struct {
	AccountID string `url:"account_id,omitempty"`
}

// AvailabilityResponse is the result of an availability check.
type AvailabilityResponse struct {
	Handle    string `json:"handle"`
	Available bool   `json:"available"`
}
