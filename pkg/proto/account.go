package proto

import "time"

// Account is an interface representing an account.
type Account interface {
	// ID returns the account's ID.
	ID() string
	// Email returns the account's email address.
	Email() string
	// DisplayName returns the account's display name.
	DisplayName() string
	// Handle returns the account's handle, or an empty string when it has none.
	Handle() string
	// HandleChangedAt returns when the handle was last set. It is the zero
	// time when the handle was never set.
	HandleChangedAt() time.Time
	// Password returns the account's password hash.
	Password() string
	// CreatedAt returns when the account was created.
	CreatedAt() time.Time
}

// AccountOptions are options for creating an account.
type AccountOptions struct {
	// ID is the account ID. A random one is generated when empty.
	ID string
	// Email is the account's email address.
	Email string
	// DisplayName is the account's display name.
	DisplayName string
	// Password is the plain text password. Accounts without a password cannot
	// sign in with one.
	Password string
	// Handle is reserved for the account as part of sign-up when set.
	Handle string
}
