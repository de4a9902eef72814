package proto

import (
	"context"
	"time"
)

// Reservation binds a handle to the account that owns it.
type Reservation struct {
	Handle     string    `json:"handle"`
	AccountID  string    `json:"account_id"`
	ReservedAt time.Time `json:"reserved_at"`
}

// HandleService guarantees global uniqueness of handles and rate limits how
// often an account can change its handle.
type HandleService interface {
	// ReserveInitialHandle binds handle to an account that has none.
	ReserveInitialHandle(ctx context.Context, accountID, handle string) (Reservation, error)
	// ReserveHandleChange releases oldHandle and binds newHandle in one step.
	ReserveHandleChange(ctx context.Context, accountID, newHandle, oldHandle string) (Reservation, error)
	// IsHandleAvailable reports whether handle is free or already owned by
	// accountID. The answer is advisory.
	IsHandleAvailable(ctx context.Context, handle, accountID string) (bool, error)
	// AccountIDByHandle returns the ID of the account holding handle.
	AccountIDByHandle(ctx context.Context, handle string) (string, error)
}
