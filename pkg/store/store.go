package store

// Store is an interface for managing accounts and their handle reservations.
type Store interface {
	AccountStore
	HandleStore
}
