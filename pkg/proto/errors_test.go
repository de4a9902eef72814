package proto

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matryer/is"
)

func TestCooldownError(t *testing.T) {
	is := is.New(t)

	var err error = fmt.Errorf("change handle: %w", &CooldownError{DaysRemaining: 7})
	is.True(errors.Is(err, ErrCooldownActive))

	var cerr *CooldownError
	is.True(errors.As(err, &cerr))
	is.Equal(cerr.DaysRemaining, 7)
	is.Equal(cerr.Error(), "handle change cooldown active: 7 days remaining")
	is.Equal((&CooldownError{DaysRemaining: 1}).Error(), "handle change cooldown active: 1 day remaining")

	is.True(!errors.Is(err, ErrHandleTaken))
}

func TestIsTransient(t *testing.T) {
	is := is.New(t)
	is.True(IsTransient(fmt.Errorf("x: %w", ErrStorageUnavailable)))
	is.True(IsTransient(ErrTransactionConflict))
	is.True(!IsTransient(ErrHandleTaken))
	is.True(!IsTransient(&CooldownError{DaysRemaining: 2}))
}
