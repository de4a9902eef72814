package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/utils"
)

const day = 24 * time.Hour

// ReserveInitialHandle binds handle to an account that has no handle yet.
// Reserving the handle the account already holds is a no-op.
//
// It implements proto.HandleService.
func (d *Backend) ReserveInitialHandle(ctx context.Context, accountID string, handle string) (res proto.Reservation, err error) {
	defer func(start time.Time) { observe(opReserveInitial, start, err) }(time.Now())

	handle, err = d.normalizeHandle(handle)
	if err != nil {
		return proto.Reservation{}, err
	}

	if err := d.tx(ctx, func(ctx context.Context, tx *db.Tx) error {
		var err error
		res, err = d.reserveInitial(ctx, tx, accountID, handle)
		return err
	}); err != nil {
		return proto.Reservation{}, d.mapError(err, "reserve handle", "account", accountID, "handle", handle)
	}

	d.logger.Info("handle reserved", "account", accountID, "handle", handle)
	return res, nil
}

// reserveInitial must run inside a transaction.
func (d *Backend) reserveInitial(ctx context.Context, tx db.Handler, accountID string, handle string) (proto.Reservation, error) {
	acc, err := d.store.GetAccountByID(ctx, tx, accountID)
	if err != nil {
		return proto.Reservation{}, err
	}

	if acc.Handle.Valid && acc.Handle.String != handle {
		return proto.Reservation{}, proto.ErrAccountHasHandle
	}

	r, err := d.store.GetReservation(ctx, tx, handle)
	switch {
	case err == nil:
		if r.AccountID != accountID {
			return proto.Reservation{}, proto.ErrHandleTaken
		}
		if !acc.Handle.Valid {
			if err := d.store.SetAccountHandle(ctx, tx, accountID, handle, r.ReservedAt); err != nil {
				return proto.Reservation{}, err
			}
		}
		return reservation(r), nil
	case errors.Is(err, db.ErrRecordNotFound):
	default:
		return proto.Reservation{}, err
	}

	now := d.now()
	if err := d.store.CreateReservation(ctx, tx, handle, accountID, now); err != nil {
		return proto.Reservation{}, err
	}
	if err := d.store.SetAccountHandle(ctx, tx, accountID, handle, now); err != nil {
		return proto.Reservation{}, err
	}

	return proto.Reservation{Handle: handle, AccountID: accountID, ReservedAt: now}, nil
}

// ReserveHandleChange moves an account from oldHandle to newHandle. Releasing
// the old reservation, claiming the new one, and stamping the change time
// happen in one transaction. An empty oldHandle means the account's current
// handle.
//
// It implements proto.HandleService.
func (d *Backend) ReserveHandleChange(ctx context.Context, accountID string, newHandle string, oldHandle string) (res proto.Reservation, err error) {
	defer func(start time.Time) { observe(opReserveChange, start, err) }(time.Now())

	newHandle, err = d.normalizeHandle(newHandle)
	if err != nil {
		return proto.Reservation{}, err
	}
	oldHandle = utils.NormalizeHandle(oldHandle)

	if err := d.tx(ctx, func(ctx context.Context, tx *db.Tx) error {
		var err error
		res, err = d.reserveChange(ctx, tx, accountID, newHandle, oldHandle)
		return err
	}); err != nil {
		return proto.Reservation{}, d.mapError(err, "change handle", "account", accountID, "handle", newHandle, "old", oldHandle)
	}

	d.logger.Info("handle changed", "account", accountID, "handle", newHandle, "old", oldHandle)
	return res, nil
}

func (d *Backend) reserveChange(ctx context.Context, tx db.Handler, accountID string, newHandle string, oldHandle string) (proto.Reservation, error) {
	acc, err := d.store.GetAccountByID(ctx, tx, accountID)
	if err != nil {
		return proto.Reservation{}, err
	}

	current := acc.Handle.String
	if oldHandle == "" {
		oldHandle = current
	} else if current != "" && oldHandle != current {
		return proto.Reservation{}, proto.ErrStaleHandle
	}

	r, err := d.store.GetReservation(ctx, tx, newHandle)
	owned := err == nil
	switch {
	case err == nil:
		if r.AccountID != accountID {
			return proto.Reservation{}, proto.ErrHandleTaken
		}
	case errors.Is(err, db.ErrRecordNotFound):
	default:
		return proto.Reservation{}, err
	}

	// Changing to the handle already held writes nothing and keeps the
	// cooldown where it is.
	if owned && newHandle == current {
		return reservation(r), nil
	}

	now := d.now()
	if acc.HandleChangedAt.Valid {
		until := acc.HandleChangedAt.Time.Add(d.cfg.Handle.CooldownPeriod())
		if now.Before(until) {
			return proto.Reservation{}, &proto.CooldownError{
				DaysRemaining: daysRemaining(until.Sub(now)),
				Remaining:     until.Sub(now),
				Until:         until.UTC(),
			}
		}
	}

	if oldHandle != "" && oldHandle != newHandle {
		if err := d.store.DeleteReservation(ctx, tx, oldHandle, accountID); err != nil && !errors.Is(err, db.ErrRecordNotFound) {
			return proto.Reservation{}, err
		}
	}

	if !owned {
		if err := d.store.CreateReservation(ctx, tx, newHandle, accountID, now); err != nil {
			return proto.Reservation{}, err
		}
		r = models.HandleReservation{Handle: newHandle, AccountID: accountID, ReservedAt: now}
	}

	if err := d.store.SetAccountHandle(ctx, tx, accountID, newHandle, now); err != nil {
		return proto.Reservation{}, err
	}

	return reservation(r), nil
}

// IsHandleAvailable reports whether handle is unreserved or reserved by
// accountID. The answer is advisory; only the reserve operations are binding.
//
// It implements proto.HandleService.
func (d *Backend) IsHandleAvailable(ctx context.Context, handle string, accountID string) (ok bool, err error) {
	defer func(start time.Time) { observe(opIsAvailable, start, err) }(time.Now())

	handle, err = d.normalizeHandle(handle)
	if err != nil {
		return false, err
	}

	r, err := d.store.GetReservation(ctx, d.db, handle)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return true, nil
		}
		return false, d.mapError(err, "check handle", "handle", handle)
	}

	return accountID != "" && r.AccountID == accountID, nil
}

// AccountIDByHandle returns the ID of the account holding handle. The lookup
// is case insensitive.
//
// It implements proto.HandleService.
func (d *Backend) AccountIDByHandle(ctx context.Context, handle string) (id string, err error) {
	defer func(start time.Time) { observe(opLookup, start, err) }(time.Now())

	handle = utils.NormalizeHandle(handle)
	if err := utils.ValidateHandle(handle); err != nil {
		return "", proto.ErrHandleNotFound
	}

	r, err := d.store.GetReservation(ctx, d.db, handle)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return "", proto.ErrHandleNotFound
		}
		return "", d.mapError(err, "lookup handle", "handle", handle)
	}

	return r.AccountID, nil
}

// RefreshReservationStats updates the reserved handles gauge.
func (d *Backend) RefreshReservationStats(ctx context.Context) (int64, error) {
	n, err := d.store.CountReservations(ctx, d.db)
	if err != nil {
		return 0, d.mapError(err, "count reservations")
	}
	reservationsGauge.Set(float64(n))
	return n, nil
}

// normalizeHandle returns the canonical handle or proto.ErrInvalidHandle. It
// never touches storage.
func (d *Backend) normalizeHandle(handle string) (string, error) {
	handle = utils.NormalizeHandle(handle)
	if err := utils.ValidateHandle(handle); err != nil {
		return "", fmt.Errorf("%w: %s", proto.ErrInvalidHandle, err)
	}

	for _, g := range d.reserved {
		if g.Match(handle) {
			return "", fmt.Errorf("%w: %q is reserved", proto.ErrInvalidHandle, handle)
		}
	}

	return handle, nil
}

// tx runs fn in a retrying transaction bounded by the configured attempt
// timeout.
func (d *Backend) tx(ctx context.Context, fn func(ctx context.Context, tx *db.Tx) error) error {
	return d.db.RetryTransactionContext(ctx, db.TxOptions{
		Timeout:    d.cfg.Handle.TxTimeoutPeriod(),
		MaxRetries: d.cfg.Handle.MaxRetries,
	}, fn)
}

func (d *Backend) now() time.Time {
	return d.clock.Now().UTC()
}

// mapError translates storage errors into the proto error taxonomy so callers
// never see driver errors. Domain errors pass through unchanged.
func (d *Backend) mapError(err error, msg string, keyvals ...interface{}) error {
	var cerr *proto.CooldownError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &cerr):
		return cerr
	case errors.Is(err, proto.ErrHandleTaken),
		errors.Is(err, proto.ErrAccountHasHandle),
		errors.Is(err, proto.ErrStaleHandle),
		errors.Is(err, proto.ErrAccountNotFound),
		errors.Is(err, proto.ErrAccountExist),
		errors.Is(err, proto.ErrInvalidHandle):
		return err
	case errors.Is(err, db.ErrDuplicateKey):
		return proto.ErrHandleTaken
	case errors.Is(err, db.ErrRecordNotFound):
		return proto.ErrAccountNotFound
	case errors.Is(err, db.ErrSerialization):
		d.logger.Warn(msg, append(keyvals, "err", err)...)
		return proto.ErrTransactionConflict
	case db.IsUnavailable(err):
		d.logger.Warn(msg, append(keyvals, "err", err)...)
		return proto.ErrStorageUnavailable
	default:
		d.logger.Error(msg, append(keyvals, "err", err)...)
		return proto.ErrStorageUnavailable
	}
}

// daysRemaining rounds d up to whole days.
func daysRemaining(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + day - 1) / day)
}

func reservation(r models.HandleReservation) proto.Reservation {
	return proto.Reservation{
		Handle:     r.Handle,
		AccountID:  r.AccountID,
		ReservedAt: r.ReservedAt.UTC(),
	}
}
