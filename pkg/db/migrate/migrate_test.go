package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/internal/test"
	"github.com/matryer/is"
)

func tables(ctx context.Context, t *testing.T, dbx *db.DB) map[string]bool {
	t.Helper()
	found := map[string]bool{}
	err := dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		for _, name := range []string{"migrations", "accounts", "handle_reservations"} {
			found[name] = hasTable(ctx, tx, name)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return found
}

func TestMigrate(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	is.NoErr(Migrate(ctx, dbx))
	found := tables(ctx, t, dbx)
	is.True(found["accounts"])
	is.True(found["handle_reservations"])

	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(len(migrations)))

	// Running again is a no-op.
	is.NoErr(Migrate(ctx, dbx))
}

func TestRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	is.True(errors.Is(Rollback(ctx, dbx), ErrNothingToRollback))

	is.NoErr(Migrate(ctx, dbx))
	is.NoErr(Rollback(ctx, dbx))

	found := tables(ctx, t, dbx)
	is.True(found["migrations"])
	is.True(!found["accounts"])
	is.True(!found["handle_reservations"])

	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(0))
	is.True(errors.Is(Rollback(ctx, dbx), ErrNothingToRollback))
}

func TestToSnakeCase(t *testing.T) {
	is := is.New(t)
	is.Equal(toSnakeCase("create tables"), "create_tables")
	is.Equal(toSnakeCase("AddHandleIndex"), "add_handle_index")
}
